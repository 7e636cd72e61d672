package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sitemetrics/sitemetrics-go/internal/metrics"
)

// SortKey selects the ordering of project rows.
type SortKey string

const (
	SortByScore SortKey = "score"
	SortByCode  SortKey = "code"
	SortByName  SortKey = "name"
	SortByDelay SortKey = "delay"
)

// ParseSortKey parses a sort key. An empty string keeps insertion order
// and returns "".
func ParseSortKey(s string) (SortKey, error) {
	key := SortKey(strings.ToLower(strings.TrimSpace(s)))
	switch key {
	case "", SortByScore, SortByCode, SortByName, SortByDelay:
		return key, nil
	default:
		return "", fmt.Errorf("invalid sort key %q (use score, code, name or delay)", s)
	}
}

// Sort orders rows in place. Score sorts best first and delay sorts
// longest first; code and name sort ascending. Ties keep their relative
// order and desc reverses the natural direction.
func Sort(rows []ProjectReport, key SortKey, desc bool) {
	var less func(a, b *ProjectReport) bool
	switch key {
	case SortByScore:
		less = func(a, b *ProjectReport) bool { return a.Overall > b.Overall }
	case SortByDelay:
		less = func(a, b *ProjectReport) bool { return a.DelayDays > b.DelayDays }
	case SortByCode:
		less = func(a, b *ProjectReport) bool { return a.Code < b.Code }
	case SortByName:
		less = func(a, b *ProjectReport) bool {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	default:
		return
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return less(&rows[j], &rows[i])
		}
		return less(&rows[i], &rows[j])
	})
}

// Filter selects project rows. Zero values match everything.
type Filter struct {
	Stage    string
	MinScore int
	Band     metrics.Band
	Delayed  bool
}

// Matches returns true if the row passes every criterion.
func (f Filter) Matches(r *ProjectReport) bool {
	if f.Stage != "" && !strings.EqualFold(r.Stage, f.Stage) {
		return false
	}
	if r.Overall < f.MinScore {
		return false
	}
	if f.Band != "" && r.Band != f.Band {
		return false
	}
	if f.Delayed && !r.Delayed {
		return false
	}
	return true
}

// Apply returns the rows that match, in their original order.
func (f Filter) Apply(rows []ProjectReport) []ProjectReport {
	result := make([]ProjectReport, 0, len(rows))
	for i := range rows {
		if f.Matches(&rows[i]) {
			result = append(result, rows[i])
		}
	}
	return result
}

// ParseBand parses a band name case-insensitively, accepting "at-risk"
// and "at_risk" for the At Risk band.
func ParseBand(s string) (metrics.Band, error) {
	norm := strings.NewReplacer("-", " ", "_", " ").Replace(strings.ToLower(strings.TrimSpace(s)))
	for _, b := range []metrics.Band{metrics.BandExcellent, metrics.BandGood, metrics.BandFair, metrics.BandAtRisk} {
		if strings.ToLower(string(b)) == norm {
			return b, nil
		}
	}
	if norm == "" {
		return "", nil
	}
	return "", fmt.Errorf("invalid band %q", s)
}
