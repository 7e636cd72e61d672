// Package report assembles health and variance reports for projects and
// portfolios, and renders them for the terminal, CSV, JSON and XLSX.
package report

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/sitemetrics/sitemetrics-go/internal/metrics"
	"github.com/sitemetrics/sitemetrics-go/internal/project"
)

// ProjectReport is the derived view of one project. Its JSON form carries
// the health fields at the top level next to varianceByCategory.
type ProjectReport struct {
	Code         string               `json:"code"`
	Name         string               `json:"name"`
	Stage        string               `json:"stage,omitempty"`
	ContractType project.ContractType `json:"contractType,omitempty"`

	metrics.Health
	Band metrics.Band `json:"band"`

	ProfitPercent float64 `json:"potentialProfitPercent"`
	DelayDays     int     `json:"delayDays"`
	Delayed       bool    `json:"delayed"`
	// SlipDays is how far the current (or revised) completion date has
	// moved past the original one.
	SlipDays int `json:"slipDays"`

	VarianceByCategory map[metrics.Category]metrics.CategoryVariance `json:"varianceByCategory"`
	Execution          metrics.Execution                             `json:"execution"`
	Diagnostics        []project.Issue                               `json:"diagnostics,omitempty"`
}

// PortfolioReport aggregates every project of a portfolio. OverallScore is
// the mean of the per-project scores and is unavailable for an empty
// portfolio; variances are ratio-of-sums.
type PortfolioReport struct {
	GeneratedAt  time.Time            `json:"generatedAt"`
	Source       string               `json:"source,omitempty"`
	ProjectCount int                  `json:"projectCount"`
	OverallScore metrics.Percent      `json:"overallScore"`
	Band         metrics.Band         `json:"band,omitempty"`
	BandCounts   map[metrics.Band]int `json:"bandCounts"`
	DelayedCount int                  `json:"delayedCount"`

	VarianceByCategory map[metrics.Category]metrics.CategoryVariance `json:"varianceByCategory"`
	Execution          metrics.Execution                             `json:"execution"`

	Projects    []ProjectReport `json:"projects"`
	Stages      []StageSummary  `json:"stages"`
	Diagnostics []project.Issue `json:"diagnostics,omitempty"`
}

// StageSummary aggregates the projects of one stage. MeanScore is the
// mean of their health scores.
type StageSummary struct {
	Stage       string          `json:"stage"`
	Description string          `json:"description,omitempty"`
	Projects    int             `json:"projects"`
	Delayed     int             `json:"delayed"`
	MeanScore   metrics.Percent `json:"meanScore"`
}

// Errors returns the number of error diagnostics.
func (r *PortfolioReport) Errors() int {
	errs, _ := project.CountIssues(r.Diagnostics)
	return errs
}

// Warnings returns the number of warning diagnostics.
func (r *PortfolioReport) Warnings() int {
	_, warnings := project.CountIssues(r.Diagnostics)
	return warnings
}

// Project returns the report row for a code, or nil.
func (r *PortfolioReport) Project(code string) *ProjectReport {
	for i := range r.Projects {
		if r.Projects[i].Code == code {
			return &r.Projects[i]
		}
	}
	return nil
}

type cacheEntry struct {
	fingerprint string
	report      ProjectReport
}

// Builder derives reports with a fixed calculator. Project reports are
// memoized by project code and a fingerprint of the record's content, so
// an edited record is always recomputed. A Builder is safe for concurrent
// use. Cached reports share maps and slices; callers treat them as
// read-only.
type Builder struct {
	calc     *metrics.Calculator
	logger   *slog.Logger
	now      func() time.Time
	describe func(stage string) string

	mu     sync.Mutex
	cache  map[string]cacheEntry
	hits   int
	misses int
}

// NewBuilder creates a builder. A nil logger discards output.
func NewBuilder(calc *metrics.Calculator, logger *slog.Logger) *Builder {
	if calc == nil {
		calc = metrics.NewCalculator(metrics.DefaultConfig())
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Builder{
		calc:   calc,
		logger: logger,
		now:    time.Now,
		cache:  make(map[string]cacheEntry),
	}
}

// DescribeStages sets the lookup used to label stage summaries. It
// returns the builder for chaining.
func (b *Builder) DescribeStages(describe func(stage string) string) *Builder {
	b.describe = describe
	return b
}

// Calculator returns the calculator the builder derives with.
func (b *Builder) Calculator() *metrics.Calculator {
	return b.calc
}

// Project derives the report of one record.
func (b *Builder) Project(r *project.Record) ProjectReport {
	if r == nil {
		return b.derive(project.NewRecord(""))
	}

	fp, err := Fingerprint(r)
	if err != nil {
		b.logger.Debug("record not cacheable", "project", r.Code, "error", err)
		return b.derive(r)
	}

	b.mu.Lock()
	entry, ok := b.cache[r.Code]
	if ok && entry.fingerprint == fp {
		b.hits++
		b.mu.Unlock()
		return entry.report
	}
	b.misses++
	b.mu.Unlock()

	rep := b.derive(r)

	b.mu.Lock()
	b.cache[r.Code] = cacheEntry{fingerprint: fp, report: rep}
	b.mu.Unlock()
	return rep
}

func (b *Builder) derive(r *project.Record) ProjectReport {
	health := b.calc.Health(r)
	cfg := b.calc.Config()
	return ProjectReport{
		Code:               r.Code,
		Name:               r.DisplayName(),
		Stage:              r.Stage,
		ContractType:       r.ContractType,
		Health:             health,
		Band:               metrics.BandFor(float64(health.Overall)),
		ProfitPercent:      r.Financial.PotentialProfitPercent(),
		DelayDays:          r.Schedule.EffectiveDelayDays(cfg.DefaultDelayDays),
		Delayed:            r.Schedule.Delayed(),
		SlipDays:           r.Schedule.SlipDays(),
		VarianceByCategory: metrics.DeriveVariances(r),
		Execution:          b.calc.Execution(r),
		Diagnostics:        project.Validate(r),
	}
}

// Portfolio derives the report of every record in the portfolio, in
// insertion order.
func (b *Builder) Portfolio(p *project.Portfolio) PortfolioReport {
	var records []*project.Record
	source := ""
	if p != nil {
		records = p.All()
		source = p.Source()
	}

	rep := PortfolioReport{
		GeneratedAt:  b.now().UTC(),
		Source:       source,
		ProjectCount: len(records),
		BandCounts:   make(map[metrics.Band]int),
		Projects:     make([]ProjectReport, 0, len(records)),
		Stages:       []StageSummary{},
	}

	scores := make([]int, 0, len(records))
	byCode := make(map[string]int, len(records))
	for _, r := range records {
		pr := b.Project(r)
		rep.Projects = append(rep.Projects, pr)
		rep.BandCounts[pr.Band]++
		rep.Diagnostics = append(rep.Diagnostics, pr.Diagnostics...)
		scores = append(scores, pr.Overall)
		byCode[r.Code] = pr.Overall
	}

	if p != nil {
		rep.DelayedCount = len(p.Delayed())
		byStage := p.ByStage()
		for _, stage := range p.Stages() {
			rep.Stages = append(rep.Stages, b.stageSummary(stage, byStage[stage], byCode))
		}
	}

	if mean, ok := metrics.MeanScore(scores); ok {
		rep.OverallScore = metrics.PercentOf(mean)
		rep.Band = metrics.BandFor(mean)
	}
	rep.VarianceByCategory = metrics.DerivePortfolioVariances(records)
	rep.Execution = b.calc.PortfolioExecution(records)

	hits, misses := b.CacheStats()
	b.logger.Debug("portfolio report built",
		"projects", rep.ProjectCount,
		"diagnostics", len(rep.Diagnostics),
		"cache_hits", hits,
		"cache_misses", misses)
	return rep
}

func (b *Builder) stageSummary(stage string, records []*project.Record, scores map[string]int) StageSummary {
	s := StageSummary{Stage: stage, Projects: len(records)}
	if b.describe != nil {
		if desc := b.describe(stage); desc != stage {
			s.Description = desc
		}
	}
	stageScores := make([]int, 0, len(records))
	for _, r := range records {
		if r.Schedule.Delayed() {
			s.Delayed++
		}
		stageScores = append(stageScores, scores[r.Code])
	}
	if mean, ok := metrics.MeanScore(stageScores); ok {
		s.MeanScore = metrics.PercentOf(mean)
	}
	return s
}

// CacheStats returns the memo cache hit and miss counts.
func (b *Builder) CacheStats() (hits, misses int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits, b.misses
}

// Fingerprint returns a SHA-256 hex digest of the record's JSON encoding.
func Fingerprint(r *project.Record) (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
