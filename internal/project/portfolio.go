package project

import (
	"fmt"
	"sort"
	"strings"
)

// Portfolio is an in-memory, insertion-ordered set of project records.
type Portfolio struct {
	// records stores all records by project code.
	records map[string]*Record

	// order preserves insertion order for consistent output.
	order []string

	// source describes where the portfolio was loaded from.
	source string
}

// NewPortfolio creates a new empty portfolio.
func NewPortfolio() *Portfolio {
	return &Portfolio{
		records: make(map[string]*Record),
		order:   make([]string, 0),
	}
}

// Source returns the source this portfolio was loaded from.
func (p *Portfolio) Source() string {
	return p.source
}

// SetSource records where the portfolio was loaded from.
func (p *Portfolio) SetSource(source string) {
	p.source = source
}

// Len returns the number of records.
func (p *Portfolio) Len() int {
	return len(p.records)
}

// Get retrieves a record by project code.
func (p *Portfolio) Get(code string) *Record {
	return p.records[code]
}

// Exists checks if a record exists.
func (p *Portfolio) Exists(code string) bool {
	_, ok := p.records[code]
	return ok
}

// Add adds a new record to the portfolio.
func (p *Portfolio) Add(rec *Record) error {
	if strings.TrimSpace(rec.Code) == "" {
		return fmt.Errorf("project code cannot be empty")
	}
	if p.Exists(rec.Code) {
		return fmt.Errorf("project %q already exists", rec.Code)
	}
	p.records[rec.Code] = rec
	p.order = append(p.order, rec.Code)
	return nil
}

// All returns all records in insertion order.
func (p *Portfolio) All() []*Record {
	recs := make([]*Record, 0, len(p.order))
	for _, code := range p.order {
		if rec := p.records[code]; rec != nil {
			recs = append(recs, rec)
		}
	}
	return recs
}

// Codes returns all project codes in insertion order.
func (p *Portfolio) Codes() []string {
	return append([]string{}, p.order...)
}

// Clone returns a deep copy of the portfolio. Edits to the copy never
// reach the loaded records.
func (p *Portfolio) Clone() *Portfolio {
	clone := NewPortfolio()
	clone.source = p.source
	for _, rec := range p.All() {
		_ = clone.Add(rec.Clone())
	}
	return clone
}

// Stages returns all unique non-empty stages, sorted.
func (p *Portfolio) Stages() []string {
	seen := make(map[string]bool)
	var stages []string
	for _, rec := range p.All() {
		if rec.Stage != "" && !seen[rec.Stage] {
			seen[rec.Stage] = true
			stages = append(stages, rec.Stage)
		}
	}
	sort.Strings(stages)
	return stages
}

// ByStage returns records grouped by stage.
func (p *Portfolio) ByStage() map[string][]*Record {
	result := make(map[string][]*Record)
	for _, rec := range p.All() {
		result[rec.Stage] = append(result[rec.Stage], rec)
	}
	return result
}

// Delayed returns all records that report a schedule delay.
func (p *Portfolio) Delayed() []*Record {
	var delayed []*Record
	for _, rec := range p.All() {
		if rec.Schedule.Delayed() {
			delayed = append(delayed, rec)
		}
	}
	return delayed
}
