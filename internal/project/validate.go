package project

import (
	"fmt"
	"strings"
)

// Severity classifies a data-quality issue.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Issue describes a data-quality problem found on a record. Issues never
// stop metrics from being computed; they are surfaced next to the result.
type Issue struct {
	Code     string   `json:"code"`
	Field    string   `json:"field"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// String formats the issue for log and terminal output.
func (i Issue) String() string {
	return fmt.Sprintf("%s %s: %s", i.Code, i.Field, i.Message)
}

// IsError returns true for error-severity issues.
func (i Issue) IsError() bool {
	return i.Severity == SeverityError
}

// Validate checks a record against the data model invariants.
func Validate(r *Record) []Issue {
	v := validator{code: r.Code}

	if strings.TrimSpace(r.Code) == "" {
		v.errorf("code", "project code is required")
	}

	f := r.Financial
	v.nonNegative("financial.originalContractValue", f.OriginalContractValue)
	v.nonNegative("financial.currentContractValue", f.CurrentContractValue)
	v.nonNegative("financial.originalProfit", f.OriginalProfit)
	v.nonNegative("financial.currentProfit", f.CurrentProfit)

	if r.Schedule.DelayDays < 0 {
		v.warnf("schedule.delayDays", "delay must not be negative, got %d", r.Schedule.DelayDays)
	}
	if r.Schedule.DelayDays > 0 && r.Schedule.OnSchedule != nil && *r.Schedule.OnSchedule {
		v.warnf("schedule.onSchedule", "marked on schedule with %d days of delay", r.Schedule.DelayDays)
	}

	v.nonNegative("generalConditions.original", r.GeneralConditions.Original)
	v.nonNegative("generalConditions.current", r.GeneralConditions.Current)
	v.nonNegative("contingencies.original", r.Contingency.Original)
	v.nonNegative("contingencies.current", r.Contingency.Current)

	co := r.ChangeOrders
	v.counts("changeOrders", co.Total, co.Approved, co.Pending, co.Rejected)
	v.nonNegative("changeOrders.avgApprovalDays", co.AvgApprovalDays)

	sub := r.Submittals
	v.counts("submittals", sub.Total, sub.Approved, sub.Pending, sub.Rejected)
	v.nonNegative("submittals.avgReviewDays", sub.AvgReviewDays)

	rfi := r.RFIs
	v.counts("rfis", rfi.Total, rfi.Open, rfi.Closed)
	if rfi.Overdue > rfi.Open {
		v.warnf("rfis.overdue", "overdue (%d) exceeds open (%d)", rfi.Overdue, rfi.Open)
	}
	v.nonNegative("rfis.avgClosureDays", rfi.AvgClosureDays)

	if b := r.Status.BuyoutCompletion; b < 0 || b > 100 {
		v.warnf("status.buyoutCompletion", "completion %.1f%% outside [0, 100], clamped", b)
	}

	return v.issues
}

// Validate checks every record in the portfolio, in insertion order.
func (p *Portfolio) Validate() []Issue {
	var issues []Issue
	for _, rec := range p.All() {
		issues = append(issues, Validate(rec)...)
	}
	return issues
}

// CountIssues returns the number of errors and warnings in issues.
func CountIssues(issues []Issue) (errors, warnings int) {
	for _, i := range issues {
		if i.IsError() {
			errors++
		} else {
			warnings++
		}
	}
	return errors, warnings
}

type validator struct {
	code   string
	issues []Issue
}

func (v *validator) errorf(field, format string, args ...interface{}) {
	v.issues = append(v.issues, Issue{
		Code:     v.code,
		Field:    field,
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (v *validator) warnf(field, format string, args ...interface{}) {
	v.issues = append(v.issues, Issue{
		Code:     v.code,
		Field:    field,
		Severity: SeverityWarning,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (v *validator) nonNegative(field string, value float64) {
	if value < 0 {
		v.warnf(field, "must not be negative, got %g", value)
	}
}

// counts checks that the parts of a count-based sub-record are non-negative
// and add up to its total.
func (v *validator) counts(field string, total int, parts ...int) {
	if total < 0 {
		v.warnf(field+".total", "must not be negative, got %d", total)
	}
	sum := 0
	for _, p := range parts {
		if p < 0 {
			v.warnf(field, "counts must not be negative, got %d", p)
		}
		sum += p
	}
	if sum != total {
		v.warnf(field, "counts sum to %d but total is %d", sum, total)
	}
}
