package metrics

import (
	"math"

	"github.com/sitemetrics/sitemetrics-go/internal/project"
)

// Health is the composite health score of a project and its three
// sub-scores, each within [0, 100].
type Health struct {
	Overall   int     `json:"overallScore"`
	Financial float64 `json:"financialSubscore"`
	Schedule  float64 `json:"scheduleSubscore"`
	Execution float64 `json:"executionSubscore"`
}

// Band is a qualitative label for a health score.
type Band string

const (
	BandExcellent Band = "Excellent"
	BandGood      Band = "Good"
	BandFair      Band = "Fair"
	BandAtRisk    Band = "At Risk"
)

// BandFor returns the band a score falls in.
func BandFor(score float64) Band {
	switch {
	case score >= 85:
		return BandExcellent
	case score >= 70:
		return BandGood
	case score >= 55:
		return BandFair
	default:
		return BandAtRisk
	}
}

// Calculator computes health scores and derived metrics with a fixed
// calibration.
type Calculator struct {
	cfg Config
}

// NewCalculator creates a calculator. Calibration values that would divide
// by zero fall back to the defaults.
func NewCalculator(cfg Config) *Calculator {
	def := DefaultConfig()
	if cfg.ProfitCeiling <= 0 {
		cfg.ProfitCeiling = def.ProfitCeiling
	}
	if cfg.Weights == (Weights{}) {
		cfg.Weights = def.Weights
	}
	// A zero schedule base means the schedule block was never calibrated.
	if cfg.ScheduleBase <= 0 {
		cfg.ScheduleBase = def.ScheduleBase
		if cfg.ScheduleFloor <= 0 || cfg.ScheduleFloor > cfg.ScheduleBase {
			cfg.ScheduleFloor = def.ScheduleFloor
		}
		if cfg.DefaultDelayDays <= 0 {
			cfg.DefaultDelayDays = def.DefaultDelayDays
		}
	}
	if len(cfg.Grades.ChangeOrderRatio.Steps) == 0 {
		cfg.Grades.ChangeOrderRatio = def.Grades.ChangeOrderRatio
	}
	if len(cfg.Grades.SubmittalCompliance.Steps) == 0 {
		cfg.Grades.SubmittalCompliance = def.Grades.SubmittalCompliance
	}
	if len(cfg.Grades.RFIPerformance.Steps) == 0 {
		cfg.Grades.RFIPerformance = def.Grades.RFIPerformance
	}
	return &Calculator{cfg: cfg}
}

// Config returns the calibration in use.
func (c *Calculator) Config() Config {
	return c.cfg
}

// FinancialSubscore scales the potential profit percent against the
// profit ceiling, capped at 100.
func (c *Calculator) FinancialSubscore(r *project.Record) float64 {
	if r == nil {
		return 0
	}
	pct := r.Financial.PotentialProfitPercent()
	return ClampPercent(math.Min(100, pct/c.cfg.ProfitCeiling*100))
}

// ScheduleSubscore returns the schedule base for an on-time project, or
// the base minus the delay in days, never below the floor.
func (c *Calculator) ScheduleSubscore(r *project.Record) float64 {
	base := ClampPercent(c.cfg.ScheduleBase)
	if r == nil || !r.Schedule.Delayed() {
		return base
	}
	delay := float64(r.Schedule.EffectiveDelayDays(c.cfg.DefaultDelayDays))
	return ClampPercent(math.Max(c.cfg.ScheduleFloor, base-delay))
}

// ExecutionSubscore is the buyout completion percentage, clamped.
func (c *Calculator) ExecutionSubscore(r *project.Record) float64 {
	if r == nil {
		return 0
	}
	return ClampPercent(r.Status.BuyoutCompletion)
}

// Health computes the composite score of one record. A nil or partially
// populated record scores with defaults rather than failing.
func (c *Calculator) Health(r *project.Record) Health {
	h := Health{
		Financial: c.FinancialSubscore(r),
		Schedule:  c.ScheduleSubscore(r),
		Execution: c.ExecutionSubscore(r),
	}
	w := c.cfg.Weights
	composite := h.Financial*w.Financial + h.Schedule*w.Schedule + h.Execution*w.Execution
	// Weighted halves such as 90*0.35 land just below .5 in binary; drop
	// that noise so they round half up.
	h.Overall = int(ClampPercent(math.Round(round(composite, 9))))
	return h
}

// Score is shorthand for Health(r).Overall.
func (c *Calculator) Score(r *project.Record) int {
	return c.Health(r).Overall
}

// PortfolioScore returns the unweighted mean of each record's composite
// score. It is not recomputed from summed raw fields. ok is false for an
// empty set.
func (c *Calculator) PortfolioScore(records []*project.Record) (score float64, ok bool) {
	scores := make([]int, 0, len(records))
	for _, r := range records {
		scores = append(scores, c.Score(r))
	}
	return MeanScore(scores)
}

// MeanScore returns the arithmetic mean of scores. ok is false when
// scores is empty.
func MeanScore(scores []int) (mean float64, ok bool) {
	if len(scores) == 0 {
		return 0, false
	}
	total := 0
	for _, s := range scores {
		total += s
	}
	return float64(total) / float64(len(scores)), true
}
