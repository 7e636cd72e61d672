package metrics

import (
	"errors"
	"fmt"
	"math"
)

// Weights are the composite health score weights. They must sum to 1.
type Weights struct {
	Financial float64 `yaml:"financial" json:"financial"`
	Schedule  float64 `yaml:"schedule" json:"schedule"`
	Execution float64 `yaml:"execution" json:"execution"`
}

// Grades holds the grade ladder for each graded metric.
type Grades struct {
	ChangeOrderRatio    Ladder `yaml:"change_order_ratio" json:"changeOrderRatio"`
	SubmittalCompliance Ladder `yaml:"submittal_compliance" json:"submittalCompliance"`
	RFIPerformance      Ladder `yaml:"rfi_performance" json:"rfiPerformance"`
}

// Config holds the calibration constants of the derivation engine.
type Config struct {
	// ProfitCeiling is the potential profit percent treated as a perfect
	// financial score.
	ProfitCeiling float64 `yaml:"profit_ceiling" json:"profitCeiling"`

	Weights Weights `yaml:"weights" json:"weights"`

	// ScheduleBase is the schedule score of an on-time project and the
	// starting point a delay is subtracted from.
	ScheduleBase float64 `yaml:"schedule_base" json:"scheduleBase"`
	// ScheduleFloor is the lowest schedule score a delayed project can get.
	ScheduleFloor float64 `yaml:"schedule_floor" json:"scheduleFloor"`
	// DefaultDelayDays applies when a project is flagged as delayed without
	// a reported magnitude.
	DefaultDelayDays int `yaml:"default_delay_days" json:"defaultDelayDays"`

	Grades Grades `yaml:"grades" json:"grades"`
}

// DefaultConfig returns the standard calibration.
func DefaultConfig() Config {
	return Config{
		ProfitCeiling: 6,
		Weights: Weights{
			Financial: 0.40,
			Schedule:  0.35,
			Execution: 0.25,
		},
		ScheduleBase:     90,
		ScheduleFloor:    50,
		DefaultDelayDays: 30,
		Grades: Grades{
			ChangeOrderRatio:    ChangeOrderRatioLadder(),
			SubmittalCompliance: SubmittalComplianceLadder(),
			RFIPerformance:      RFIPerformanceLadder(),
		},
	}
}

// Validate checks the calibration for values that would break the score
// bounds.
func (c Config) Validate() error {
	var errs []error

	if c.ProfitCeiling <= 0 {
		errs = append(errs, fmt.Errorf("profit_ceiling must be positive, got %g", c.ProfitCeiling))
	}

	w := c.Weights
	if w.Financial < 0 || w.Schedule < 0 || w.Execution < 0 {
		errs = append(errs, fmt.Errorf("weights must not be negative"))
	}
	if sum := w.Financial + w.Schedule + w.Execution; math.Abs(sum-1) > 1e-6 {
		errs = append(errs, fmt.Errorf("weights must sum to 1, got %g", sum))
	}

	if c.ScheduleBase < 0 || c.ScheduleBase > 100 {
		errs = append(errs, fmt.Errorf("schedule_base must be within [0, 100], got %g", c.ScheduleBase))
	}
	if c.ScheduleFloor < 0 || c.ScheduleFloor > c.ScheduleBase {
		errs = append(errs, fmt.Errorf("schedule_floor must be within [0, schedule_base], got %g", c.ScheduleFloor))
	}
	if c.DefaultDelayDays < 0 {
		errs = append(errs, fmt.Errorf("default_delay_days must not be negative, got %d", c.DefaultDelayDays))
	}

	for name, l := range map[string]Ladder{
		"change_order_ratio":   c.Grades.ChangeOrderRatio,
		"submittal_compliance": c.Grades.SubmittalCompliance,
		"rfi_performance":      c.Grades.RFIPerformance,
	} {
		if err := l.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("grades.%s: %w", name, err))
		}
	}

	return errors.Join(errs...)
}
