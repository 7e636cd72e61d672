package metrics

import (
	"fmt"
	"strings"
)

// GradeUnavailable is reported when the graded percent is unavailable.
const GradeUnavailable = "N/A"

// Direction says whether a metric improves as it rises or as it falls.
type Direction string

const (
	HigherIsBetter Direction = "higher"
	LowerIsBetter  Direction = "lower"
)

// Step is one rung of a grade ladder.
type Step struct {
	Threshold float64 `yaml:"threshold" json:"threshold"`
	Grade     string  `yaml:"grade" json:"grade"`
}

// Ladder maps a continuous percentage to a letter grade. For HigherIsBetter
// ladders the first step whose threshold is <= the value wins; for
// LowerIsBetter ladders the first step whose threshold is >= the value wins.
// Values that clear no step receive Fallback.
type Ladder struct {
	Direction Direction `yaml:"direction" json:"direction"`
	Steps     []Step    `yaml:"steps" json:"steps"`
	Fallback  string    `yaml:"fallback" json:"fallback"`
}

// Grade returns the letter grade for p.
func (l Ladder) Grade(p Percent) string {
	if !p.Valid {
		return GradeUnavailable
	}
	for _, s := range l.Steps {
		switch l.Direction {
		case LowerIsBetter:
			if p.Value <= s.Threshold {
				return s.Grade
			}
		default:
			if p.Value >= s.Threshold {
				return s.Grade
			}
		}
	}
	return l.Fallback
}

// Validate checks that the ladder has a known direction, a fallback grade
// and thresholds ordered from best to worst.
func (l Ladder) Validate() error {
	if l.Direction != HigherIsBetter && l.Direction != LowerIsBetter {
		return fmt.Errorf("invalid direction %q", l.Direction)
	}
	if len(l.Steps) == 0 {
		return fmt.Errorf("ladder has no steps")
	}
	if strings.TrimSpace(l.Fallback) == "" {
		return fmt.Errorf("ladder has no fallback grade")
	}
	for i, s := range l.Steps {
		if strings.TrimSpace(s.Grade) == "" {
			return fmt.Errorf("step %d has no grade", i)
		}
		if i == 0 {
			continue
		}
		prev := l.Steps[i-1].Threshold
		if l.Direction == HigherIsBetter && s.Threshold >= prev {
			return fmt.Errorf("step %d threshold %g must be below %g", i, s.Threshold, prev)
		}
		if l.Direction == LowerIsBetter && s.Threshold <= prev {
			return fmt.Errorf("step %d threshold %g must be above %g", i, s.Threshold, prev)
		}
	}
	return nil
}

// SubmittalComplianceLadder grades the share of submittals approved.
func SubmittalComplianceLadder() Ladder {
	return Ladder{
		Direction: HigherIsBetter,
		Steps: []Step{
			{90, "A+"}, {85, "A"}, {80, "B+"}, {75, "B"}, {70, "C+"},
		},
		Fallback: "C",
	}
}

// RFIPerformanceLadder grades the share of RFIs closed.
func RFIPerformanceLadder() Ladder {
	return Ladder{
		Direction: HigherIsBetter,
		Steps: []Step{
			{95, "A+"}, {90, "A"}, {85, "B+"}, {80, "B"}, {70, "C+"},
		},
		Fallback: "C",
	}
}

// ChangeOrderRatioLadder grades change order value as a share of the
// original contract. Smaller is better.
func ChangeOrderRatioLadder() Ladder {
	return Ladder{
		Direction: LowerIsBetter,
		Steps: []Step{
			{2, "A+"}, {4, "A"}, {6, "B+"}, {8, "B"}, {10, "C+"},
		},
		Fallback: "C",
	}
}
