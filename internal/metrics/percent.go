// Package metrics derives health scores, variances and letter grades from
// project records. Every function is pure: no I/O, no shared state, and no
// panics on partial data. Missing fields fall back to neutral defaults and
// zero denominators produce an unavailable Percent instead of NaN or Inf.
package metrics

import (
	"encoding/json"
	"fmt"
	"math"
)

// Percent is a percentage that may be unavailable, typically because its
// denominator was zero. The zero value is unavailable.
type Percent struct {
	Value float64
	Valid bool
}

// Unavailable is the Percent reported when a ratio cannot be computed.
var Unavailable = Percent{}

// PercentOf wraps a known percentage value. Non-finite values are reported
// as unavailable.
func PercentOf(v float64) Percent {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Unavailable
	}
	return Percent{Value: v, Valid: true}
}

// Ratio returns num/den*100, or Unavailable when den is zero.
func Ratio(num, den float64) Percent {
	if den == 0 {
		return Unavailable
	}
	return PercentOf(num / den * 100)
}

// Clamped returns the percent limited to [0, 100]. Unavailable stays
// unavailable.
func (p Percent) Clamped() Percent {
	if !p.Valid {
		return p
	}
	return Percent{Value: ClampPercent(p.Value), Valid: true}
}

// Or returns the value, or def when unavailable.
func (p Percent) Or(def float64) float64 {
	if !p.Valid {
		return def
	}
	return p.Value
}

// Format renders the percent with the given number of decimals, or "N/A".
func (p Percent) Format(decimals int) string {
	if !p.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%.*f%%", decimals, p.Value)
}

// String renders the percent with one decimal, or "N/A".
func (p Percent) String() string {
	return p.Format(1)
}

// MarshalJSON encodes an unavailable percent as null.
func (p Percent) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(round(p.Value, 4))
}

// UnmarshalJSON decodes null as unavailable.
func (p *Percent) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = Unavailable
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = PercentOf(v)
	return nil
}

// Clamp limits v to [lo, hi]. NaN clamps to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampPercent limits v to [0, 100].
func ClampPercent(v float64) float64 {
	return Clamp(v, 0, 100)
}

func round(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}
