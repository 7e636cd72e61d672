package metrics

import (
	"github.com/sitemetrics/sitemetrics-go/internal/project"
)

// Variance returns the signed difference between current and original,
// oriented so that a positive result is an improvement: original-current
// for LowerIsBetter (cost) categories, current-original for HigherIsBetter
// (profit, savings) categories.
func Variance(original, current float64, dir Direction) float64 {
	if dir == LowerIsBetter {
		return original - current
	}
	return current - original
}

// VariancePercent returns Variance as a percentage of original. It is
// signed and unbounded, and unavailable when original is zero.
func VariancePercent(original, current float64, dir Direction) Percent {
	return Ratio(Variance(original, current, dir), original)
}

// Category names a variance line shown on the dashboard.
type Category string

const (
	CategoryGeneralConditions Category = "general_conditions"
	CategoryContingency       Category = "contingency"
	CategoryContractValue     Category = "contract_value"
	CategoryProfit            Category = "profit"
	CategoryBuyoutSavings     Category = "buyout_savings"
)

// AllCategories returns the variance categories in display order.
func AllCategories() []Category {
	return []Category{
		CategoryContractValue,
		CategoryProfit,
		CategoryBuyoutSavings,
		CategoryGeneralConditions,
		CategoryContingency,
	}
}

// Label returns a display label.
func (c Category) Label() string {
	switch c {
	case CategoryGeneralConditions:
		return "General Conditions"
	case CategoryContingency:
		return "Contingency"
	case CategoryContractValue:
		return "Contract Value"
	case CategoryProfit:
		return "Profit"
	case CategoryBuyoutSavings:
		return "Buyout Savings"
	default:
		return string(c)
	}
}

// Direction returns the sign convention of the category.
//
//	general_conditions, contingency  lower is better (original - current)
//	contract_value, profit           higher is better (current - original)
//	buyout_savings                   higher is better, measured against the
//	                                 current contract value
func (c Category) Direction() Direction {
	switch c {
	case CategoryGeneralConditions, CategoryContingency:
		return LowerIsBetter
	default:
		return HigherIsBetter
	}
}

// CategoryVariance is the derived variance of one category.
type CategoryVariance struct {
	Original  float64   `json:"original"`
	Current   float64   `json:"current"`
	Variance  float64   `json:"variance"`
	Percent   Percent   `json:"variancePercent"`
	Direction Direction `json:"direction"`

	// Utilization is set for contingency only: the share of the original
	// contingency already drawn down, clamped to [0, 100].
	Utilization *Percent `json:"utilization,omitempty"`
}

// newCategoryVariance derives the variance figures from an original and
// current amount.
func newCategoryVariance(cat Category, original, current float64) CategoryVariance {
	dir := cat.Direction()
	cv := CategoryVariance{
		Original:  original,
		Current:   current,
		Variance:  Variance(original, current, dir),
		Percent:   VariancePercent(original, current, dir),
		Direction: dir,
	}
	if cat == CategoryContingency {
		u := Ratio(original-current, original).Clamped()
		cv.Utilization = &u
	}
	return cv
}

// amounts returns the original and current amount a record reports for a
// category.
func amounts(cat Category, r *project.Record) (original, current float64) {
	switch cat {
	case CategoryGeneralConditions:
		return r.GeneralConditions.Original, r.GeneralConditions.Current
	case CategoryContingency:
		return r.Contingency.Original, r.Contingency.Current
	case CategoryContractValue:
		return r.Financial.OriginalContractValue, r.Financial.CurrentContractValue
	case CategoryProfit:
		return r.Financial.OriginalProfit, r.Financial.CurrentProfit
	case CategoryBuyoutSavings:
		base := r.Financial.CurrentContractValue
		return base, base + r.Financial.BuyoutSavings
	default:
		return 0, 0
	}
}

// DeriveVariances returns the variance of every category for one record.
func DeriveVariances(r *project.Record) map[Category]CategoryVariance {
	result := make(map[Category]CategoryVariance, len(AllCategories()))
	if r == nil {
		r = &project.Record{}
	}
	for _, cat := range AllCategories() {
		original, current := amounts(cat, r)
		result[cat] = newCategoryVariance(cat, original, current)
	}
	return result
}

// DerivePortfolioVariances aggregates across records by summing original
// and current amounts per category and deriving one ratio from the sums.
// Portfolio dollar figures are additive; per-project percentages are not
// averaged.
func DerivePortfolioVariances(records []*project.Record) map[Category]CategoryVariance {
	result := make(map[Category]CategoryVariance, len(AllCategories()))
	for _, cat := range AllCategories() {
		var original, current float64
		for _, r := range records {
			if r == nil {
				continue
			}
			o, c := amounts(cat, r)
			original += o
			current += c
		}
		result[cat] = newCategoryVariance(cat, original, current)
	}
	return result
}
