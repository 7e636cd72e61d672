package metrics

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitemetrics/sitemetrics-go/internal/project"
)

func TestVarianceCostCategory(t *testing.T) {
	v := Variance(100000, 90000, LowerIsBetter)
	p := VariancePercent(100000, 90000, LowerIsBetter)

	assert.Equal(t, 10000.0, v)
	require.True(t, p.Valid)
	assert.InDelta(t, 10.0, p.Value, 1e-9)
}

func TestVarianceGrowthCategory(t *testing.T) {
	v := Variance(100000, 90000, HigherIsBetter)
	p := VariancePercent(100000, 90000, HigherIsBetter)

	assert.Equal(t, -10000.0, v)
	assert.InDelta(t, -10.0, p.Value, 1e-9)
}

func TestVariancePercentZeroOriginal(t *testing.T) {
	for _, current := range []float64{0, 1, -1, 1e12, math.Inf(1)} {
		p := VariancePercent(0, current, LowerIsBetter)
		assert.False(t, p.Valid, "current=%v", current)
		assert.False(t, math.IsInf(p.Value, 0))
		assert.Equal(t, "N/A", p.String())
	}
}

func TestVariancePercentIsUnbounded(t *testing.T) {
	p := VariancePercent(1000, 5000, LowerIsBetter)
	assert.InDelta(t, -400, p.Value, 1e-9)
}

func TestDeriveVariances(t *testing.T) {
	r := project.NewRecord("P-1")
	r.Financial.OriginalContractValue = 10_000_000
	r.Financial.CurrentContractValue = 10_500_000
	r.Financial.OriginalProfit = 400_000
	r.Financial.CurrentProfit = 420_000
	r.Financial.BuyoutSavings = 105_000
	r.GeneralConditions = project.CostLine{Original: 100000, Current: 90000}
	r.Contingency = project.CostLine{Original: 200000, Current: 150000}

	got := DeriveVariances(r)
	require.Len(t, got, len(AllCategories()))

	gc := got[CategoryGeneralConditions]
	assert.Equal(t, 10000.0, gc.Variance)
	assert.InDelta(t, 10.0, gc.Percent.Value, 1e-9)
	assert.Equal(t, LowerIsBetter, gc.Direction)
	assert.Nil(t, gc.Utilization)

	cont := got[CategoryContingency]
	assert.Equal(t, 50000.0, cont.Variance)
	require.NotNil(t, cont.Utilization)
	assert.InDelta(t, 25.0, cont.Utilization.Value, 1e-9)

	cv := got[CategoryContractValue]
	assert.Equal(t, 500000.0, cv.Variance)
	assert.InDelta(t, 5.0, cv.Percent.Value, 1e-9)

	profit := got[CategoryProfit]
	assert.Equal(t, 20000.0, profit.Variance)
	assert.InDelta(t, 5.0, profit.Percent.Value, 1e-9)

	savings := got[CategoryBuyoutSavings]
	assert.Equal(t, 105000.0, savings.Variance)
	assert.InDelta(t, 1.0, savings.Percent.Value, 1e-9)
}

func TestDeriveVariancesZeroContingency(t *testing.T) {
	r := project.NewRecord("P-1")
	r.Contingency = project.CostLine{Original: 0, Current: 5000}

	cont := DeriveVariances(r)[CategoryContingency]
	assert.False(t, cont.Percent.Valid)
	require.NotNil(t, cont.Utilization)
	assert.False(t, cont.Utilization.Valid)
}

func TestDeriveVariancesNilRecord(t *testing.T) {
	got := DeriveVariances(nil)
	for _, cat := range AllCategories() {
		assert.False(t, got[cat].Percent.Valid, "category %s", cat)
	}
}

func TestPortfolioVariancesAreRatioOfSums(t *testing.T) {
	a := project.NewRecord("A")
	a.GeneralConditions = project.CostLine{Original: 100000, Current: 90000} // +10%
	b := project.NewRecord("B")
	b.GeneralConditions = project.CostLine{Original: 900000, Current: 990000} // -10%

	got := DerivePortfolioVariances([]*project.Record{a, b})[CategoryGeneralConditions]

	assert.Equal(t, 1_000_000.0, got.Original)
	assert.Equal(t, 1_080_000.0, got.Current)
	assert.Equal(t, -80000.0, got.Variance)
	// Ratio of sums is -8%; the mean of ratios would have been 0%.
	assert.InDelta(t, -8.0, got.Percent.Value, 1e-9)
}

func TestPortfolioVariancesEmpty(t *testing.T) {
	got := DerivePortfolioVariances(nil)
	assert.False(t, got[CategoryProfit].Percent.Valid)
}

func TestPercentJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		A Percent `json:"a"`
		B Percent `json:"b"`
	}{A: PercentOf(12.345678), B: Unavailable})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 12.3457, "b": null}`, string(data))

	var back struct {
		A Percent `json:"a"`
		B Percent `json:"b"`
	}
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.A.Valid)
	assert.False(t, back.B.Valid)
}

func TestPercentOfRejectsNonFinite(t *testing.T) {
	assert.False(t, PercentOf(math.NaN()).Valid)
	assert.False(t, PercentOf(math.Inf(-1)).Valid)
	assert.Equal(t, 7.0, Unavailable.Or(7))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, ClampPercent(-3))
	assert.Equal(t, 100.0, ClampPercent(101))
	assert.Equal(t, 0.0, ClampPercent(math.NaN()))
	assert.Equal(t, 42.0, ClampPercent(42))
}
