package metrics

import (
	"github.com/sitemetrics/sitemetrics-go/internal/project"
)

// Graded pairs a percentage with its letter grade.
type Graded struct {
	Percent Percent `json:"percent"`
	Grade   string  `json:"grade"`
}

// Execution holds the count-based execution metrics of a project or a
// portfolio.
type Execution struct {
	ChangeOrderRatio        Graded  `json:"changeOrderRatio"`
	ChangeOrderApprovalRate Percent `json:"changeOrderApprovalRate"`
	SubmittalCompliance     Graded  `json:"submittalCompliance"`
	RFIPerformance          Graded  `json:"rfiPerformance"`
	RFIOverdueRate          Percent `json:"rfiOverdueRate"`

	AvgChangeOrderApprovalDays float64 `json:"avgChangeOrderApprovalDays,omitempty"`
	AvgSubmittalReviewDays     float64 `json:"avgSubmittalReviewDays,omitempty"`
	AvgRFIClosureDays          float64 `json:"avgRfiClosureDays,omitempty"`
}

// executionTotals are the summed inputs of the execution metrics.
type executionTotals struct {
	coValue, contractValue       float64
	coTotal, coApproved          int
	subTotal, subApproved        int
	rfiTotal, rfiClosed, rfiOver int
	coDays, subDays, rfiDays     weightedMean
}

// weightedMean averages per-project timings weighted by item count.
type weightedMean struct {
	sum    float64
	weight float64
}

func (m *weightedMean) add(v float64, weight int) {
	if v <= 0 || weight <= 0 {
		return
	}
	m.sum += v * float64(weight)
	m.weight += float64(weight)
}

func (m weightedMean) value() float64 {
	if m.weight == 0 {
		return 0
	}
	return m.sum / m.weight
}

func (t *executionTotals) add(r *project.Record) {
	t.coValue += r.ChangeOrders.Value
	t.contractValue += r.Financial.OriginalContractValue
	t.coTotal += r.ChangeOrders.Total
	t.coApproved += r.ChangeOrders.Approved
	t.subTotal += r.Submittals.Total
	t.subApproved += r.Submittals.Approved
	t.rfiTotal += r.RFIs.Total
	t.rfiClosed += r.RFIs.Closed
	t.rfiOver += r.RFIs.Overdue
	t.coDays.add(r.ChangeOrders.AvgApprovalDays, r.ChangeOrders.Total)
	t.subDays.add(r.Submittals.AvgReviewDays, r.Submittals.Total)
	t.rfiDays.add(r.RFIs.AvgClosureDays, r.RFIs.Total)
}

func (c *Calculator) grade(t executionTotals) Execution {
	g := c.cfg.Grades

	// The change order ratio is not a completion figure and is not clamped.
	coRatio := Ratio(t.coValue, t.contractValue)
	compliance := Ratio(float64(t.subApproved), float64(t.subTotal)).Clamped()
	rfiPerf := Ratio(float64(t.rfiClosed), float64(t.rfiTotal)).Clamped()

	return Execution{
		ChangeOrderRatio:        Graded{Percent: coRatio, Grade: g.ChangeOrderRatio.Grade(coRatio)},
		ChangeOrderApprovalRate: Ratio(float64(t.coApproved), float64(t.coTotal)).Clamped(),
		SubmittalCompliance:     Graded{Percent: compliance, Grade: g.SubmittalCompliance.Grade(compliance)},
		RFIPerformance:          Graded{Percent: rfiPerf, Grade: g.RFIPerformance.Grade(rfiPerf)},
		RFIOverdueRate:          Ratio(float64(t.rfiOver), float64(t.rfiTotal)).Clamped(),

		AvgChangeOrderApprovalDays: t.coDays.value(),
		AvgSubmittalReviewDays:     t.subDays.value(),
		AvgRFIClosureDays:          t.rfiDays.value(),
	}
}

// Execution derives the execution metrics of one record.
func (c *Calculator) Execution(r *project.Record) Execution {
	var t executionTotals
	if r != nil {
		t.add(r)
		// A single record reports its own averages even without counts.
		e := c.grade(t)
		e.AvgChangeOrderApprovalDays = r.ChangeOrders.AvgApprovalDays
		e.AvgSubmittalReviewDays = r.Submittals.AvgReviewDays
		e.AvgRFIClosureDays = r.RFIs.AvgClosureDays
		return e
	}
	return c.grade(t)
}

// PortfolioExecution aggregates execution metrics by summing counts and
// amounts across records, then grading the resulting ratios.
func (c *Calculator) PortfolioExecution(records []*project.Record) Execution {
	var t executionTotals
	for _, r := range records {
		if r != nil {
			t.add(r)
		}
	}
	return c.grade(t)
}
