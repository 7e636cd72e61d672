package project

// Record represents a single construction project as reported by the
// dashboard data source.
type Record struct {
	// Identity
	Code         string       `json:"code"`
	Name         string       `json:"name"`
	Stage        string       `json:"stage,omitempty"`
	ContractType ContractType `json:"contractType,omitempty"`

	Financial         Financial    `json:"financial"`
	Schedule          Schedule     `json:"schedule"`
	GeneralConditions CostLine     `json:"generalConditions"`
	Contingency       CostLine     `json:"contingencies"`
	ChangeOrders      ChangeOrders `json:"changeOrders"`
	Submittals        Submittals   `json:"submittals"`
	RFIs              RFIs         `json:"rfis"`
	Status            Status       `json:"status"`

	// Extensible fields carried through CSV round trips.
	Extra map[string]string `json:"extra,omitempty"`
}

// Financial holds contract value and profit figures. Amounts are in the
// project currency; BuyoutSavings may be negative (an overage).
type Financial struct {
	OriginalContractValue float64 `json:"originalContractValue"`
	CurrentContractValue  float64 `json:"currentContractValue"`
	OriginalProfit        float64 `json:"originalProfit"`
	CurrentProfit         float64 `json:"currentProfit"`
	BuyoutSavings         float64 `json:"buyoutSavings"`

	// Reported profit percentages. OriginalProfitPercent is zero when not
	// reported; PotentialTotalProfitPercent is nil, so that an explicit 0%
	// stays distinct from a missing value.
	OriginalProfitPercent       float64  `json:"originalProfitPercent,omitempty"`
	PotentialTotalProfitPercent *float64 `json:"potentialTotalProfitPercent,omitempty"`
}

// PotentialProfitPercent returns the reported potential total profit
// percent. When it is not reported it is derived from current profit plus
// buyout savings over the current contract value, and 0 when that has no
// denominator.
func (f Financial) PotentialProfitPercent() float64 {
	if f.PotentialTotalProfitPercent != nil {
		return *f.PotentialTotalProfitPercent
	}
	if f.CurrentContractValue > 0 {
		return (f.CurrentProfit + f.BuyoutSavings) / f.CurrentContractValue * 100
	}
	return 0
}

// Schedule holds completion dates and delay reporting.
type Schedule struct {
	OriginalCompletion Date `json:"originalCompletion"`
	CurrentCompletion  Date `json:"currentCompletion"`
	RevisedCompletion  Date `json:"revisedCompletion"`
	DelayDays          int  `json:"delayDays"`

	// OnSchedule is nil when the source does not report it.
	OnSchedule *bool `json:"onSchedule,omitempty"`
}

// Delayed returns true if the record reports a positive delay or an
// explicit off-schedule flag.
func (s Schedule) Delayed() bool {
	if s.DelayDays > 0 {
		return true
	}
	return s.OnSchedule != nil && !*s.OnSchedule
}

// EffectiveDelayDays returns the delay magnitude used for scoring. A
// delayed schedule without a reported magnitude uses defaultDays; an
// on-time schedule returns 0.
func (s Schedule) EffectiveDelayDays(defaultDays int) int {
	if !s.Delayed() {
		return 0
	}
	if s.DelayDays > 0 {
		return s.DelayDays
	}
	return defaultDays
}

// SlipDays returns the number of days the current completion date has
// moved past the original one, or 0 when either date is unknown or the
// project is ahead.
func (s Schedule) SlipDays() int {
	current := s.CurrentCompletion
	if s.RevisedCompletion.IsSet() {
		current = s.RevisedCompletion
	}
	days := s.OriginalCompletion.DaysUntil(current)
	if days < 0 {
		return 0
	}
	return days
}

// CostLine pairs an original estimate with the current estimate for a cost
// category such as general conditions or contingency.
type CostLine struct {
	Original float64 `json:"original"`
	Current  float64 `json:"current"`
}

// ChangeOrders summarizes change order activity.
type ChangeOrders struct {
	Total    int     `json:"total"`
	Approved int     `json:"approved"`
	Pending  int     `json:"pending"`
	Rejected int     `json:"rejected"`
	Value    float64 `json:"value"`

	AvgApprovalDays float64 `json:"avgApprovalDays,omitempty"`
}

// Submittals summarizes submittal review activity.
type Submittals struct {
	Total    int `json:"total"`
	Approved int `json:"approved"`
	Pending  int `json:"pending"`
	Rejected int `json:"rejected"`

	AvgReviewDays float64 `json:"avgReviewDays,omitempty"`
}

// RFIs summarizes requests for information.
type RFIs struct {
	Total   int `json:"total"`
	Open    int `json:"open"`
	Closed  int `json:"closed"`
	Overdue int `json:"overdue,omitempty"`

	AvgClosureDays float64 `json:"avgClosureDays,omitempty"`
}

// Status holds execution progress and narrative text.
type Status struct {
	BuyoutCompletion float64 `json:"buyoutCompletion"`
	Summary          string  `json:"summary,omitempty"`
	Risks            string  `json:"risks,omitempty"`
	NextSteps        string  `json:"nextSteps,omitempty"`
}

// NewRecord creates a new Record with defaults.
func NewRecord(code string) *Record {
	return &Record{
		Code:  code,
		Extra: make(map[string]string),
	}
}

// Clone creates a deep copy of the record for use as an editable working
// copy.
func (r *Record) Clone() *Record {
	clone := *r
	if r.Financial.PotentialTotalProfitPercent != nil {
		v := *r.Financial.PotentialTotalProfitPercent
		clone.Financial.PotentialTotalProfitPercent = &v
	}
	if r.Schedule.OnSchedule != nil {
		v := *r.Schedule.OnSchedule
		clone.Schedule.OnSchedule = &v
	}
	clone.Extra = make(map[string]string, len(r.Extra))
	for k, v := range r.Extra {
		clone.Extra[k] = v
	}
	return &clone
}

// DisplayName returns the name, falling back to the code.
func (r *Record) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Code
}

// Bool returns a pointer to b, for populating optional flags.
func Bool(b bool) *bool {
	return &b
}

// Float returns a pointer to v, for populating optional amounts.
func Float(v float64) *float64 {
	return &v
}
