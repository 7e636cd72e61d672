package project

import (
	"testing"
	"time"
)

func TestContractTypeParsing(t *testing.T) {
	tests := []struct {
		input   string
		want    ContractType
		wantErr bool
	}{
		{"GMP", ContractGMP, false},
		{"gmp", ContractGMP, false},
		{"Guaranteed Maximum Price", ContractGMP, false},
		{"Lump Sum", ContractLumpSum, false},
		{"stipulated-sum", ContractLumpSum, false},
		{"cost-plus", ContractCostPlus, false},
		{"", ContractUnknown, false},
		{"T&M", ContractUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseContractType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseContractType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ParseContractType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}

	if ContractLumpSum.Label() != "Lump Sum" || ContractUnknown.Label() != "Unknown" {
		t.Error("Unexpected contract labels")
	}
	if len(AllContractTypes()) != 3 {
		t.Errorf("AllContractTypes = %v", AllContractTypes())
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"2025-09-30", "2025-09-30", false},
		{" 2025-01-02 ", "2025-01-02", false},
		{"2025-12-04T17:30:00-05:00", "2025-12-04", false},
		{"", "", false},
		{"09/30/2025", "", true},
	}

	for _, tt := range tests {
		got, err := ParseDate(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("ParseDate(%q) = %q, want %q", tt.input, got.String(), tt.want)
		}
	}
}

func TestDateJSON(t *testing.T) {
	var d Date
	if err := d.UnmarshalJSON([]byte(`"2025-03-01"`)); err != nil {
		t.Fatalf("UnmarshalJSON failed: %v", err)
	}
	if !d.IsSet() || d.String() != "2025-03-01" {
		t.Errorf("Unexpected date %v", d)
	}

	if err := d.UnmarshalJSON([]byte("null")); err != nil || d.IsSet() {
		t.Errorf("null should clear the date, got %v (%v)", d, err)
	}
	data, _ := d.MarshalJSON()
	if string(data) != "null" {
		t.Errorf("Zero date should encode as null, got %s", data)
	}

	if err := d.UnmarshalJSON([]byte("20250301")); err == nil {
		t.Error("Expected error for a numeric date")
	}
}

func TestDaysUntil(t *testing.T) {
	a := NewDate(2025, time.September, 30)
	b := NewDate(2025, time.December, 4)

	if got := a.DaysUntil(b); got != 65 {
		t.Errorf("DaysUntil = %d, want 65", got)
	}
	if got := b.DaysUntil(a); got != -65 {
		t.Errorf("DaysUntil backwards = %d, want -65", got)
	}
	if got := a.DaysUntil(Date{}); got != 0 {
		t.Errorf("DaysUntil unknown = %d, want 0", got)
	}
}

func TestPotentialProfitPercent(t *testing.T) {
	tests := []struct {
		name string
		f    Financial
		want float64
	}{
		{"reported", Financial{PotentialTotalProfitPercent: Float(5.24), CurrentContractValue: 100}, 5.24},
		{"reported zero", Financial{PotentialTotalProfitPercent: Float(0), CurrentContractValue: 1000, CurrentProfit: 50}, 0},
		{"derived", Financial{CurrentContractValue: 1000, CurrentProfit: 40, BuyoutSavings: 10}, 5},
		{"overage", Financial{CurrentContractValue: 1000, CurrentProfit: 40, BuyoutSavings: -20}, 2},
		{"no contract", Financial{CurrentProfit: 40}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.PotentialProfitPercent(); got != tt.want {
				t.Errorf("PotentialProfitPercent = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScheduleDelay(t *testing.T) {
	tests := []struct {
		name      string
		s         Schedule
		delayed   bool
		effective int
	}{
		{"on time", Schedule{OnSchedule: Bool(true)}, false, 0},
		{"unreported", Schedule{}, false, 0},
		{"magnitude", Schedule{DelayDays: 12}, true, 12},
		{"flag only", Schedule{OnSchedule: Bool(false)}, true, 30},
		{"flag and magnitude", Schedule{DelayDays: 45, OnSchedule: Bool(false)}, true, 45},
		{"negative delay", Schedule{DelayDays: -5}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.Delayed(); got != tt.delayed {
				t.Errorf("Delayed = %v, want %v", got, tt.delayed)
			}
			if got := tt.s.EffectiveDelayDays(30); got != tt.effective {
				t.Errorf("EffectiveDelayDays = %d, want %d", got, tt.effective)
			}
		})
	}
}

func TestSlipDays(t *testing.T) {
	s := Schedule{
		OriginalCompletion: NewDate(2025, time.June, 1),
		CurrentCompletion:  NewDate(2025, time.June, 11),
	}
	if got := s.SlipDays(); got != 10 {
		t.Errorf("SlipDays = %d, want 10", got)
	}

	s.RevisedCompletion = NewDate(2025, time.July, 1)
	if got := s.SlipDays(); got != 30 {
		t.Errorf("SlipDays with revision = %d, want 30", got)
	}

	s.RevisedCompletion = NewDate(2025, time.May, 1)
	if got := s.SlipDays(); got != 0 {
		t.Errorf("SlipDays ahead of schedule = %d, want 0", got)
	}
}

func TestRecordClone(t *testing.T) {
	rec := NewRecord("P-1")
	rec.Name = "Original"
	rec.Schedule.OnSchedule = Bool(false)
	rec.Financial.PotentialTotalProfitPercent = Float(4.5)
	rec.Extra["owner"] = "City"

	clone := rec.Clone()
	clone.Name = "Edited"
	*clone.Schedule.OnSchedule = true
	*clone.Financial.PotentialTotalProfitPercent = 0
	clone.Extra["owner"] = "County"

	if rec.Name != "Original" || *rec.Schedule.OnSchedule || rec.Extra["owner"] != "City" ||
		*rec.Financial.PotentialTotalProfitPercent != 4.5 {
		t.Errorf("Clone shares state with the original: %+v", rec)
	}

	if NewRecord("P-2").DisplayName() != "P-2" || rec.DisplayName() != "Original" {
		t.Error("Unexpected display names")
	}
}
