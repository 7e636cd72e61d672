package project

import (
	"reflect"
	"testing"
)

func newTestPortfolio(t *testing.T) *Portfolio {
	t.Helper()

	p := NewPortfolio()
	records := []*Record{
		{Code: "P-1", Name: "Clinic", Stage: "Construction", ContractType: ContractGMP, Schedule: Schedule{DelayDays: 10}},
		{Code: "P-2", Name: "School", Stage: "Construction", ContractType: ContractLumpSum},
		{Code: "P-3", Name: "Garage", Stage: "Preconstruction", ContractType: ContractGMP, Schedule: Schedule{OnSchedule: Bool(false)}},
		{Code: "P-4", Name: "Depot", Stage: "Closeout"},
	}
	for _, rec := range records {
		if err := p.Add(rec); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	return p
}

func TestPortfolio(t *testing.T) {
	p := NewPortfolio()

	rec := NewRecord("P-001")
	rec.Stage = "Construction"
	if err := p.Add(rec); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	got := p.Get("P-001")
	if got == nil || got.Stage != "Construction" {
		t.Fatalf("Get returned %v", got)
	}
	if !p.Exists("P-001") || p.Exists("P-999") {
		t.Error("Exists is wrong")
	}

	if err := p.Add(rec); err == nil {
		t.Error("Add should fail for duplicate code")
	}
	if err := p.Add(NewRecord("  ")); err == nil {
		t.Error("Add should fail for blank code")
	}

	if p.Len() != 1 {
		t.Errorf("Len = %d, want 1", p.Len())
	}
}

func TestPortfolioOrder(t *testing.T) {
	p := newTestPortfolio(t)

	want := []string{"P-1", "P-2", "P-3", "P-4"}
	if got := p.Codes(); !reflect.DeepEqual(got, want) {
		t.Errorf("Codes = %v, want %v", got, want)
	}

	var codes []string
	for _, rec := range p.All() {
		codes = append(codes, rec.Code)
	}
	if !reflect.DeepEqual(codes, want) {
		t.Errorf("All = %v, want %v", codes, want)
	}
}

func TestPortfolioDelayed(t *testing.T) {
	p := newTestPortfolio(t)

	var codes []string
	for _, rec := range p.Delayed() {
		codes = append(codes, rec.Code)
	}
	// P-1 reports a magnitude, P-3 only the off-schedule flag.
	if !reflect.DeepEqual(codes, []string{"P-1", "P-3"}) {
		t.Errorf("Delayed = %v, want [P-1 P-3]", codes)
	}
}

func TestPortfolioStages(t *testing.T) {
	p := newTestPortfolio(t)

	want := []string{"Closeout", "Construction", "Preconstruction"}
	if got := p.Stages(); !reflect.DeepEqual(got, want) {
		t.Errorf("Stages = %v, want %v", got, want)
	}
	if got := len(p.ByStage()["Construction"]); got != 2 {
		t.Errorf("ByStage[Construction] = %d, want 2", got)
	}
}

func TestPortfolioClone(t *testing.T) {
	p := newTestPortfolio(t)
	p.SetSource("projects.json")

	clone := p.Clone()
	clone.Get("P-1").Name = "Edited"
	*clone.Get("P-3").Schedule.OnSchedule = true

	if p.Get("P-1").Name != "Clinic" {
		t.Error("Editing the clone changed the original record")
	}
	if *p.Get("P-3").Schedule.OnSchedule {
		t.Error("Clone shares the on-schedule flag with the original")
	}
	if !reflect.DeepEqual(clone.Codes(), p.Codes()) {
		t.Errorf("Clone codes = %v, want %v", clone.Codes(), p.Codes())
	}
	if clone.Source() != "projects.json" {
		t.Errorf("Clone source = %q", clone.Source())
	}
}
