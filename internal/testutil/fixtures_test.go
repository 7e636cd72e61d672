package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sitemetrics/sitemetrics-go/internal/config"
	"github.com/sitemetrics/sitemetrics-go/internal/metrics"
	"github.com/sitemetrics/sitemetrics-go/internal/project"
)

func TestFixtures(t *testing.T) {
	p := NewTestPortfolio(t)
	if p == nil {
		t.Fatal("NewTestPortfolio returned nil")
	}
	if p.Len() != 0 {
		t.Errorf("Expected empty portfolio, got %d projects", p.Len())
	}
	if p.Source() != "test" {
		t.Errorf("Expected source test, got %q", p.Source())
	}
}

func TestNewTestRecord(t *testing.T) {
	rec := NewTestRecord("P-100")

	if rec.Code != "P-100" {
		t.Errorf("Expected code P-100, got %s", rec.Code)
	}
	if rec.Schedule.Delayed() {
		t.Error("Default record should be on schedule")
	}
	if issues := project.Validate(rec); len(issues) != 0 {
		t.Errorf("Default record should validate cleanly, got %v", issues)
	}

	calc := metrics.NewCalculator(metrics.DefaultConfig())
	if score := calc.Score(rec); score != 94 {
		t.Errorf("Default record score = %d, want 94", score)
	}
}

func TestNewTestRecordWithOptions(t *testing.T) {
	rec := NewTestRecord("P-101",
		WithName("Custom"),
		WithStage("Closeout"),
		WithContractType(project.ContractLumpSum),
		WithProfitPercent(4.5),
		WithDelay(12),
		WithBuyout(55),
		WithContingency(100, 40),
		WithRFIs(8, 2, 6, 1),
	)

	if rec.Name != "Custom" || rec.Stage != "Closeout" {
		t.Errorf("Name/stage not applied: %q %q", rec.Name, rec.Stage)
	}
	if rec.ContractType != project.ContractLumpSum {
		t.Errorf("Expected LUMP_SUM, got %s", rec.ContractType)
	}
	if rec.Financial.PotentialProfitPercent() != 4.5 {
		t.Errorf("Expected profit 4.5, got %v", rec.Financial.PotentialProfitPercent())
	}
	if rec.Schedule.EffectiveDelayDays(30) != 12 {
		t.Errorf("Expected delay 12, got %d", rec.Schedule.EffectiveDelayDays(30))
	}
	if rec.Status.BuyoutCompletion != 55 {
		t.Errorf("Expected buyout 55, got %v", rec.Status.BuyoutCompletion)
	}
	if rec.Contingency.Current != 40 || rec.RFIs.Overdue != 1 {
		t.Errorf("Cost lines or counts not applied: %+v %+v", rec.Contingency, rec.RFIs)
	}
}

func TestSampleRecords(t *testing.T) {
	calc := metrics.NewCalculator(metrics.DefaultConfig())
	want := []int{94, 62, 26}

	records := SampleRecords()
	if len(records) != len(want) {
		t.Fatalf("Expected %d records, got %d", len(want), len(records))
	}
	for i, rec := range records {
		if got := calc.Score(rec); got != want[i] {
			t.Errorf("%s score = %d, want %d", rec.Code, got, want[i])
		}
	}

	p := NewTestPortfolio(t, WithRecords(records...))
	if p.Len() != 3 {
		t.Errorf("Expected 3 projects, got %d", p.Len())
	}
}

func TestNewTestConfig(t *testing.T) {
	cfg := NewTestConfig(t,
		WithSource("data/p.csv"),
		WithStageDescription("Design", "Design development"),
		WithProfitCeiling(5),
	)

	if cfg.Sitemetrics.Source != "data/p.csv" {
		t.Errorf("Expected source data/p.csv, got %q", cfg.Sitemetrics.Source)
	}
	if cfg.StageDescription("Design") != "Design development" {
		t.Errorf("Stage description not applied")
	}
	if cfg.Sitemetrics.Health.ProfitCeiling != 5 {
		t.Errorf("Expected ceiling 5, got %v", cfg.Sitemetrics.Health.ProfitCeiling)
	}
}

func TestTempProject(t *testing.T) {
	dir := TempProject(t)

	info, err := os.Stat(filepath.Join(dir, ".sitemetrics"))
	if err != nil || !info.IsDir() {
		t.Fatalf(".sitemetrics directory missing: %v", err)
	}
}

func TestTempProjectFull(t *testing.T) {
	cfg := NewTestConfig(t)
	p := NewTestPortfolio(t, WithRecords(SampleRecords()...))

	dir := TempProjectFull(t, cfg, p)

	loaded, base, err := config.LoadFromDir(dir)
	if err != nil {
		t.Fatalf("LoadFromDir failed: %v", err)
	}
	dataPath := loaded.SourcePath(base)
	if dataPath != filepath.Join(dir, "data", "projects.json") {
		t.Errorf("SourcePath = %q", dataPath)
	}

	readBack, err := project.LoadJSON(dataPath)
	if err != nil {
		t.Fatalf("LoadJSON failed: %v", err)
	}
	if readBack.Len() != 3 {
		t.Errorf("Expected 3 projects in data file, got %d", readBack.Len())
	}
}
