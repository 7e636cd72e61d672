// Package testutil provides test utilities and fixtures for sitemetrics testing.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sitemetrics/sitemetrics-go/internal/config"
	"github.com/sitemetrics/sitemetrics-go/internal/project"
)

// PortfolioOption configures a test portfolio.
type PortfolioOption func(*project.Portfolio)

// NewTestPortfolio creates a portfolio for testing with optional configuration.
func NewTestPortfolio(t *testing.T, opts ...PortfolioOption) *project.Portfolio {
	t.Helper()

	p := project.NewPortfolio()
	p.SetSource("test")

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// WithRecord adds a record to the portfolio.
func WithRecord(rec *project.Record) PortfolioOption {
	return func(p *project.Portfolio) {
		_ = p.Add(rec)
	}
}

// WithRecords adds multiple records to the portfolio.
func WithRecords(recs ...*project.Record) PortfolioOption {
	return func(p *project.Portfolio) {
		for _, rec := range recs {
			_ = p.Add(rec)
		}
	}
}

// RecordOption configures a test record.
type RecordOption func(*project.Record)

// NewTestRecord creates an on-schedule record for testing. With the
// default calibration it scores 94: financial 100, schedule 90 and
// execution 90.
func NewTestRecord(code string, opts ...RecordOption) *project.Record {
	rec := project.NewRecord(code)
	rec.Name = "Test project " + code
	rec.Stage = "Construction"
	rec.ContractType = project.ContractGMP
	rec.Financial = project.Financial{
		OriginalContractValue:       10_000_000,
		CurrentContractValue:        10_000_000,
		OriginalProfit:              500_000,
		CurrentProfit:               500_000,
		PotentialTotalProfitPercent: project.Float(6),
	}
	rec.Schedule.OnSchedule = project.Bool(true)
	rec.GeneralConditions = project.CostLine{Original: 800_000, Current: 800_000}
	rec.Contingency = project.CostLine{Original: 300_000, Current: 300_000}
	rec.ChangeOrders = project.ChangeOrders{Total: 5, Approved: 4, Pending: 1, Value: 300_000}
	rec.Submittals = project.Submittals{Total: 20, Approved: 18, Pending: 2}
	rec.RFIs = project.RFIs{Total: 10, Open: 1, Closed: 9}
	rec.Status.BuyoutCompletion = 90

	for _, opt := range opts {
		opt(rec)
	}

	return rec
}

// WithName sets the project name.
func WithName(name string) RecordOption {
	return func(r *project.Record) {
		r.Name = name
	}
}

// WithStage sets the project stage.
func WithStage(stage string) RecordOption {
	return func(r *project.Record) {
		r.Stage = stage
	}
}

// WithContractType sets the contract type.
func WithContractType(ct project.ContractType) RecordOption {
	return func(r *project.Record) {
		r.ContractType = ct
	}
}

// WithProfitPercent sets the reported potential total profit percent.
func WithProfitPercent(pct float64) RecordOption {
	return func(r *project.Record) {
		r.Financial.PotentialTotalProfitPercent = project.Float(pct)
	}
}

// WithContract sets the original and current contract values.
func WithContract(original, current float64) RecordOption {
	return func(r *project.Record) {
		r.Financial.OriginalContractValue = original
		r.Financial.CurrentContractValue = current
	}
}

// WithCurrentProfit sets the current profit amount.
func WithCurrentProfit(profit float64) RecordOption {
	return func(r *project.Record) {
		r.Financial.CurrentProfit = profit
	}
}

// WithDelay marks the record delayed by the given number of days. Zero
// marks it off schedule without a magnitude.
func WithDelay(days int) RecordOption {
	return func(r *project.Record) {
		r.Schedule.DelayDays = days
		r.Schedule.OnSchedule = project.Bool(false)
	}
}

// WithBuyout sets the buyout completion percentage.
func WithBuyout(pct float64) RecordOption {
	return func(r *project.Record) {
		r.Status.BuyoutCompletion = pct
	}
}

// WithGeneralConditions sets the general conditions budget.
func WithGeneralConditions(original, current float64) RecordOption {
	return func(r *project.Record) {
		r.GeneralConditions = project.CostLine{Original: original, Current: current}
	}
}

// WithContingency sets the contingency budget.
func WithContingency(original, current float64) RecordOption {
	return func(r *project.Record) {
		r.Contingency = project.CostLine{Original: original, Current: current}
	}
}

// WithChangeOrders sets the change order counts and value.
func WithChangeOrders(total, approved, pending, rejected int, value float64) RecordOption {
	return func(r *project.Record) {
		r.ChangeOrders = project.ChangeOrders{
			Total: total, Approved: approved, Pending: pending, Rejected: rejected, Value: value,
		}
	}
}

// WithSubmittals sets the submittal counts.
func WithSubmittals(total, approved, pending, rejected int) RecordOption {
	return func(r *project.Record) {
		r.Submittals = project.Submittals{Total: total, Approved: approved, Pending: pending, Rejected: rejected}
	}
}

// WithRFIs sets the RFI counts.
func WithRFIs(total, open, closed, overdue int) RecordOption {
	return func(r *project.Record) {
		r.RFIs = project.RFIs{Total: total, Open: open, Closed: closed, Overdue: overdue}
	}
}

// ConfigOption configures a test config.
type ConfigOption func(*config.Config)

// NewTestConfig creates a config for testing with optional configuration.
func NewTestConfig(t *testing.T, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfg := config.DefaultConfig()

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// WithSource sets the data source in the config.
func WithSource(source string) ConfigOption {
	return func(c *config.Config) {
		c.Sitemetrics.Source = source
	}
}

// WithStageDescription adds a stage description to the config.
func WithStageDescription(stage, description string) ConfigOption {
	return func(c *config.Config) {
		if c.Sitemetrics.Stages == nil {
			c.Sitemetrics.Stages = make(map[string]string)
		}
		c.Sitemetrics.Stages[stage] = description
	}
}

// WithProfitCeiling sets the profit percent that earns a full financial
// subscore.
func WithProfitCeiling(ceiling float64) ConfigOption {
	return func(c *config.Config) {
		c.Sitemetrics.Health.ProfitCeiling = ceiling
	}
}

// TempProject creates a temporary directory with a .sitemetrics
// directory. It is removed when the test ends.
func TempProject(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".sitemetrics"), 0755); err != nil {
		t.Fatalf("Failed to create .sitemetrics directory: %v", err)
	}
	return dir
}

// TempProjectWithConfig creates a temp project with a config file.
func TempProjectWithConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()

	dir := TempProject(t)
	if err := cfg.Save(filepath.Join(dir, config.DefaultPath)); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return dir
}

// TempProjectFull creates a temp project whose config points at a JSON
// data file holding the portfolio.
func TempProjectFull(t *testing.T, cfg *config.Config, p *project.Portfolio) string {
	t.Helper()

	dir := TempProject(t)

	dataPath := filepath.Join(dir, "data", "projects.json")
	if err := os.MkdirAll(filepath.Dir(dataPath), 0755); err != nil {
		t.Fatalf("Failed to create data directory: %v", err)
	}
	f, err := os.Create(dataPath)
	if err != nil {
		t.Fatalf("Failed to create data file: %v", err)
	}
	if err := p.WriteJSON(f); err != nil {
		f.Close()
		t.Fatalf("Failed to write data file: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Failed to close data file: %v", err)
	}

	cfg.Sitemetrics.Source = "data/projects.json"
	if err := cfg.Save(filepath.Join(dir, config.DefaultPath)); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	return dir
}

// SampleRecords returns a small mixed portfolio scoring 94, 62 and 26
// with the default calibration. The last record is flagged late without
// a delay magnitude and has no execution counts.
func SampleRecords() []*project.Record {
	return []*project.Record{
		NewTestRecord("P-001", WithName("Alpha Clinic")),
		NewTestRecord("P-002", WithName("Bravo School"), WithDelay(20), WithProfitPercent(3), WithBuyout(70)),
		NewTestRecord("P-003", WithName("Charlie Garage"), WithStage("Preconstruction"),
			WithDelay(0), WithProfitPercent(0), WithCurrentProfit(0), WithBuyout(20),
			WithChangeOrders(0, 0, 0, 0, 0), WithSubmittals(0, 0, 0, 0), WithRFIs(0, 0, 0, 0)),
	}
}
