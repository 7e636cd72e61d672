package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sitemetrics/sitemetrics-go/internal/metrics"
	"github.com/sitemetrics/sitemetrics-go/internal/output"
	"github.com/sitemetrics/sitemetrics-go/internal/project"
	"github.com/sitemetrics/sitemetrics-go/internal/report"
)

var healthJSON bool

// Health check statuses.
const (
	HealthStatusHealthy  = "healthy"
	HealthStatusWarnings = "warnings"
	HealthStatusErrors   = "errors"
)

// HealthResult is the machine-readable outcome of a data health check.
type HealthResult struct {
	Status       string          `json:"status"`
	Source       string          `json:"source"`
	Projects     int             `json:"projects"`
	OverallScore metrics.Percent `json:"overallScore"`
	Errors       []project.Issue `json:"errors"`
	Warnings     []project.Issue `json:"warnings"`
}

// ExitCode maps the status to the command's exit code.
func (r *HealthResult) ExitCode() int {
	switch r.Status {
	case HealthStatusErrors:
		return 2
	case HealthStatusWarnings:
		return 1
	default:
		return 0
	}
}

func newHealthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check project data quality for CI/CD pipelines",
		Long: `Validate every project record in the data source.

Exit codes:
  0  All records are consistent
  1  Warnings present (metrics still computed)
  2  Errors present (records violate the data model)

Use --json for machine-readable output in CI/CD pipelines.`,
		RunE: runHealth,
	}
	cmd.Flags().BoolVar(&healthJSON, "json", false, "output as JSON")
	return cmd
}

func runHealth(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	p, issues, err := s.load(cmd.Context())
	if err != nil {
		return err
	}
	rep := s.builder().Portfolio(p)

	result := newHealthResult(s.provider.Name(), &rep, issues)

	if healthJSON {
		if err := report.WriteJSON(cmd.OutOrStdout(), result); err != nil {
			return err
		}
	} else {
		displayHealth(cmd, result)
	}

	if code := result.ExitCode(); code != 0 {
		return NewExitError(code, "")
	}
	return nil
}

func newHealthResult(source string, rep *report.PortfolioReport, issues []project.Issue) *HealthResult {
	result := &HealthResult{
		Status:       HealthStatusHealthy,
		Source:       source,
		Projects:     rep.ProjectCount,
		OverallScore: rep.OverallScore,
		Errors:       []project.Issue{},
		Warnings:     []project.Issue{},
	}
	for _, issue := range issues {
		if issue.IsError() {
			result.Errors = append(result.Errors, issue)
		} else {
			result.Warnings = append(result.Warnings, issue)
		}
	}

	switch {
	case len(result.Errors) > 0:
		result.Status = HealthStatusErrors
	case len(result.Warnings) > 0:
		result.Status = HealthStatusWarnings
	}
	return result
}

func displayHealth(cmd *cobra.Command, result *HealthResult) {
	cmd.Println(output.Header("Data Health Check", 80))
	cmd.Println()
	cmd.Printf("Source:   %s\n", result.Source)
	cmd.Printf("Projects: %d\n", result.Projects)
	if result.OverallScore.Valid {
		cmd.Printf("Portfolio score: %s\n", output.Color(fmt.Sprintf("%.1f", result.OverallScore.Value), output.HealthColor(result.OverallScore.Value)))
	}
	cmd.Println()

	for _, issue := range result.Errors {
		cmd.Printf("  %s %s\n", output.Color("✗", output.Red), issue)
	}
	for _, issue := range result.Warnings {
		cmd.Printf("  %s %s\n", output.Color("⚠", output.Yellow), issue)
	}
	if len(result.Errors)+len(result.Warnings) > 0 {
		cmd.Println()
	}

	switch result.Status {
	case HealthStatusErrors:
		cmd.Printf("%s %d errors, %d warnings\n", output.Color("FAIL", output.Red), len(result.Errors), len(result.Warnings))
	case HealthStatusWarnings:
		cmd.Printf("%s %d warnings\n", output.Color("WARN", output.Yellow), len(result.Warnings))
	default:
		cmd.Printf("%s all records consistent\n", output.Color("PASS", output.Green))
	}
}
