package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sitemetrics/sitemetrics-go/internal/project"
	"github.com/sitemetrics/sitemetrics-go/internal/provider"
	"github.com/sitemetrics/sitemetrics-go/internal/report"
)

var (
	projectJSON   bool
	projectDelay  int
	projectBuyout float64
	projectProfit float64
)

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project CODE",
		Short: "Show the health drill-down for one project",
		Long: `Show the health score breakdown, cost variances by category and
execution grades for a single project.

The --delay, --buyout and --profit flags score an edited copy of the
project next to the stored one. The data source is not modified.

Use --json for the derived report as JSON.`,
		Args:              cobra.ExactArgs(1),
		RunE:              runProject,
		ValidArgsFunction: completeProjectCodes,
	}
	cmd.Flags().BoolVar(&projectJSON, "json", false, "output as JSON")
	cmd.Flags().IntVar(&projectDelay, "delay", 0, "what-if: schedule delay in days (0 means on schedule)")
	cmd.Flags().Float64Var(&projectBuyout, "buyout", 0, "what-if: buyout completion percent")
	cmd.Flags().Float64Var(&projectProfit, "profit", 0, "what-if: potential total profit percent")
	return cmd
}

func runProject(cmd *cobra.Command, args []string) error {
	code := strings.TrimSpace(args[0])

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	rec, err := provider.Get(cmd.Context(), s.provider, code)
	if err != nil {
		return err
	}

	edited, err := applyWhatIf(cmd, rec)
	if err != nil {
		return err
	}

	b := s.builder()
	r := b.Project(rec)
	if edited == nil {
		if projectJSON {
			return report.WriteJSON(cmd.OutOrStdout(), r)
		}
		report.RenderProject(cmd.OutOrStdout(), &r)
		return nil
	}

	w := b.Project(edited)
	if projectJSON {
		return report.WriteJSON(cmd.OutOrStdout(), map[string]any{"project": r, "whatIf": w})
	}
	report.RenderProject(cmd.OutOrStdout(), &r)
	fmt.Fprintln(cmd.OutOrStdout())
	report.RenderWhatIf(cmd.OutOrStdout(), &r, &w)
	return nil
}

// applyWhatIf returns an edited copy of rec carrying the what-if flags,
// or nil when none was given.
func applyWhatIf(cmd *cobra.Command, rec *project.Record) (*project.Record, error) {
	flags := cmd.Flags()
	if !flags.Changed("delay") && !flags.Changed("buyout") && !flags.Changed("profit") {
		return nil, nil
	}

	edited := rec.Clone()
	if flags.Changed("delay") {
		if projectDelay < 0 {
			return nil, fmt.Errorf("--delay must not be negative, got %d", projectDelay)
		}
		edited.Schedule.DelayDays = projectDelay
		edited.Schedule.OnSchedule = project.Bool(projectDelay == 0)
	}
	if flags.Changed("buyout") {
		if projectBuyout < 0 || projectBuyout > 100 {
			return nil, fmt.Errorf("--buyout must be between 0 and 100, got %g", projectBuyout)
		}
		edited.Status.BuyoutCompletion = projectBuyout
	}
	if flags.Changed("profit") {
		edited.Financial.PotentialTotalProfitPercent = project.Float(projectProfit)
	}
	return edited, nil
}

// completeProjectCodes offers the codes of the configured data source.
func completeProjectCodes(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	s, err := openSession(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer s.Close()

	p, err := s.provider.Load(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return p.Codes(), cobra.ShellCompDirectiveNoFileComp
}
