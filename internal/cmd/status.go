package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sitemetrics/sitemetrics-go/internal/report"
)

var (
	statusVerbosity int
	statusSort      string
	statusDesc      bool
	statusStage     string
	statusMinScore  int
	statusBand      string
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show portfolio health",
		Long: `Display the health of the project portfolio.

The verbosity level controls how much detail is shown:
  (default)  Portfolio score, band counts and execution grades
  -v         Add the per-project table
  -vv        Add the portfolio cost variance table

--sort, --stage, --min-score and --band shape the project table only;
the summary always covers the whole portfolio.`,
		RunE: runStatus,
	}

	cmd.Flags().CountVarP(&statusVerbosity, "verbose", "v", "increase verbosity (-v, -vv)")
	cmd.Flags().StringVar(&statusSort, "sort", "", "sort projects by score, code, name or delay")
	cmd.Flags().BoolVar(&statusDesc, "desc", false, "reverse the sort order")
	cmd.Flags().StringVar(&statusStage, "stage", "", "only show projects in this stage")
	cmd.Flags().IntVar(&statusMinScore, "min-score", 0, "only show projects scoring at least this much")
	cmd.Flags().StringVar(&statusBand, "band", "", "only show projects in this band (excellent, good, fair, at-risk)")
	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	key, err := report.ParseSortKey(statusSort)
	if err != nil {
		return err
	}
	band, err := report.ParseBand(statusBand)
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	rep, err := s.portfolioReport(cmd.Context())
	if err != nil {
		return err
	}

	filter := report.Filter{Stage: statusStage, MinScore: statusMinScore, Band: band}
	rep.Projects = filter.Apply(rep.Projects)
	report.Sort(rep.Projects, key, statusDesc)

	verbosity := statusVerbosity
	if verbosity > report.VerbosityVariance {
		verbosity = report.VerbosityVariance
	}
	report.RenderStatus(cmd.OutOrStdout(), rep, verbosity)
	return nil
}
