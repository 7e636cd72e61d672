package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/sitemetrics/sitemetrics-go/internal/metrics"
	"github.com/sitemetrics/sitemetrics-go/internal/output"
)

const width = 80

// Verbosity levels of the terminal summary.
const (
	VerbositySummary = iota
	VerbosityProjects
	VerbosityVariance
)

// RenderStatus writes the portfolio summary. VerbosityProjects adds the
// per-project and per-stage tables, and VerbosityVariance adds the
// portfolio variance table.
func RenderStatus(w io.Writer, rep *PortfolioReport, verbosity int) {
	fmt.Fprintln(w, output.Header("Portfolio Health", width))
	fmt.Fprintln(w)

	if !rep.OverallScore.Valid {
		fmt.Fprintln(w, "No projects loaded.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, output.Header("0 projects", width))
		return
	}

	score := rep.OverallScore.Value
	fmt.Fprintf(w, "Health score: %s  %s %s\n",
		output.ProgressBar(score, 50),
		output.Color(fmt.Sprintf("%.1f", score), output.HealthColor(score)),
		output.BandIcon(rep.Band))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s %d excellent  %s %d good  %s %d fair  %s %d at risk\n",
		output.BandIcon(metrics.BandExcellent), rep.BandCounts[metrics.BandExcellent],
		output.BandIcon(metrics.BandGood), rep.BandCounts[metrics.BandGood],
		output.BandIcon(metrics.BandFair), rep.BandCounts[metrics.BandFair],
		output.BandIcon(metrics.BandAtRisk), rep.BandCounts[metrics.BandAtRisk])
	fmt.Fprintf(w, "(%d projects)\n", rep.ProjectCount)
	if rep.DelayedCount > 0 {
		fmt.Fprintf(w, "%d of %d projects behind schedule\n", rep.DelayedCount, rep.ProjectCount)
	}
	fmt.Fprintln(w)

	e := rep.Execution
	fmt.Fprintf(w, "Change order ratio:    %8s  %s\n",
		output.FormatPercent(e.ChangeOrderRatio.Percent), output.FormatGrade(e.ChangeOrderRatio.Grade))
	fmt.Fprintf(w, "Submittal compliance:  %8s  %s\n",
		output.FormatPercent(e.SubmittalCompliance.Percent), output.FormatGrade(e.SubmittalCompliance.Grade))
	fmt.Fprintf(w, "RFI performance:       %8s  %s\n",
		output.FormatPercent(e.RFIPerformance.Percent), output.FormatGrade(e.RFIPerformance.Grade))
	fmt.Fprintln(w)

	if verbosity >= VerbosityProjects {
		fmt.Fprint(w, ProjectTable(rep.Projects).RenderCompact())
		fmt.Fprintln(w)
		if len(rep.Stages) > 0 {
			fmt.Fprintln(w, output.SubHeader("Stages", width))
			fmt.Fprint(w, StageTable(rep.Stages).RenderCompact())
			fmt.Fprintln(w)
		}
	}
	if verbosity >= VerbosityVariance {
		fmt.Fprintln(w, output.SubHeader("Portfolio Variance", width))
		fmt.Fprint(w, VarianceTable(rep.VarianceByCategory).RenderCompact())
		fmt.Fprintln(w)
	}

	footer := fmt.Sprintf("%d projects, mean score %.1f", rep.ProjectCount, score)
	if n := len(rep.Diagnostics); n > 0 {
		footer += fmt.Sprintf(", %d data issues", n)
	}
	fmt.Fprintln(w, output.Header(footer, width))
}

// ProjectTable builds the per-project table.
func ProjectTable(rows []ProjectReport) *output.Table {
	table := output.NewTable("", "Code", "Project", "Stage", "Score", "Fin", "Sched", "Exec", "Delay", "CO", "Sub", "RFI").
		SetAlign(output.AlignRight, 4, 5, 6, 7, 8)
	for i := range rows {
		r := &rows[i]
		delay := "-"
		if r.Delayed {
			delay = strconv.Itoa(r.DelayDays) + "d"
		}
		table.AddRow(
			output.BandIcon(r.Band),
			r.Code,
			output.TruncateCell(r.Name, 32),
			r.Stage,
			output.FormatScore(r.Overall),
			fmt.Sprintf("%.0f", r.Health.Financial),
			fmt.Sprintf("%.0f", r.Health.Schedule),
			fmt.Sprintf("%.0f", r.Health.Execution),
			delay,
			output.FormatGrade(r.Execution.ChangeOrderRatio.Grade),
			output.FormatGrade(r.Execution.SubmittalCompliance.Grade),
			output.FormatGrade(r.Execution.RFIPerformance.Grade),
		)
	}
	return table
}

// StageTable builds the per-stage breakdown.
func StageTable(stages []StageSummary) *output.Table {
	table := output.NewTable("Stage", "Description", "Projects", "Delayed", "Mean Score").
		SetAlign(output.AlignRight, 2, 3, 4)
	for _, s := range stages {
		table.AddRow(
			s.Stage,
			output.TruncateCell(s.Description, 40),
			strconv.Itoa(s.Projects),
			strconv.Itoa(s.Delayed),
			output.FormatPercent(s.MeanScore),
		)
	}
	return table
}

// VarianceTable builds a table of per-category variances.
func VarianceTable(byCat map[metrics.Category]metrics.CategoryVariance) *output.Table {
	table := output.NewTable("Category", "Original", "Current", "Variance", "Variance %").
		SetAlign(output.AlignRight, 1, 2, 3, 4)
	for _, cat := range metrics.AllCategories() {
		v := byCat[cat]
		table.AddRow(
			cat.Label(),
			output.FormatMoney(v.Original),
			output.FormatMoney(v.Current),
			output.FormatMoney(v.Variance),
			output.FormatVariancePercent(v.Percent),
		)
	}
	return table
}

// RenderProject writes the drill-down view of one project.
func RenderProject(w io.Writer, r *ProjectReport) {
	fmt.Fprintln(w, output.Header(r.Code+" "+r.Name, width))
	fmt.Fprintln(w)

	if r.Stage != "" {
		fmt.Fprintf(w, "Stage:          %s\n", r.Stage)
	}
	if r.ContractType != "" {
		fmt.Fprintf(w, "Contract:       %s\n", r.ContractType.Label())
	}
	fmt.Fprintf(w, "Health score:   %s  %s %s\n",
		output.FormatScore(r.Overall), output.BandIcon(r.Band), r.Band)
	fmt.Fprintf(w, "  Financial:    %5.1f  (potential profit %.2f%%)\n", r.Health.Financial, r.ProfitPercent)
	if r.Delayed {
		fmt.Fprintf(w, "  Schedule:     %5.1f  (%d days late)\n", r.Health.Schedule, r.DelayDays)
	} else {
		fmt.Fprintf(w, "  Schedule:     %5.1f  (on schedule)\n", r.Health.Schedule)
	}
	fmt.Fprintf(w, "  Execution:    %5.1f  (buyout completion)\n", r.Health.Execution)
	if r.SlipDays > 0 {
		fmt.Fprintf(w, "Completion:     slipped %d days\n", r.SlipDays)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, output.SubHeader("Variance", width))
	fmt.Fprint(w, VarianceTable(r.VarianceByCategory).RenderCompact())
	if c, ok := r.VarianceByCategory[metrics.CategoryContingency]; ok && c.Utilization != nil {
		fmt.Fprintf(w, "Contingency used: %s\n", output.FormatPercent(*c.Utilization))
	}
	fmt.Fprintln(w)

	e := r.Execution
	fmt.Fprintln(w, output.SubHeader("Execution", width))
	table := output.NewTable("Metric", "Value", "Grade", "Avg Time").SetAlign(output.AlignRight, 1, 3)
	table.AddRow("Change order ratio", output.FormatPercent(e.ChangeOrderRatio.Percent),
		output.FormatGrade(e.ChangeOrderRatio.Grade), output.FormatDays(e.AvgChangeOrderApprovalDays))
	table.AddRow("Change order approval", output.FormatPercent(e.ChangeOrderApprovalRate), "", "")
	table.AddRow("Submittal compliance", output.FormatPercent(e.SubmittalCompliance.Percent),
		output.FormatGrade(e.SubmittalCompliance.Grade), output.FormatDays(e.AvgSubmittalReviewDays))
	table.AddRow("RFI performance", output.FormatPercent(e.RFIPerformance.Percent),
		output.FormatGrade(e.RFIPerformance.Grade), output.FormatDays(e.AvgRFIClosureDays))
	table.AddRow("RFIs overdue", output.FormatPercent(e.RFIOverdueRate), "", "")
	fmt.Fprint(w, table.RenderCompact())

	if len(r.Diagnostics) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, output.SubHeader("Data Issues", width))
		for _, issue := range r.Diagnostics {
			icon := output.Color("⚠", output.Yellow)
			if issue.IsError() {
				icon = output.Color("✗", output.Red)
			}
			fmt.Fprintf(w, "%s %s: %s\n", icon, issue.Field, issue.Message)
		}
	}
}

// RenderWhatIf compares a project report against the report of an edited
// copy of the same project.
func RenderWhatIf(w io.Writer, before, after *ProjectReport) {
	fmt.Fprintln(w, output.SubHeader("What-if", width))
	fmt.Fprintf(w, "Health score:   %d -> %d  (%+d, %s)\n",
		before.Overall, after.Overall, after.Overall-before.Overall, after.Band)
	fmt.Fprintf(w, "  Financial:    %5.1f -> %5.1f\n", before.Health.Financial, after.Health.Financial)
	fmt.Fprintf(w, "  Schedule:     %5.1f -> %5.1f\n", before.Health.Schedule, after.Health.Schedule)
	fmt.Fprintf(w, "  Execution:    %5.1f -> %5.1f\n", before.Health.Execution, after.Health.Execution)
}
