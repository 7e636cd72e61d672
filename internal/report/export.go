package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/sitemetrics/sitemetrics-go/internal/metrics"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// ParseFormat parses an export format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (use csv, json or xlsx)", s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv"
	}
}

// Write renders the report in the given format.
func Write(w io.Writer, rep *PortfolioReport, format Format) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, rep)
	case FormatJSON:
		return WriteJSON(w, rep)
	case FormatXLSX:
		return WriteXLSX(w, rep)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// portfolioColumns are the per-project columns of the CSV export and the
// Portfolio sheet.
var portfolioColumns = []string{
	"code", "name", "stage", "contract_type",
	"overall_score", "band",
	"financial_subscore", "schedule_subscore", "execution_subscore",
	"potential_profit_percent", "delay_days",
	"change_order_ratio", "change_order_grade",
	"submittal_compliance", "submittal_grade",
	"rfi_performance", "rfi_grade",
	"warnings",
}

func varianceColumns() []string {
	var cols []string
	for _, cat := range metrics.AllCategories() {
		cols = append(cols, string(cat)+"_variance", string(cat)+"_variance_percent")
	}
	return cols
}

// projectValues returns one row of typed cell values. Unavailable
// percentages are the string "N/A".
func projectValues(p *ProjectReport) []any {
	e := p.Execution
	row := []any{
		p.Code, p.Name, p.Stage, p.ContractType.String(),
		p.Overall, string(p.Band),
		roundCell(p.Health.Financial), roundCell(p.Health.Schedule), roundCell(p.Health.Execution),
		roundCell(p.ProfitPercent), p.DelayDays,
		percentCell(e.ChangeOrderRatio.Percent), e.ChangeOrderRatio.Grade,
		percentCell(e.SubmittalCompliance.Percent), e.SubmittalCompliance.Grade,
		percentCell(e.RFIPerformance.Percent), e.RFIPerformance.Grade,
		len(p.Diagnostics),
	}
	for _, cat := range metrics.AllCategories() {
		v := p.VarianceByCategory[cat]
		row = append(row, roundCell(v.Variance), percentCell(v.Percent))
	}
	return row
}

func percentCell(p metrics.Percent) any {
	if !p.Valid {
		return metrics.GradeUnavailable
	}
	return roundCell(p.Value)
}

func roundCell(v float64) float64 {
	f, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	return f
}

func cellString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// WriteCSV writes one row per project. The portfolio aggregate is only
// part of the JSON and XLSX exports.
func WriteCSV(w io.Writer, rep *PortfolioReport) error {
	writer := csv.NewWriter(w)

	header := append(append([]string{}, portfolioColumns...), varianceColumns()...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := range rep.Projects {
		values := projectValues(&rep.Projects[i])
		row := make([]string, len(values))
		for j, v := range values {
			row[j] = cellString(v)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write project %s: %w", rep.Projects[i].Code, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// Sheet names of the XLSX export.
const (
	SheetPortfolio = "Portfolio"
	SheetVariance  = "Variance"
)

// WriteXLSX writes a workbook with a Portfolio sheet of project rows and
// a Variance sheet of per-category amounts, portfolio total first.
func WriteXLSX(w io.Writer, rep *PortfolioReport) error {
	f, err := BuildWorkbook(rep)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// BuildWorkbook assembles the XLSX export in memory.
func BuildWorkbook(rep *PortfolioReport) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetPortfolio); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetVariance); err != nil {
		return nil, fmt.Errorf("failed to add sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	header := append(append([]string{}, portfolioColumns...), varianceColumns()...)
	if err := setRow(f, SheetPortfolio, 1, toAny(header)); err != nil {
		return nil, err
	}
	for i := range rep.Projects {
		if err := setRow(f, SheetPortfolio, i+2, projectValues(&rep.Projects[i])); err != nil {
			return nil, err
		}
	}

	varianceHeader := []string{"project", "category", "direction", "original", "current", "variance", "variance_percent", "utilization"}
	if err := setRow(f, SheetVariance, 1, toAny(varianceHeader)); err != nil {
		return nil, err
	}
	row := 2
	writeVariances := func(label string, byCat map[metrics.Category]metrics.CategoryVariance) error {
		for _, cat := range metrics.AllCategories() {
			v := byCat[cat]
			var utilization any = ""
			if v.Utilization != nil {
				utilization = percentCell(*v.Utilization)
			}
			values := []any{
				label, cat.Label(), string(v.Direction),
				roundCell(v.Original), roundCell(v.Current), roundCell(v.Variance),
				percentCell(v.Percent), utilization,
			}
			if err := setRow(f, SheetVariance, row, values); err != nil {
				return err
			}
			row++
		}
		return nil
	}
	if err := writeVariances("Portfolio", rep.VarianceByCategory); err != nil {
		return nil, err
	}
	for i := range rep.Projects {
		if err := writeVariances(rep.Projects[i].Code, rep.Projects[i].VarianceByCategory); err != nil {
			return nil, err
		}
	}

	for _, sheet := range []string{SheetPortfolio, SheetVariance} {
		if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to style %s header: %w", sheet, err)
		}
	}
	_ = f.SetColWidth(SheetPortfolio, "B", "B", 36)
	_ = f.SetColWidth(SheetVariance, "B", "B", 22)

	return f, nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
