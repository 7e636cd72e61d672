package project

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// column binds a flat CSV column to a record field.
type column struct {
	name string
	get  func(r *Record) string
	set  func(r *Record, v string) error
}

func textColumn(name string, field func(r *Record) *string) column {
	return column{
		name: name,
		get:  func(r *Record) string { return *field(r) },
		set: func(r *Record, v string) error {
			*field(r) = v
			return nil
		},
	}
}

func floatColumn(name string, field func(r *Record) *float64) column {
	return column{
		name: name,
		get: func(r *Record) string {
			if *field(r) == 0 {
				return ""
			}
			return strconv.FormatFloat(*field(r), 'f', -1, 64)
		},
		set: func(r *Record, v string) error {
			if v == "" {
				return nil
			}
			f, err := parseAmount(v)
			if err != nil {
				return err
			}
			*field(r) = f
			return nil
		},
	}
}

// optionalFloatColumn binds a column where an empty cell means not
// reported and an explicit 0 is kept.
func optionalFloatColumn(name string, field func(r *Record) **float64) column {
	return column{
		name: name,
		get: func(r *Record) string {
			if *field(r) == nil {
				return ""
			}
			return strconv.FormatFloat(**field(r), 'f', -1, 64)
		},
		set: func(r *Record, v string) error {
			if v == "" {
				*field(r) = nil
				return nil
			}
			f, err := parseAmount(v)
			if err != nil {
				return err
			}
			*field(r) = &f
			return nil
		},
	}
}

func intColumn(name string, field func(r *Record) *int) column {
	return column{
		name: name,
		get: func(r *Record) string {
			if *field(r) == 0 {
				return ""
			}
			return strconv.Itoa(*field(r))
		},
		set: func(r *Record, v string) error {
			if v == "" {
				return nil
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid integer %q", v)
			}
			*field(r) = n
			return nil
		},
	}
}

func dateColumn(name string, field func(r *Record) *Date) column {
	return column{
		name: name,
		get:  func(r *Record) string { return field(r).String() },
		set: func(r *Record, v string) error {
			d, err := ParseDate(v)
			if err != nil {
				return err
			}
			*field(r) = d
			return nil
		},
	}
}

// standardColumns lists the flat CSV layout, in output order.
var standardColumns = []column{
	textColumn("code", func(r *Record) *string { return &r.Code }),
	textColumn("name", func(r *Record) *string { return &r.Name }),
	textColumn("stage", func(r *Record) *string { return &r.Stage }),
	{
		name: "contract_type",
		get:  func(r *Record) string { return r.ContractType.String() },
		set: func(r *Record, v string) error {
			// Unknown contract types are not fatal.
			ct, _ := ParseContractType(v)
			r.ContractType = ct
			return nil
		},
	},

	floatColumn("original_contract_value", func(r *Record) *float64 { return &r.Financial.OriginalContractValue }),
	floatColumn("current_contract_value", func(r *Record) *float64 { return &r.Financial.CurrentContractValue }),
	floatColumn("original_profit", func(r *Record) *float64 { return &r.Financial.OriginalProfit }),
	floatColumn("current_profit", func(r *Record) *float64 { return &r.Financial.CurrentProfit }),
	floatColumn("buyout_savings", func(r *Record) *float64 { return &r.Financial.BuyoutSavings }),
	floatColumn("original_profit_percent", func(r *Record) *float64 { return &r.Financial.OriginalProfitPercent }),
	optionalFloatColumn("potential_total_profit_percent", func(r *Record) **float64 { return &r.Financial.PotentialTotalProfitPercent }),

	dateColumn("original_completion", func(r *Record) *Date { return &r.Schedule.OriginalCompletion }),
	dateColumn("current_completion", func(r *Record) *Date { return &r.Schedule.CurrentCompletion }),
	dateColumn("revised_completion", func(r *Record) *Date { return &r.Schedule.RevisedCompletion }),
	intColumn("delay_days", func(r *Record) *int { return &r.Schedule.DelayDays }),
	{
		name: "on_schedule",
		get: func(r *Record) string {
			if r.Schedule.OnSchedule == nil {
				return ""
			}
			return strconv.FormatBool(*r.Schedule.OnSchedule)
		},
		set: func(r *Record, v string) error {
			if v == "" {
				return nil
			}
			b, err := parseBool(v)
			if err != nil {
				return err
			}
			r.Schedule.OnSchedule = &b
			return nil
		},
	},

	floatColumn("gc_original", func(r *Record) *float64 { return &r.GeneralConditions.Original }),
	floatColumn("gc_current", func(r *Record) *float64 { return &r.GeneralConditions.Current }),
	floatColumn("contingency_original", func(r *Record) *float64 { return &r.Contingency.Original }),
	floatColumn("contingency_current", func(r *Record) *float64 { return &r.Contingency.Current }),

	intColumn("co_total", func(r *Record) *int { return &r.ChangeOrders.Total }),
	intColumn("co_approved", func(r *Record) *int { return &r.ChangeOrders.Approved }),
	intColumn("co_pending", func(r *Record) *int { return &r.ChangeOrders.Pending }),
	intColumn("co_rejected", func(r *Record) *int { return &r.ChangeOrders.Rejected }),
	floatColumn("co_value", func(r *Record) *float64 { return &r.ChangeOrders.Value }),
	floatColumn("co_avg_approval_days", func(r *Record) *float64 { return &r.ChangeOrders.AvgApprovalDays }),

	intColumn("submittals_total", func(r *Record) *int { return &r.Submittals.Total }),
	intColumn("submittals_approved", func(r *Record) *int { return &r.Submittals.Approved }),
	intColumn("submittals_pending", func(r *Record) *int { return &r.Submittals.Pending }),
	intColumn("submittals_rejected", func(r *Record) *int { return &r.Submittals.Rejected }),
	floatColumn("submittals_avg_review_days", func(r *Record) *float64 { return &r.Submittals.AvgReviewDays }),

	intColumn("rfis_total", func(r *Record) *int { return &r.RFIs.Total }),
	intColumn("rfis_open", func(r *Record) *int { return &r.RFIs.Open }),
	intColumn("rfis_closed", func(r *Record) *int { return &r.RFIs.Closed }),
	intColumn("rfis_overdue", func(r *Record) *int { return &r.RFIs.Overdue }),
	floatColumn("rfis_avg_closure_days", func(r *Record) *float64 { return &r.RFIs.AvgClosureDays }),

	floatColumn("buyout_completion", func(r *Record) *float64 { return &r.Status.BuyoutCompletion }),
	textColumn("summary", func(r *Record) *string { return &r.Status.Summary }),
	textColumn("risks", func(r *Record) *string { return &r.Status.Risks }),
	textColumn("next_steps", func(r *Record) *string { return &r.Status.NextSteps }),
}

var columnsByName = func() map[string]column {
	m := make(map[string]column, len(standardColumns))
	for _, c := range standardColumns {
		m[c.name] = c
	}
	return m
}()

// LoadCSV loads a portfolio from a CSV file.
func LoadCSV(path string) (*Portfolio, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open portfolio: %w", err)
	}
	defer file.Close()

	p, err := ReadCSV(file)
	if err != nil {
		return nil, err
	}

	p.source = path
	return p, nil
}

// SaveCSV writes the portfolio to a CSV file.
func (p *Portfolio) SaveCSV(path string) error {
	if path == "" {
		return fmt.Errorf("no path specified for saving portfolio")
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create portfolio file: %w", err)
	}
	defer file.Close()

	return p.WriteCSV(file)
}

// ReadCSV reads project records from a CSV reader.
func ReadCSV(r io.Reader) (*Portfolio, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable fields

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIndex := make(map[string]int)
	var extraCols []string
	for i, col := range header {
		normalized := normalizeColumnName(col)
		colIndex[normalized] = i
		if _, ok := columnsByName[normalized]; !ok && normalized != "" {
			extraCols = append(extraCols, normalized)
		}
	}

	for _, col := range []string{"code", "name"} {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	p := NewPortfolio()

	lineNum := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNum++
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", lineNum, err)
		}
		if isBlankRow(row) {
			continue
		}

		rec, err := parseRow(row, colIndex, extraCols)
		if err != nil {
			return nil, fmt.Errorf("failed to parse row %d: %w", lineNum, err)
		}

		if err := p.Add(rec); err != nil {
			return nil, fmt.Errorf("row %d: %w", lineNum, err)
		}
	}

	return p, nil
}

// WriteCSV writes the portfolio to a CSV writer.
func (p *Portfolio) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)

	extra := make(map[string]bool)
	for _, rec := range p.All() {
		for k := range rec.Extra {
			extra[k] = true
		}
	}
	extraCols := make([]string, 0, len(extra))
	for col := range extra {
		extraCols = append(extraCols, col)
	}
	sort.Strings(extraCols)

	header := make([]string, 0, len(standardColumns)+len(extraCols))
	for _, c := range standardColumns {
		header = append(header, c.name)
	}
	header = append(header, extraCols...)

	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, rec := range p.All() {
		row := make([]string, 0, len(header))
		for _, c := range standardColumns {
			row = append(row, c.get(rec))
		}
		for _, col := range extraCols {
			row = append(row, rec.Extra[col])
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", rec.Code, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// normalizeColumnName converts column names to snake_case.
func normalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	name = strings.NewReplacer(" ", "_", "-", "_").Replace(name)

	// If already snake_case or all lowercase, just lowercase it
	if strings.Contains(name, "_") || strings.ToLower(name) == name {
		return strings.ToLower(name)
	}

	// Handle PascalCase/camelCase -> snake_case
	var result strings.Builder
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			// Don't add underscore if previous char was also uppercase
			prev := rune(name[i-1])
			if prev >= 'a' && prev <= 'z' {
				result.WriteByte('_')
			}
		}
		result.WriteRune(r)
	}

	return strings.ToLower(result.String())
}

func parseRow(row []string, colIndex map[string]int, extraCols []string) (*Record, error) {
	getValue := func(col string) string {
		if idx, ok := colIndex[col]; ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	rec := NewRecord(getValue("code"))
	if rec.Code == "" {
		return nil, fmt.Errorf("code is required")
	}

	for _, c := range standardColumns {
		if _, ok := colIndex[c.name]; !ok {
			continue
		}
		if err := c.set(rec, getValue(c.name)); err != nil {
			return nil, fmt.Errorf("column %s: %w", c.name, err)
		}
	}

	for _, col := range extraCols {
		if v := getValue(col); v != "" {
			rec.Extra[col] = v
		}
	}

	return rec, nil
}

// parseAmount parses a decimal amount, tolerating currency symbols,
// thousands separators, a trailing percent sign and accounting-style
// parentheses for negatives.
func parseAmount(s string) (float64, error) {
	clean := strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		negative = true
		clean = clean[1 : len(clean)-1]
	}
	clean = strings.NewReplacer("$", "", ",", "", "%", "", " ", "").Replace(clean)
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if negative {
		f = -f
	}
	return f, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1":
		return true, nil
	case "false", "no", "n", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", s)
	}
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
