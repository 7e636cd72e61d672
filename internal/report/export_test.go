package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sitemetrics/sitemetrics-go/internal/metrics"
	"github.com/sitemetrics/sitemetrics-go/internal/output"
	"github.com/sitemetrics/sitemetrics-go/internal/project"
	"github.com/sitemetrics/sitemetrics-go/internal/testutil"
)

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"csv", "JSON", " xlsx "} {
		_, err := ParseFormat(s)
		assert.NoError(t, err, s)
	}

	_, err := ParseFormat("pdf")
	assert.Error(t, err)

	assert.Equal(t, "text/csv", FormatCSV.ContentType())
	assert.Contains(t, FormatXLSX.ContentType(), "spreadsheetml")
}

func TestWriteCSV(t *testing.T) {
	rep := newTestBuilder().Portfolio(samplePortfolio(t))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, &rep, FormatCSV))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	header := rows[0]
	col := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		t.Fatalf("column %s missing from %v", name, header)
		return -1
	}

	assert.Equal(t, "P-001", rows[1][col("code")])
	assert.Equal(t, "94", rows[1][col("overall_score")])
	assert.Equal(t, "Excellent", rows[1][col("band")])
	assert.Equal(t, "90", rows[1][col("submittal_compliance")])
	assert.Equal(t, "A+", rows[1][col("submittal_grade")])

	// No submittals on P-003: unavailable, not zero.
	assert.Equal(t, "N/A", rows[3][col("submittal_compliance")])
	assert.Equal(t, "N/A", rows[3][col("submittal_grade")])
	assert.Equal(t, "30", rows[3][col("delay_days")])

	assert.Contains(t, header, "general_conditions_variance_percent")
	assert.Len(t, header, len(portfolioColumns)+2*len(metrics.AllCategories()))
}

func TestWriteXLSX(t *testing.T) {
	rep := newTestBuilder().Portfolio(samplePortfolio(t))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, &rep, FormatXLSX))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetPortfolio, SheetVariance}, f.GetSheetList())

	rows, err := f.GetRows(SheetPortfolio)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "code", rows[0][0])
	assert.Equal(t, "P-002", rows[2][0])

	score, err := f.GetCellValue(SheetPortfolio, "E3")
	require.NoError(t, err)
	assert.Equal(t, "62", score)

	variance, err := f.GetRows(SheetVariance)
	require.NoError(t, err)
	categories := len(metrics.AllCategories())
	require.Len(t, variance, 1+categories*(1+len(rep.Projects)))
	assert.Equal(t, "Portfolio", variance[1][0])
	assert.Equal(t, metrics.CategoryContractValue.Label(), variance[1][1])
	assert.Equal(t, "P-001", variance[1+categories][0])
}

func TestWriteJSONFormat(t *testing.T) {
	rep := newTestBuilder().Portfolio(samplePortfolio(t))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, &rep, FormatJSON))
	assert.True(t, strings.HasPrefix(buf.String(), "{\n  \"generatedAt\""))
}

func TestRenderStatus(t *testing.T) {
	output.DisableColor()
	defer output.EnableColor()

	rep := newTestBuilder().Portfolio(samplePortfolio(t))

	var buf bytes.Buffer
	RenderStatus(&buf, &rep, VerbositySummary)
	text := buf.String()
	assert.Contains(t, text, "Portfolio Health")
	assert.Contains(t, text, "60.7")
	assert.Contains(t, text, "1 excellent")
	assert.Contains(t, text, "Submittal compliance:")
	assert.NotContains(t, text, "P-002")

	buf.Reset()
	RenderStatus(&buf, &rep, VerbosityVariance)
	text = buf.String()
	assert.Contains(t, text, "Bravo School")
	assert.Contains(t, text, "| P-003 ")
	assert.Contains(t, text, "Portfolio Variance")
	assert.Contains(t, text, "$30,000,000")
	assert.Contains(t, text, "2 of 3 projects behind schedule")
	assert.Contains(t, text, "Stages")
	assert.Contains(t, text, "| Preconstruction ")
	assert.Contains(t, text, "78.0%")
}

func TestRenderStatusEmpty(t *testing.T) {
	rep := newTestBuilder().Portfolio(nil)

	var buf bytes.Buffer
	RenderStatus(&buf, &rep, VerbosityVariance)
	testutil.GoldenText(t, "status_empty", buf.String())
}

func TestRenderProject(t *testing.T) {
	output.DisableColor()
	defer output.EnableColor()

	rep := newTestBuilder().Portfolio(samplePortfolio(t))

	var buf bytes.Buffer
	RenderProject(&buf, rep.Project("P-003"))
	text := buf.String()

	assert.Contains(t, text, "P-003 Charlie Garage")
	assert.Contains(t, text, "(30 days late)")
	assert.Contains(t, text, "Contingency used: 0.0%")
	assert.Contains(t, text, "N/A")
	assert.NotContains(t, text, "Data Issues")
	assert.NotContains(t, text, "slipped")
}

func TestRenderWhatIf(t *testing.T) {
	output.DisableColor()
	defer output.EnableColor()

	b := newTestBuilder()
	rec := testutil.NewTestRecord("P-020", testutil.WithDelay(20))
	edited := rec.Clone()
	edited.Schedule.DelayDays = 0
	edited.Schedule.OnSchedule = project.Bool(true)

	before, after := b.Project(rec), b.Project(edited)
	var buf bytes.Buffer
	RenderWhatIf(&buf, &before, &after)
	text := buf.String()

	assert.Contains(t, text, "What-if")
	assert.Contains(t, text, fmt.Sprintf("%d -> %d", before.Overall, after.Overall))
	assert.Contains(t, text, "  Schedule:      70.0 ->  90.0")
	assert.Greater(t, after.Overall, before.Overall)
}
