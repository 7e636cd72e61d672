// Package output provides formatting and display utilities for sitemetrics.
package output

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/sitemetrics/sitemetrics-go/internal/metrics"
)

// ANSI color codes
const (
	Reset     = "\033[0m"
	Bold      = "\033[1m"
	Dim       = "\033[2m"
	Red       = "\033[31m"
	Green     = "\033[32m"
	Yellow    = "\033[33m"
	Blue      = "\033[34m"
	Cyan      = "\033[36m"
	White     = "\033[37m"
	BoldRed   = "\033[1;31m"
	BoldGreen = "\033[1;32m"
)

var useColor = true

// DisableColor disables colored output.
func DisableColor() {
	useColor = false
}

// EnableColor enables colored output.
func EnableColor() {
	useColor = true
}

// IsColorEnabled returns whether color output is enabled.
func IsColorEnabled() bool {
	return useColor && isTerminal()
}

// isTerminal checks if stdout is a terminal.
func isTerminal() bool {
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// Color applies a color to text if color is enabled.
func Color(text, color string) string {
	if !IsColorEnabled() {
		return text
	}
	return color + text + Reset
}

// HealthColor returns the color for a health score, following its band.
func HealthColor(score float64) string {
	return BandColor(metrics.BandFor(score))
}

// BandColor returns the color for a health band.
func BandColor(band metrics.Band) string {
	switch band {
	case metrics.BandExcellent:
		return BoldGreen
	case metrics.BandGood:
		return Green
	case metrics.BandFair:
		return Yellow
	case metrics.BandAtRisk:
		return Red
	default:
		return White
	}
}

// BandIcon returns a colored icon for a health band.
func BandIcon(band metrics.Band) string {
	switch band {
	case metrics.BandExcellent, metrics.BandGood:
		return Color("✓", BandColor(band))
	case metrics.BandFair:
		return Color("⚠", Yellow)
	case metrics.BandAtRisk:
		return Color("✗", Red)
	default:
		return "?"
	}
}

// GradeColor returns the color for a letter grade.
func GradeColor(grade string) string {
	switch strings.TrimRight(strings.ToUpper(grade), "+") {
	case "A":
		return Green
	case "B":
		return Yellow
	case metrics.GradeUnavailable:
		return Dim
	case "":
		return White
	default:
		return Red
	}
}

// FormatGrade formats a letter grade with color.
func FormatGrade(grade string) string {
	if grade == "" {
		grade = metrics.GradeUnavailable
	}
	return Color(grade, GradeColor(grade))
}

// FormatScore formats a health score with its band color.
func FormatScore(score int) string {
	return Color(strconv.Itoa(score), HealthColor(float64(score)))
}

// ProgressBar creates a visual progress bar colored by health band.
func ProgressBar(percent float64, width int) string {
	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return Color("["+bar+"]", HealthColor(percent))
}

// Header creates a formatted header line.
func Header(text string, width int) string {
	padding := (width - len(text) - 2) / 2
	if padding < 0 {
		padding = 0
	}
	line := strings.Repeat("=", padding) + " " + text + " " + strings.Repeat("=", padding)
	for len(line) < width {
		line += "="
	}
	return Color(line, Bold)
}

// SubHeader creates a formatted subheader line.
func SubHeader(text string, width int) string {
	padding := (width - len(text) - 2) / 2
	if padding < 0 {
		padding = 0
	}
	line := strings.Repeat("-", padding) + " " + text + " " + strings.Repeat("-", padding)
	for len(line) < width {
		line += "-"
	}
	return Color(line, Dim)
}

// Checkmark returns a colored checkmark or X.
func Checkmark(ok bool) string {
	if ok {
		return Color("✓", Green)
	}
	return Color("✗", Red)
}

// FormatPercent formats a percentage with one decimal, or N/A when the
// value is unavailable. No color is applied.
func FormatPercent(p metrics.Percent) string {
	return p.Format(1)
}

// FormatVariancePercent formats a signed variance percentage colored by
// sign: favorable is green, unfavorable red.
func FormatVariancePercent(p metrics.Percent) string {
	if !p.Valid {
		return Color(metrics.GradeUnavailable, Dim)
	}
	text := fmt.Sprintf("%+.1f%%", p.Value)
	switch {
	case p.Value > 0:
		return Color(text, Green)
	case p.Value < 0:
		return Color(text, Red)
	default:
		return text
	}
}

// FormatMoney formats a dollar amount with thousands separators and no
// cents. Negative amounts use a leading minus sign.
func FormatMoney(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return metrics.GradeUnavailable
	}
	rounded := math.Round(amount)
	sign := ""
	if rounded < 0 {
		sign = "-"
		rounded = -rounded
	}
	digits := strconv.FormatFloat(rounded, 'f', 0, 64)

	var sb strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	return sign + "$" + sb.String()
}

// FormatDays formats an average day count, e.g. "12.5 days"; zero
// renders as "-".
func FormatDays(days float64) string {
	if days == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f days", days)
}

// Truncate truncates text to a maximum width with ellipsis.
func Truncate(text string, maxWidth int) string {
	if len(text) <= maxWidth {
		return text
	}
	if maxWidth <= 3 {
		return text[:maxWidth]
	}
	return text[:maxWidth-3] + "..."
}

// PadRight pads text to a minimum width.
func PadRight(text string, width int) string {
	if len(text) >= width {
		return text
	}
	return text + strings.Repeat(" ", width-len(text))
}

// PadLeft pads text to a minimum width.
func PadLeft(text string, width int) string {
	if len(text) >= width {
		return text
	}
	return strings.Repeat(" ", width-len(text)) + text
}
