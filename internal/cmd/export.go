package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sitemetrics/sitemetrics-go/internal/output"
	"github.com/sitemetrics/sitemetrics-go/internal/report"
)

var (
	exportFormat string
	exportOutput string
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the portfolio report",
		Long: `Export the portfolio report as CSV, JSON or an XLSX workbook.

CSV and JSON go to stdout unless -o is given. XLSX always goes to a file,
named portfolio-<date>.xlsx in the configured export directory by default.`,
		RunE: runExport,
	}
	cmd.Flags().StringVarP(&exportFormat, "format", "f", "", "csv, json or xlsx (default from config)")
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file ('-' for stdout)")
	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	name := exportFormat
	if name == "" {
		name = s.cfg.Sitemetrics.Export.Format
	}
	format, err := report.ParseFormat(name)
	if err != nil {
		return err
	}

	rep, err := s.portfolioReport(cmd.Context())
	if err != nil {
		return err
	}

	path := exportOutput
	if path == "" && format == report.FormatXLSX {
		dir := s.cfg.Sitemetrics.Export.Directory
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(s.baseDir, dir)
		}
		path = filepath.Join(dir, fmt.Sprintf("portfolio-%s.xlsx", rep.GeneratedAt.Format("2006-01-02")))
	}

	if path == "" || path == "-" {
		return report.Write(cmd.OutOrStdout(), rep, format)
	}

	if err := writeFile(path, func(w io.Writer) error {
		return report.Write(w, rep, format)
	}); err != nil {
		return err
	}
	s.logger.Info("report exported", "path", path, "format", format, "projects", rep.ProjectCount)
	cmd.Printf("%s Exported %d projects to %s\n", output.Color("✓", output.Green), rep.ProjectCount, path)
	return nil
}

// writeFile creates path and its parent directory and streams into it.
func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
