package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sitemetrics/sitemetrics-go/internal/config"
	"github.com/sitemetrics/sitemetrics-go/internal/output"
	"github.com/sitemetrics/sitemetrics-go/internal/provider"
)

// DefaultStorePath is where import writes when --db is not given.
const DefaultStorePath = ".sitemetrics/projects.db"

var (
	importDB      string
	importHistory bool
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [SOURCE]",
		Short: "Import project data into a SQLite store",
		Long: `Import a JSON or CSV data file (or "sample:") into a SQLite store.

Each import is recorded as a batch; projects are upserted by code. Point
the source at the store afterwards with --source sqlite:<path>.

Use --history to list previous imports instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runImport,
	}
	cmd.Flags().StringVar(&importDB, "db", "", "SQLite store path (default: "+DefaultStorePath+")")
	cmd.Flags().BoolVar(&importHistory, "history", false, "list previous imports")
	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	if !importHistory && len(args) == 0 {
		return NewExitError(1, "no source specified")
	}

	_, base, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	dbPath := importDB
	if dbPath == "" {
		dbPath = filepath.Join(base, DefaultStorePath)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	store, err := provider.OpenSQLite(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if importHistory {
		return displayImports(cmd, store)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	src, err := provider.Open(config.ResolveSource(args[0], cwd))
	if err != nil {
		return fmt.Errorf("failed to open import source: %w", err)
	}
	defer provider.Close(src)

	p, _, err := provider.LoadValidated(cmd.Context(), src, logger)
	if err != nil {
		return err
	}

	batch, err := store.Import(cmd.Context(), p)
	if err != nil {
		return err
	}
	logger.Info("import complete", "batch", batch.ID, "projects", batch.ProjectCount, "warnings", batch.WarningCount)

	cmd.Printf("%s Imported %d projects from %s\n", output.Color("✓", output.Green), batch.ProjectCount, src.Name())
	cmd.Printf("  batch:    %s\n", batch.ID)
	cmd.Printf("  store:    %s\n", dbPath)
	if batch.WarningCount > 0 {
		cmd.Printf("  %s %d data quality warnings (see sitemetrics health)\n", output.Color("⚠", output.Yellow), batch.WarningCount)
	}
	return nil
}

func displayImports(cmd *cobra.Command, store *provider.SQLiteProvider) error {
	batches, err := store.Imports(cmd.Context())
	if err != nil {
		return err
	}
	if len(batches) == 0 {
		cmd.Println("No imports recorded.")
		return nil
	}

	table := output.NewTable("Imported", "Batch", "Projects", "Warnings", "Source")
	table.SetAlign(output.AlignRight, 2, 3)
	for _, b := range batches {
		table.AddRow(
			b.ImportedAt.Local().Format("2006-01-02 15:04"),
			b.ID,
			fmt.Sprintf("%d", b.ProjectCount),
			fmt.Sprintf("%d", b.WarningCount),
			b.Source,
		)
	}
	cmd.Print(table.Render())
	return nil
}
