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

// SampleDataPath is where init --sample writes the demo portfolio.
const SampleDataPath = "data/projects.json"

var (
	initForce  bool
	initSample bool
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize sitemetrics in the current directory",
		Long: `Create the .sitemetrics/ directory with a default configuration:

  .sitemetrics/
  ├── config.yaml    # Data source, health calibration, server settings
  └── .gitignore     # Ignores the SQLite store

With --sample, also write the demo portfolio to data/projects.json and
point the configuration at it.`,
		RunE: runInit,
	}
	cmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing files")
	cmd.Flags().BoolVar(&initSample, "sample", false, "seed "+SampleDataPath+" with the demo portfolio")
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	if noColor {
		output.DisableColor()
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	dir := filepath.Join(cwd, ".sitemetrics")
	configPath := filepath.Join(cwd, config.DefaultPath)
	dataPath := filepath.Join(cwd, SampleDataPath)

	if !initForce {
		existing := []string{configPath}
		if initSample {
			existing = append(existing, dataPath)
		}
		var found []string
		for _, path := range existing {
			if _, err := os.Stat(path); err == nil {
				found = append(found, path)
			}
		}
		if len(found) > 0 {
			cmd.Printf("%s The following already exist:\n", output.Color("Warning:", output.Yellow))
			for _, path := range found {
				cmd.Printf("  %s\n", path)
			}
			cmd.Printf("\n%s\n", output.Color("Use --force to overwrite", output.Dim))
			return NewExitError(1, "")
		}
	}

	cmd.Printf("Initializing sitemetrics in %s\n\n", cwd)

	cfg := config.DefaultConfig()
	if initSample {
		if err := os.MkdirAll(filepath.Dir(dataPath), 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
		if err := os.WriteFile(dataPath, provider.SampleJSON(), 0644); err != nil {
			return fmt.Errorf("failed to write sample data: %w", err)
		}
		cmd.Printf("  %s Created %s\n", output.Color("✓", output.Green), dataPath)
		cfg.Sitemetrics.Source = SampleDataPath
	}

	if err := cfg.Save(configPath); err != nil {
		return err
	}
	cmd.Printf("  %s Created %s\n", output.Color("✓", output.Green), configPath)

	gitignore := filepath.Join(dir, ".gitignore")
	if err := os.WriteFile(gitignore, []byte("# sitemetrics SQLite store\n*.db\n"), 0644); err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}
	cmd.Printf("  %s Created %s\n", output.Color("✓", output.Green), gitignore)

	cmd.Println()
	cmd.Println("Next steps:")
	cmd.Println("  sitemetrics status -v      # portfolio health")
	cmd.Println("  sitemetrics health         # data quality check")
	cmd.Println("  sitemetrics serve          # dashboard API")
	return nil
}
