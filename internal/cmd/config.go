package cmd

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sitemetrics/sitemetrics-go/internal/config"
	"github.com/sitemetrics/sitemetrics-go/internal/output"
	"github.com/sitemetrics/sitemetrics-go/internal/provider"
)

var (
	configValidate bool
	configFormat   string
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or validate sitemetrics configuration",
		Long: `Display the effective configuration after merging defaults with the
config file.

Examples:
    sitemetrics config                     # Show current config
    sitemetrics config --validate          # Check the source loads
    sitemetrics config --format yaml       # Output as YAML`,
		RunE: runConfig,
	}
	cmd.Flags().BoolVar(&configValidate, "validate", false, "validate configuration and check the data source")
	cmd.Flags().StringVar(&configFormat, "format", "terminal", "output format: terminal, yaml, json")
	return cmd
}

func runConfig(cmd *cobra.Command, args []string) error {
	if noColor {
		output.DisableColor()
	}

	cfg, base, err := loadConfig()
	if err != nil {
		return err
	}

	if configValidate {
		return validateConfig(cmd, cfg, base)
	}

	switch configFormat {
	case "json":
		data, err := json.MarshalIndent(cfg.Sitemetrics, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		cmd.Println(string(data))
		return nil
	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		cmd.Print(string(data))
		return nil
	default:
		displayConfigTerminal(cmd, cfg, base)
		return nil
	}
}

func configFilePath(base string) string {
	if cfgFile != "" {
		return cfgFile
	}
	path, err := config.FindConfig(base)
	if err != nil {
		return ""
	}
	return path
}

func validateConfig(cmd *cobra.Command, cfg *config.Config, base string) error {
	cmd.Println(output.Header("Configuration Validation", 80))
	cmd.Println()

	var errs, warnings []string

	if path := configFilePath(base); path == "" {
		warnings = append(warnings, "Config file not found (using defaults)")
	} else {
		cmd.Printf("  %s Config file: %s\n", output.Color("[PASS]", output.Green), path)
	}

	if err := cfg.Sitemetrics.Health.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("Health calibration: %v", err))
	} else {
		cmd.Printf("  %s Health calibration\n", output.Color("[PASS]", output.Green))
	}

	source := cfg.SourcePath(base)
	p, err := provider.Open(source)
	if err != nil {
		errs = append(errs, fmt.Sprintf("Data source: %v", err))
	} else {
		portfolio, err := p.Load(cmd.Context())
		provider.Close(p)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Data source %s: %v", source, err))
		} else {
			cmd.Printf("  %s Data source: %s (%d projects)\n", output.Color("[PASS]", output.Green), p.Name(), portfolio.Len())
		}
	}

	if _, err := parseLogLevel(cfg.Sitemetrics.Log.Level); err != nil {
		warnings = append(warnings, err.Error())
	}

	cmd.Println()
	for _, e := range errs {
		cmd.Printf("  %s %s\n", output.Color("[FAIL]", output.Red), e)
	}
	for _, w := range warnings {
		cmd.Printf("  %s %s\n", output.Color("[WARN]", output.Yellow), w)
	}
	cmd.Println()

	switch {
	case len(errs) > 0:
		cmd.Printf("Status: %s\n", output.Color("INVALID", output.Red))
		return NewExitError(1, "configuration validation failed")
	case len(warnings) > 0:
		cmd.Printf("Status: %s\n", output.Color("VALID (with warnings)", output.Yellow))
	default:
		cmd.Printf("Status: %s\n", output.Color("VALID", output.Green))
	}
	return nil
}

func displayConfigTerminal(cmd *cobra.Command, cfg *config.Config, base string) {
	cmd.Println(output.Header("sitemetrics Configuration", 80))
	cmd.Println()

	path := configFilePath(base)
	if path == "" {
		path = "(defaults)"
	}
	sm := cfg.Sitemetrics

	cmd.Println("Paths:")
	cmd.Printf("  Config file: %s\n", path)
	cmd.Printf("  Source:      %s\n", cfg.SourcePath(base))
	cmd.Println()

	h := sm.Health
	cmd.Println("Health:")
	cmd.Printf("  Weights:          financial %.2f, schedule %.2f, execution %.2f\n", h.Weights.Financial, h.Weights.Schedule, h.Weights.Execution)
	cmd.Printf("  Profit ceiling:   %.1f%%\n", h.ProfitCeiling)
	cmd.Printf("  Default delay:    %d days\n", h.DefaultDelayDays)
	cmd.Println()

	if len(sm.Stages) > 0 {
		cmd.Println("Stages:")
		stages := make([]string, 0, len(sm.Stages))
		for stage := range sm.Stages {
			stages = append(stages, stage)
		}
		sort.Strings(stages)
		for _, stage := range stages {
			cmd.Printf("  %s: %s\n", stage, sm.Stages[stage])
		}
		cmd.Println()
	}

	cmd.Println("Server:")
	cmd.Printf("  Address: %s\n", sm.Server.Addr())
	cmd.Printf("  Log:     %s\n", sm.Log.Level)
}
