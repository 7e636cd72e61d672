package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sitemetrics/sitemetrics-go/internal/config"
	"github.com/sitemetrics/sitemetrics-go/internal/metrics"
	"github.com/sitemetrics/sitemetrics-go/internal/output"
	"github.com/sitemetrics/sitemetrics-go/internal/project"
	"github.com/sitemetrics/sitemetrics-go/internal/provider"
	"github.com/sitemetrics/sitemetrics-go/internal/report"
)

// session is the per-command environment: configuration, logger and the
// resolved data source.
type session struct {
	cfg      *config.Config
	baseDir  string
	logger   *slog.Logger
	provider provider.Provider
}

// openSession loads configuration, applies the global flags and opens the
// data source. Callers must Close the session.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, base, logger, err := setup(cmd)
	if err != nil {
		return nil, err
	}

	source := cfg.SourcePath(base)
	if sourceFlag != "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		source = config.ResolveSource(sourceFlag, cwd)
	}

	p, err := provider.Open(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open data source: %w", err)
	}
	logger.Debug("data source opened", "source", p.Name())

	return &session{cfg: cfg, baseDir: base, logger: logger, provider: p}, nil
}

// setup applies --no-color, loads configuration and creates the logger
// from --log-level or the configured level.
func setup(cmd *cobra.Command) (*config.Config, string, *slog.Logger, error) {
	if noColor {
		output.DisableColor()
	}

	cfg, base, err := loadConfig()
	if err != nil {
		return nil, "", nil, err
	}

	level := cfg.Sitemetrics.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	logger, err := newLogger(cmd.ErrOrStderr(), level)
	if err != nil {
		return nil, "", nil, err
	}
	return cfg, base, logger, nil
}

// loadConfig honors --config, otherwise discovers a config file upward
// from the working directory.
func loadConfig() (*config.Config, string, error) {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		abs, err := filepath.Abs(cfgFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to resolve config path: %w", err)
		}
		return cfg, config.BaseDir(abs), nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, base, err := config.LoadFromDir(cwd)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, base, nil
}

// Close releases the data source.
func (s *session) Close() error {
	return provider.Close(s.provider)
}

// load reads the portfolio, logging each data-quality issue.
func (s *session) load(ctx context.Context) (*project.Portfolio, []project.Issue, error) {
	return provider.LoadValidated(ctx, s.provider, s.logger)
}

// builder returns a report builder calibrated from the configuration.
func (s *session) builder() *report.Builder {
	return report.NewBuilder(metrics.NewCalculator(s.cfg.MetricsConfig()), s.logger).
		DescribeStages(s.cfg.StageDescription)
}

// portfolioReport loads the portfolio and builds its report.
func (s *session) portfolioReport(ctx context.Context) (*report.PortfolioReport, error) {
	p, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	rep := s.builder().Portfolio(p)
	return &rep, nil
}

// newLogger creates a text logger writing to w.
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := parseLogLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q", s)
	}
}
