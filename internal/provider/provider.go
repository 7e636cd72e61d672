// Package provider supplies project portfolios to the reporting layer from
// files, an embedded sample dataset or a SQLite store.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/sitemetrics/sitemetrics-go/internal/project"
)

var (
	// ErrUnknownSource is returned when a source string cannot be resolved.
	ErrUnknownSource = errors.New("unknown data source")
	// ErrNotFound is returned when a requested project does not exist.
	ErrNotFound = errors.New("not found")
)

// Provider loads a portfolio of project records.
type Provider interface {
	// Name describes the source for logs and report headers.
	Name() string
	// Load returns a fresh portfolio. Callers may treat it as their own.
	Load(ctx context.Context) (*project.Portfolio, error)
}

// Source prefixes understood by Open.
const (
	SchemeSQLite = "sqlite:"
	SchemeSample = "sample:"
)

// Open resolves a source string into a Provider:
//
//	sample:            embedded demo dataset
//	sqlite:<path>      SQLite store created by the import command
//	<path>.json        JSON data file
//	<path>.csv         CSV data file
func Open(source string) (Provider, error) {
	source = strings.TrimSpace(source)
	switch {
	case source == "" || source == SchemeSample || source == "sample":
		return NewSampleProvider(), nil
	case strings.HasPrefix(source, SchemeSQLite):
		path := strings.TrimPrefix(source, SchemeSQLite)
		if path == "" {
			return nil, fmt.Errorf("%w: sqlite source needs a path", ErrUnknownSource)
		}
		return OpenSQLite(path)
	}

	switch strings.ToLower(filepath.Ext(source)) {
	case ".json", ".csv":
		return NewFileProvider(source), nil
	case ".db", ".sqlite", ".sqlite3":
		return OpenSQLite(source)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}
}

// LoadValidated loads a portfolio and logs every validation issue at
// warning level. Issues never fail the load.
func LoadValidated(ctx context.Context, p Provider, logger *slog.Logger) (*project.Portfolio, []project.Issue, error) {
	portfolio, err := p.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading %s: %w", p.Name(), err)
	}

	issues := portfolio.Validate()
	if logger != nil {
		for _, issue := range issues {
			logger.Warn("data quality issue",
				"source", p.Name(),
				"project", issue.Code,
				"field", issue.Field,
				"severity", issue.Severity,
				"message", issue.Message)
		}
		logger.Debug("portfolio loaded", "source", p.Name(), "projects", portfolio.Len(), "issues", len(issues))
	}
	return portfolio, issues, nil
}

// Getter is implemented by providers that can read one project without
// loading the whole portfolio.
type Getter interface {
	Get(ctx context.Context, code string) (*project.Record, error)
}

// Get returns one project by code, through Getter when the provider
// implements it. A missing project wraps ErrNotFound.
func Get(ctx context.Context, p Provider, code string) (*project.Record, error) {
	if g, ok := p.(Getter); ok {
		return g.Get(ctx, code)
	}
	portfolio, err := p.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", p.Name(), err)
	}
	rec := portfolio.Get(code)
	if rec == nil {
		return nil, fmt.Errorf("project %q: %w", code, ErrNotFound)
	}
	return rec, nil
}

// Closer is implemented by providers holding resources.
type Closer interface {
	Close() error
}

// Close releases the provider's resources if it holds any.
func Close(p Provider) error {
	if c, ok := p.(Closer); ok {
		return c.Close()
	}
	return nil
}
