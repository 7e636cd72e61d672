package provider

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sitemetrics/sitemetrics-go/internal/project"
)

// FileProvider reads a JSON or CSV data file on every Load.
type FileProvider struct {
	path string
}

// NewFileProvider creates a provider for the given file.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// Name returns the file path.
func (f *FileProvider) Name() string {
	return f.path
}

// Load parses the file according to its extension.
func (f *FileProvider) Load(ctx context.Context) (*project.Portfolio, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(f.path)) {
	case ".json":
		return project.LoadJSON(f.path)
	case ".csv":
		return project.LoadCSV(f.path)
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q", ErrUnknownSource, f.path)
	}
}

//go:embed data/sample.json
var sampleData []byte

// SampleProvider serves the embedded demo portfolio.
type SampleProvider struct{}

// NewSampleProvider creates the sample provider.
func NewSampleProvider() *SampleProvider {
	return &SampleProvider{}
}

// Name returns "sample".
func (SampleProvider) Name() string {
	return "sample"
}

var (
	sampleOnce      sync.Once
	samplePortfolio *project.Portfolio
	sampleErr       error
)

// Load returns a working copy of the embedded dataset, which is parsed
// once per process.
func (SampleProvider) Load(ctx context.Context) (*project.Portfolio, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sampleOnce.Do(func() {
		samplePortfolio, sampleErr = project.ReadJSON(bytes.NewReader(sampleData))
		if sampleErr == nil {
			samplePortfolio.SetSource("sample")
		}
	})
	if sampleErr != nil {
		return nil, fmt.Errorf("parsing sample data: %w", sampleErr)
	}
	return samplePortfolio.Clone(), nil
}

// SampleJSON returns the raw embedded dataset, used by init to seed a
// data file.
func SampleJSON() []byte {
	return append([]byte(nil), sampleData...)
}
