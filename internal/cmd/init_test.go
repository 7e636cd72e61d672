package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sitemetrics/sitemetrics-go/internal/config"
)

func TestInitCommand(t *testing.T) {
	dir := inTempDir(t)

	out, _, err := executeCommand(t, "init")
	if err != nil {
		t.Fatalf("init command failed: %v", err)
	}
	if !strings.Contains(out, "Next steps:") {
		t.Errorf("Expected next steps, got: %s", out)
	}

	for _, f := range []string{config.DefaultPath, ".sitemetrics/.gitignore"} {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			t.Errorf("Expected %s to exist: %v", f, err)
		}
	}

	cfg, err := config.Load(filepath.Join(dir, config.DefaultPath))
	if err != nil {
		t.Fatalf("Written config does not load: %v", err)
	}
	if cfg.Sitemetrics.Source != config.SampleSource {
		t.Errorf("Expected sample source, got %q", cfg.Sitemetrics.Source)
	}
}

func TestInitWithSampleData(t *testing.T) {
	dir := inTempDir(t)

	if _, _, err := executeCommand(t, "init", "--sample"); err != nil {
		t.Fatalf("init --sample failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, SampleDataPath)); err != nil {
		t.Fatalf("Sample data missing: %v", err)
	}

	// The new project reads its own data file.
	out, _, err := executeCommand(t, "status", "-v")
	if err != nil {
		t.Fatalf("status after init failed: %v", err)
	}
	if !strings.Contains(out, "Riverside") {
		t.Errorf("Expected sample projects, got:\n%s", out)
	}

	out, _, err = executeCommand(t, "config")
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	if !strings.Contains(out, filepath.Join("data", "projects.json")) {
		t.Errorf("Expected config to point at the data file:\n%s", out)
	}
}

func TestInitRefusesToOverwrite(t *testing.T) {
	inTempDir(t)

	if _, _, err := executeCommand(t, "init"); err != nil {
		t.Fatalf("first init failed: %v", err)
	}

	out, _, err := executeCommand(t, "init")
	if code := exitCode(t, err); code != 1 {
		t.Fatalf("Expected exit code 1, got %d", code)
	}
	if !strings.Contains(out, "--force") {
		t.Errorf("Expected hint about --force, got: %s", out)
	}

	if _, _, err := executeCommand(t, "init", "--force"); err != nil {
		t.Errorf("init --force failed: %v", err)
	}
}
