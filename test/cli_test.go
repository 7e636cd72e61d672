package test

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

func binaryName() string {
	if runtime.GOOS == "windows" {
		return "sitemetrics.exe"
	}
	return "sitemetrics"
}

// buildBinary compiles cmd/sitemetrics into a temp dir.
func buildBinary(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping binary build in short mode")
	}

	wd, _ := os.Getwd()
	projectRoot := filepath.Dir(wd)
	if _, err := os.Stat(filepath.Join(projectRoot, "cmd/sitemetrics")); err != nil {
		projectRoot = wd
	}

	binaryPath := filepath.Join(t.TempDir(), binaryName())
	buildCmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/sitemetrics")
	buildCmd.Dir = projectRoot
	if output, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build CLI: %v\n%s", err, output)
	}
	return binaryPath
}

func run(t *testing.T, binary, dir string, args ...string) ([]byte, int) {
	t.Helper()
	cmd := exec.Command(binary, append([]string{"--no-color"}, args...)...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return output, 0
	case errors.As(err, &exitErr):
		return output, exitErr.ExitCode()
	default:
		t.Fatalf("%v failed to start: %v", args, err)
		return nil, -1
	}
}

// TestCLI runs the built binary end to end against the sample portfolio.
func TestCLI(t *testing.T) {
	binary := buildBinary(t)
	dir := t.TempDir()

	t.Run("version", func(t *testing.T) {
		output, code := run(t, binary, dir, "version")
		if code != 0 || !bytes.Contains(output, []byte("sitemetrics version")) {
			t.Errorf("version: exit %d\n%s", code, output)
		}
	})

	t.Run("help_shows_commands", func(t *testing.T) {
		output, _ := run(t, binary, dir, "--help")
		for _, name := range []string{"status", "project", "health", "export", "import", "serve", "init", "config"} {
			if !bytes.Contains(output, []byte(name)) {
				t.Errorf("Help missing command: %s", name)
			}
		}
	})

	t.Run("status_sample", func(t *testing.T) {
		output, code := run(t, binary, dir, "--source", "sample:", "status", "-v")
		if code != 0 {
			t.Fatalf("status: exit %d\n%s", code, output)
		}
		if !bytes.Contains(output, []byte("Portfolio Health")) || !bytes.Contains(output, []byte("2024-017")) {
			t.Errorf("status output missing expected content:\n%s", output)
		}
	})

	t.Run("health_warnings_exit_1", func(t *testing.T) {
		output, code := run(t, binary, dir, "--source", "sample:", "health")
		if code != 1 {
			t.Errorf("health: exit %d, want 1\n%s", code, output)
		}
		if bytes.Contains(output, []byte("Error:")) {
			t.Errorf("health warnings should not print an error line:\n%s", output)
		}
	})

	t.Run("unknown_project_exit_1", func(t *testing.T) {
		output, code := run(t, binary, dir, "--source", "sample:", "project", "1999-000")
		if code != 1 || !bytes.Contains(output, []byte("Error:")) {
			t.Errorf("project: exit %d\n%s", code, output)
		}
	})

	t.Run("init_then_export", func(t *testing.T) {
		if output, code := run(t, binary, dir, "init", "--sample"); code != 0 {
			t.Fatalf("init: exit %d\n%s", code, output)
		}
		output, code := run(t, binary, dir, "export", "--format", "xlsx")
		if code != 0 {
			t.Fatalf("export: exit %d\n%s", code, output)
		}
		matches, _ := filepath.Glob(filepath.Join(dir, "portfolio-*.xlsx"))
		if len(matches) != 1 {
			t.Errorf("Expected one xlsx export, found %v\n%s", matches, output)
		}
	})

	t.Logf("Ran on %s/%s", runtime.GOOS, runtime.GOARCH)
}
