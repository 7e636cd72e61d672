package testutil

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var updateGolden = flag.Bool("update", false, "update golden files")

// Update returns true if golden files should be rewritten (go test -update).
func Update() bool {
	return *updateGolden
}

// Golden compares actual output against testdata/<name>.golden, relative
// to the test's package directory. With -update the file is rewritten
// instead. Line endings are normalized before comparing.
func Golden(t *testing.T, name string, actual []byte) {
	t.Helper()

	goldenPath := filepath.Join("testdata", name+".golden")

	if Update() {
		if err := os.MkdirAll(filepath.Dir(goldenPath), 0755); err != nil {
			t.Fatalf("Failed to create testdata directory: %v", err)
		}
		if err := os.WriteFile(goldenPath, actual, 0644); err != nil {
			t.Fatalf("Failed to write golden file %s: %v", goldenPath, err)
		}
		t.Logf("Updated golden file: %s", goldenPath)
		return
	}

	expected, err := os.ReadFile(goldenPath)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("Golden file %s does not exist. Run with -update to create it.", goldenPath)
		}
		t.Fatalf("Failed to read golden file %s: %v", goldenPath, err)
	}

	got, want := normalizeNewlines(string(actual)), normalizeNewlines(string(expected))
	if got == want {
		return
	}

	line, gotLine, wantLine := firstDiff(got, want)
	t.Errorf("Output does not match golden file %s at line %d.\n"+
		"To update the golden file, run: go test -update ./...\n\n"+
		"Got:  %q\nWant: %q", goldenPath, line, gotLine, wantLine)
}

// GoldenString is a convenience wrapper for Golden that accepts a string.
func GoldenString(t *testing.T, name string, actual string) {
	t.Helper()
	Golden(t, name, []byte(actual))
}

// GoldenText compares terminal output against a golden file after
// removing ANSI color codes.
func GoldenText(t *testing.T, name string, actual string) {
	t.Helper()
	Golden(t, name, []byte(StripANSIString(actual)))
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// firstDiff returns the 1-based number of the first differing line and
// the two lines.
func firstDiff(got, want string) (int, string, string) {
	gotLines := strings.Split(got, "\n")
	wantLines := strings.Split(want, "\n")
	for i := 0; i < len(gotLines) || i < len(wantLines); i++ {
		var g, w string
		if i < len(gotLines) {
			g = gotLines[i]
		}
		if i < len(wantLines) {
			w = wantLines[i]
		}
		if g != w || i >= len(gotLines) || i >= len(wantLines) {
			return i + 1, g, w
		}
	}
	return 0, "", ""
}

// StripANSI removes ANSI escape codes from a byte slice.
func StripANSI(data []byte) []byte {
	return []byte(StripANSIString(string(data)))
}

// StripANSIString removes ANSI escape codes from a string.
func StripANSIString(s string) string {
	var sb strings.Builder
	inEscape := false
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\033':
			inEscape = true
		case inEscape:
			if (s[i] >= 'a' && s[i] <= 'z') || (s[i] >= 'A' && s[i] <= 'Z') {
				inEscape = false
			}
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}
