package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/art/backup", filepath.Join(home, "art", "backup")},
		{"/abs/path", "/abs/path"},
		{"rel/~/path", "rel/~/path"},
		{"~other/path", "~other/path"},
	}
	for _, tt := range tests {
		got, err := ExpandHome(tt.in)
		if err != nil {
			t.Errorf("ExpandHome(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ExpandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolve(t *testing.T) {
	if _, err := Resolve(""); err == nil {
		t.Error("Resolve(\"\") should fail")
	}

	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	got, err := Resolve("projects/../exports/")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if want := filepath.Join(cwd, "exports"); got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}
}

func TestIsNested(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses unix paths")
	}

	tests := []struct {
		outer, inner string
		want         bool
	}{
		{"/art", "/art/backup", true},
		{"/art/", "/art/backup", true},
		{"/art", "/art", false},
		{"/art", "/artwork", false},
		{"/art/backup", "/art", false},
	}
	for _, tt := range tests {
		if got := IsNested(tt.outer, tt.inner); got != tt.want {
			t.Errorf("IsNested(%q, %q) = %v, want %v", tt.outer, tt.inner, got, tt.want)
		}
	}
}

func TestValidatePath(t *testing.T) {
	if err := ValidatePath("/tmp/a.sai"); err != nil {
		t.Errorf("ValidatePath() error = %v", err)
	}
	err := ValidatePath("")
	if _, ok := err.(*PathError); !ok {
		t.Errorf("ValidatePath(\"\") = %v, want *PathError", err)
	}
}
