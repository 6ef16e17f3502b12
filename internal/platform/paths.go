package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// NormalizePath normalizes a path for the current platform
func NormalizePath(path string) string {
	// Convert to platform-specific separators
	normalized := filepath.Clean(path)

	// On Windows, ensure UNC paths are preserved
	if runtime.GOOS == "windows" {
		if strings.HasPrefix(path, "\\\\") && !strings.HasPrefix(normalized, "\\\\") {
			normalized = "\\\\" + normalized
		}
	}

	return normalized
}

// IsUNCPath checks if a path is a UNC path (Windows network share)
func IsUNCPath(path string) bool {
	if runtime.GOOS != "windows" {
		return false
	}
	return strings.HasPrefix(path, "\\\\") || strings.HasPrefix(path, "//")
}

// ExpandHome replaces a leading ~ with the user's home directory.
// Paths coming from config files never pass through a shell.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, "~\\") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", &PathError{Path: path, Message: "cannot resolve home directory: " + err.Error()}
	}
	return filepath.Join(home, path[1:]), nil
}

// Resolve validates path and returns its absolute, normalized form.
// UNC paths are already absolute and kept as is.
func Resolve(path string) (string, error) {
	if err := ValidatePath(path); err != nil {
		return "", err
	}

	expanded, err := ExpandHome(path)
	if err != nil {
		return "", err
	}

	if IsUNCPath(expanded) {
		return NormalizePath(expanded), nil
	}

	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", &PathError{Path: path, Message: err.Error()}
	}
	return NormalizePath(abs), nil
}

// ValidatePath checks if a path is valid for the current platform
func ValidatePath(path string) error {
	if path == "" {
		return &PathError{Path: path, Message: "path is empty"}
	}

	// Check for invalid characters based on OS
	if runtime.GOOS == "windows" {
		invalidChars := []string{"<", ">", "\"", "|", "?", "*"}
		for _, char := range invalidChars {
			if strings.Contains(path, char) {
				return &PathError{Path: path, Message: "path contains invalid character: " + char}
			}
		}
		// A colon is only valid right after a drive letter
		if i := strings.LastIndex(path, ":"); i > 1 {
			return &PathError{Path: path, Message: "path contains invalid character: :"}
		}
	}

	return nil
}

// IsNested reports whether inner lies strictly inside outer. Both paths must
// be resolved.
func IsNested(outer, inner string) bool {
	return strings.HasPrefix(inner, strings.TrimSuffix(outer, string(filepath.Separator))+string(filepath.Separator))
}

// PathError represents a path validation error
type PathError struct {
	Path    string
	Message string
}

func (e *PathError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Message
}
