package worker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OutputPath maps input from sourceRoot into destRoot and appends suffix.
// An empty destRoot, or one equal to sourceRoot, keeps the output next to
// the input.
func OutputPath(input, sourceRoot, destRoot, suffix string) (string, error) {
	input = filepath.Clean(input)
	sourceRoot = filepath.Clean(sourceRoot)

	if destRoot == "" || filepath.Clean(destRoot) == sourceRoot {
		return input + suffix, nil
	}

	rel, err := filepath.Rel(sourceRoot, input)
	if err != nil {
		return "", fmt.Errorf("failed to relate %s to %s: %w", input, sourceRoot, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("input %s is outside source root %s", input, sourceRoot)
	}

	return filepath.Join(filepath.Clean(destRoot), rel) + suffix, nil
}

// EnsureDir creates the parent directory chain of path.
func EnsureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
