package models

import (
	"path/filepath"
	"testing"
)

// GetFixturePath returns the absolute path of a file under the repository
// testdata directory, for tests in packages two levels below the root.
func GetFixturePath(t *testing.T, fixturePath string) string {
	t.Helper()

	absPath, err := filepath.Abs(filepath.Join("..", "..", "testdata", fixturePath))
	if err != nil {
		t.Fatalf("Failed to get absolute path to testdata/%s: %v", fixturePath, err)
	}

	return absPath
}
