package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// StateDirName is the per-project directory holding the run store.
	StateDirName = ".sizereport"
	// StoreFileName is the sqlite file inside the state directory.
	StoreFileName = "reports.db"
	// DefaultReportFile is the report written when no filename is configured.
	DefaultReportFile = "report.json"
)

// CanonicalizePath converts an absolute path to a project-relative canonical path
// - Resolves symlinks to real paths
// - Makes path relative to the project root
// - Returns the relative path with forward slashes
func CanonicalizePath(absolutePath string, root string) (string, error) {
	resolved, err := filepath.EvalSymlinks(absolutePath)
	if err != nil {
		if os.IsNotExist(err) {
			resolved = absolutePath
		} else {
			return "", err
		}
	}

	rootResolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		if os.IsNotExist(err) {
			rootResolved = root
		} else {
			return "", err
		}
	}

	relativePath, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", err
	}

	return NormalizePath(relativePath), nil
}

// IsWithinRoot checks if a path is within the given root
func IsWithinRoot(path string, root string) bool {
	canonical, err := CanonicalizePath(path, root)
	if err != nil {
		return false
	}
	return !strings.HasPrefix(canonical, "..")
}

// NormalizePath converts backslashes to forward slashes and strips a leading "./".
// Build tools on Windows report resources with either separator.
func NormalizePath(path string) string {
	normalized := strings.ReplaceAll(path, "\\", "/")
	return strings.TrimPrefix(normalized, "./")
}

// JoinRootPath joins a root with a slash-separated relative path
func JoinRootPath(root string, relPath string) string {
	parts := strings.Split(NormalizePath(relPath), "/")
	return filepath.Join(append([]string{root}, parts...)...)
}

// IsSourceMap reports whether an output file name is a script source map.
func IsSourceMap(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".js.map") || strings.HasSuffix(lower, ".mjs.map")
}

// IsScript reports whether an output file name is a script bundle.
func IsScript(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".js") || strings.HasSuffix(lower, ".mjs")
}

// DefaultStorePath returns <root>/.sizereport/reports.db
func DefaultStorePath(root string) string {
	return filepath.Join(root, StateDirName, StoreFileName)
}

// EnsureParentDir creates the directory that will hold file
func EnsureParentDir(file string) error {
	dir := filepath.Dir(file)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}
