package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/shotcap/internal/errors"
	"github.com/hpungsan/shotcap/internal/fsutil"
)

// Format is an export file format.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// extensions maps each format to the file extensions it accepts.
var extensions = map[Format][]string{
	FormatJSON:  {".json"},
	FormatJSONL: {".jsonl"},
	FormatYAML:  {".yaml", ".yml"},
}

// ParseFormat validates a format name. "" means "infer from the path".
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return "", nil
	}
	if _, ok := extensions[f]; !ok {
		return "", errors.NewInvalidRequest(fmt.Sprintf("unknown format %q (want json, jsonl or yaml)", s))
	}
	return f, nil
}

// FormatForPath infers the format from the file extension.
func FormatForPath(path string) (Format, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	for f, exts := range extensions {
		for _, e := range exts {
			if ext == e {
				return f, true
			}
		}
	}
	return "", false
}

// ValidateExportPath checks an export destination and returns its absolute path
// and effective format. It rejects:
// 1. Path traversal (.. components)
// 2. An extension that does not match format (or no known extension when format is "")
// 3. A symlink at the destination
// 4. The store file itself
func ValidateExportPath(path string, format Format, storePath string) (string, Format, error) {
	if strings.TrimSpace(path) == "" {
		return "", "", errors.NewInvalidRequest("path is required")
	}

	if containsTraversal(path) {
		return "", "", errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	cleaned := filepath.Clean(path)
	inferred, ok := FormatForPath(cleaned)
	switch {
	case format == "" && !ok:
		return "", "", errors.NewInvalidRequest("path must have a .json, .jsonl, .yaml or .yml extension")
	case format == "":
		format = inferred
	case !ok || inferred != format:
		return "", "", errors.NewInvalidRequest(
			fmt.Sprintf("path must have %s extension for %s format", strings.Join(extensions[format], " or "), format))
	}

	absPath, err := filepath.Abs(cleaned)
	if err != nil {
		return "", "", errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	// O_NOFOLLOW would catch this at open time too, but rejecting early gives a clearer error.
	if fsutil.IsSymlink(absPath) {
		return "", "", errors.NewInvalidRequest("path must not be a symlink")
	}

	if storePath != "" && sameFile(absPath, storePath) {
		return "", "", errors.NewInvalidRequest("export path must not be the capture store")
	}

	return absPath, format, nil
}

func sameFile(absPath, other string) bool {
	otherAbs, err := filepath.Abs(other)
	if err != nil {
		return false
	}
	if otherAbs == absPath {
		return true
	}
	a, errA := os.Stat(absPath)
	b, errB := os.Stat(otherAbs)
	return errA == nil && errB == nil && os.SameFile(a, b)
}

// containsTraversal checks if path contains ".." directory traversal.
func containsTraversal(path string) bool {
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part == ".." {
			return true
		}
	}
	// Also check for forward slashes on all platforms (e.g., user input)
	if filepath.Separator != '/' {
		for _, part := range strings.Split(path, "/") {
			if part == ".." {
				return true
			}
		}
	}
	return false
}

// DefaultExportsDir returns the default exports directory (~/.shotcap/exports).
func DefaultExportsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to get home directory: %w", err))
	}
	return filepath.Join(homeDir, ".shotcap", "exports"), nil
}
