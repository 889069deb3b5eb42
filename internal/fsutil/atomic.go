package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/shotcap/internal/errors"
)

// WriteFileAtomic writes data to a temp file next to path, syncs it, and renames it
// into place, so readers see either the old or the new content. The parent directory
// is created if needed. Symlink destinations are rejected.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create directory %s: %w", dir, err))
	}

	if IsSymlink(path) {
		return errors.NewInvalidRequest("destination path is a symlink")
	}

	tempPath := path + "." + ulid.Make().String() + ".tmp"
	file, err := openNoFollow(tempPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
	if err != nil {
		if _, ok := err.(*errors.CaptureError); ok {
			return err
		}
		return errors.NewInternal(fmt.Errorf("failed to create temp file: %w", err))
	}

	// Clean up temp file on failure; the existing file is untouched
	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}

	// Close before rename (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close temp file: %w", err))
	}
	file = nil

	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				// Windows refuses to rename over an existing file; fall back to remove+rename.
				if rmErr := os.Remove(path); rmErr == nil {
					if err = os.Rename(tempPath, path); err == nil {
						success = true
						return nil
					}
				}
			}
		}
		return errors.NewInternal(fmt.Errorf("failed to replace %s: %w", path, err))
	}

	success = true
	return nil
}

// IsSymlink reports whether path exists and is a symbolic link.
func IsSymlink(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

// ResolvePath follows a symlink at path (if any) so writes land on the link target.
// Paths that do not exist yet are returned unchanged.
func ResolvePath(path string) (string, error) {
	if !IsSymlink(path) {
		return path, nil
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to resolve %s: %w", path, err))
	}
	return resolved, nil
}
