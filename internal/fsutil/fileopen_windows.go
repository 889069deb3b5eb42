//go:build windows

package fsutil

import "os"

// openNoFollow opens a file for writing.
// On Windows, O_NOFOLLOW is not available; WriteFileAtomic still rejects
// symlink destinations before renaming.
func openNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(path, flag, perm)
}
