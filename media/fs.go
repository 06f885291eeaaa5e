package media

import (
	"errors"
	"os"
	"syscall"
)

// RemoveFile deletes a file, ignoring files that are already gone.
// Deleting without an existence pre-check avoids the check-then-delete
// race.
func RemoveFile(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// RemoveEmptyDir deletes a directory only if it is empty, ignoring
// missing and non-empty directories.
func RemoveEmptyDir(path string) error {
	err := os.Remove(path)
	if err == nil || os.IsNotExist(err) {
		return nil
	}
	if errors.Is(err, syscall.ENOTEMPTY) || errors.Is(err, syscall.EEXIST) {
		return nil
	}
	return err
}

// RemoveTree deletes a directory and everything under it.
func RemoveTree(path string) error {
	return os.RemoveAll(path)
}
