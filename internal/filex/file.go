// Package filex contains small filesystem helpers for the wallet storage
// root: directory creation with private permissions and whole-file atomic
// replacement.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DirPerm is used for every directory under the storage root.
	DirPerm os.FileMode = 0o700
	// FilePerm is used for every file under the storage root.
	FilePerm os.FileMode = 0o600

	appDirName = ".walletkeeper"
)

// userHomeDir is a test seam for os.UserHomeDir.
var userHomeDir = os.UserHomeDir

// DefaultStorageDir resolves the per-user storage root in the home directory.
func DefaultStorageDir() (string, error) {
	home, err := userHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, appDirName), nil
}

// EnsureDir creates root/name (and any parents) if absent and returns its
// path. It fails if a non-directory with the same name exists.
func EnsureDir(root, name string) (string, error) {
	dir := filepath.Join(root, name)

	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// WriteFileAtomic replaces path with data in a single step. The data is
// written to a temporary file in the same directory, synced and renamed over
// path, so readers observe either the old or the new content, never a mix.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err = tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
