package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

const BackupSuffix = ".old"

// WriteFileAtomic writes data to a temporary file next to path and renames
// it into place, so readers see either the old or the new content. The
// parent directory is created with 0700 when missing. If path already
// exists its mode is kept, otherwise perm is used. A symlinked path is
// written through: the link stays and its target is replaced.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	path, err = resolveLink(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if info, statErr := os.Stat(path); statErr == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err = tmp.Chmod(perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// resolveLink follows symlinks at path. A path that does not exist yet is
// returned unchanged.
func resolveLink(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		if os.IsNotExist(err) {
			return path, nil
		}
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return resolved, nil
}

// BackupFile copies path to path+".old" and returns the backup path. A
// missing source is not an error and yields an empty backup path.
func BackupFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("error reading %s: %w", path, err)
	}

	backupPath := path + BackupSuffix
	if err := WriteFileAtomic(backupPath, content, 0600); err != nil {
		return "", fmt.Errorf("error creating backup file: %w", err)
	}
	return backupPath, nil
}
