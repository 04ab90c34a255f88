package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// tempPrefix names in-flight temporary files so listings can skip them
const tempPrefix = ".prowlerhub-tmp-"

// WriteFileAtomic writes to a temporary file in the target directory, syncs
// it, then renames it into place. Symlinked targets and parents are refused.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	abs, err := cleanAbsPath(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(abs)
	if err := ensureDirNoSymlink(dir); err != nil {
		return err
	}

	if info, err := os.Lstat(abs); err == nil {
		if info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("refusing symlinked file target: %s", abs)
		}
		if info.IsDir() {
			return fmt.Errorf("refusing directory write target: %s", abs)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat write target: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temporary file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temporary file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temporary file: %w", err)
	}

	if err := os.Rename(tmpPath, abs); err != nil {
		return fmt.Errorf("replace target file: %w", err)
	}
	cleanup = false
	return nil
}

func cleanAbsPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return filepath.Clean(abs), nil
}

func ensureDirNoSymlink(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("stat directory: %w", err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("refusing symlinked directory: %s", path)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", path)
	}
	return nil
}
