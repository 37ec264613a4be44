package utils

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// DirCheckResult is what CheckDirStatus found out about a config directory.
type DirCheckResult struct {
	Exists   bool
	Writable bool
	Error    error
}

// FileExists reports whether path names a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// EnsureDir creates dirPath and its parents.
func EnsureDir(dirPath string) error {
	return os.MkdirAll(dirPath, 0o755)
}

// SaveTOMLFile encodes data next to filePath and renames it into place. A
// failed write leaves the previous file untouched.
func SaveTOMLFile(data any, filePath string) error {
	tmp, err := os.CreateTemp(filepath.Dir(filePath), "."+filepath.Base(filePath)+".*")
	if err != nil {
		log.Errorf("Failed to create %s: %v", filePath, err)
		return err
	}
	defer os.Remove(tmp.Name())

	if err := toml.NewEncoder(tmp).Encode(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filePath)
}

// GetAbsolutePath returns the absolute form of path, or "unknown" when empty.
func GetAbsolutePath(path string) string {
	if path == "" {
		return "unknown"
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// GetExecutableDir returns the directory of the running binary.
func GetExecutableDir() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(execPath), nil
}

// CheckDirStatus creates dirPath when missing and probes it with a scratch file.
func CheckDirStatus(dirPath string) DirCheckResult {
	info, err := os.Stat(dirPath)
	switch {
	case err == nil && !info.IsDir():
		return DirCheckResult{Error: &fs.PathError{Op: "stat", Path: dirPath, Err: errors.New("not a directory")}}
	case errors.Is(err, fs.ErrNotExist):
		if err := EnsureDir(dirPath); err != nil {
			log.Warnf("Cannot create directory %s: %v", dirPath, err)
			return DirCheckResult{Error: err}
		}
	case err != nil:
		return DirCheckResult{Error: err}
	}

	probe, err := os.CreateTemp(dirPath, ".pcdserve-probe-*")
	if err != nil {
		log.Warnf("Cannot write to directory %s: %v", dirPath, err)
		return DirCheckResult{Exists: true}
	}
	probe.Close()
	os.Remove(probe.Name())
	return DirCheckResult{Exists: true, Writable: true}
}
