package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
)

// AppName names the per-user config and data directories.
const AppName = "pcdserve"

// catalogExtensions are the asset formats the catalog loader understands.
var catalogExtensions = []string{".json", ".jsonc", ".yaml", ".yml"}

// PathResolver finds the catalog asset relative to the binary, the working
// directory and the user config directory.
type PathResolver struct {
	executablePath string
	executableDir  string
	homeDir        string
	configDir      string
}

// NewPathResolver determines the executable location
func NewPathResolver() (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	// follow symlinks to the actual binary
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	pr := newPathResolver(execPath, homeDir)
	log.Debugf("PathResolver initialized: exec=%s, execDir=%s, configDir=%s",
		pr.executablePath, pr.executableDir, pr.configDir)
	return pr, nil
}

func newPathResolver(execPath, homeDir string) *PathResolver {
	return &PathResolver{
		executablePath: execPath,
		executableDir:  filepath.Dir(execPath),
		homeDir:        homeDir,
		configDir:      platformConfigDir(homeDir),
	}
}

// platformConfigDir returns the appropriate config directory for the platform
func platformConfigDir(homeDir string) string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir, ".config", AppName)
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, AppName)
		}
		return filepath.Join(homeDir, ".config", AppName)
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppName)
		}
		return filepath.Join(homeDir, "AppData", "Roaming", AppName)
	default:
		return filepath.Join(homeDir, "."+AppName)
	}
}

// GetDataFile resolves a catalog asset path. It tries, in order:
// 1. The path itself when absolute
// 2. Relative to the executable directory
// 3. Relative to the current working directory
// 4. The same file name under the config directory's data/ folder
func (pr *PathResolver) GetDataFile(userSpecifiedPath string) (string, error) {
	if userSpecifiedPath == "" {
		return "", fmt.Errorf("empty data path")
	}
	candidates := pr.dataFileCandidates(userSpecifiedPath)
	for _, path := range candidates {
		if isCatalogFile(path) {
			log.Debugf("Found catalog asset: %s", path)
			return path, nil
		}
		log.Debugf("Catalog candidate not valid: %s", path)
	}
	return "", fmt.Errorf("no catalog asset found for %q (tried %s)",
		userSpecifiedPath, strings.Join(candidates, ", "))
}

func (pr *PathResolver) dataFileCandidates(userSpecifiedPath string) []string {
	if filepath.IsAbs(userSpecifiedPath) {
		return []string{userSpecifiedPath}
	}

	candidates := []string{filepath.Join(pr.executableDir, userSpecifiedPath)}
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, userSpecifiedPath))
	}
	candidates = append(candidates, filepath.Join(pr.configDir, "data", filepath.Base(userSpecifiedPath)))
	return candidates
}

// isCatalogFile checks for a regular file with a known asset extension.
func isCatalogFile(path string) bool {
	stat, err := os.Stat(path)
	if err != nil || stat.IsDir() {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, known := range catalogExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

// GetExecutableDir returns the directory containing the executable
func (pr *PathResolver) GetExecutableDir() string {
	return pr.executableDir
}

// GetConfigDir returns the config directory
func (pr *PathResolver) GetConfigDir() string {
	return pr.configDir
}

// ResolveRelativePath resolves a path relative to the executable directory
func (pr *PathResolver) ResolveRelativePath(relativePath string) string {
	if filepath.IsAbs(relativePath) {
		return relativePath
	}
	return filepath.Join(pr.executableDir, relativePath)
}
