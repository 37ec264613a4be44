/*
Package config manages the TOML config for pcdserve.

A missing file is created with defaults. A file with syntax errors is
recovered key by key: every well-typed key still applies and the rest keep
their defaults.
*/
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/direitospcd/pcdserve/internal/utils"
	"github.com/direitospcd/pcdserve/pkg/rank"
)

// Config holds the entire config structure
type Config struct {
	Search SearchConfig `toml:"search"`
	Server ServerConfig `toml:"server"`
	Data   DataConfig   `toml:"data"`
	CLI    CliConfig    `toml:"cli"`
}

// SearchConfig holds the scoring knobs. See rank.Options.
type SearchConfig struct {
	MaxResults         int     `toml:"max_results"`
	MaxQueryLength     int     `toml:"max_query_length"`
	FuzzyMaxDistance   int     `toml:"fuzzy_max_distance"`
	FuzzyFactor        float64 `toml:"fuzzy_factor"`
	FuzzyMinTermLength int     `toml:"fuzzy_min_term_length"`
	ContentMultiplier  float64 `toml:"content_multiplier"`
	CidWeight          float64 `toml:"cid_weight"`
	PhraseBonus        float64 `toml:"phrase_bonus"`
}

// ServerConfig has IPC server options.
type ServerConfig struct {
	DebounceMs   int `toml:"debounce_ms"`
	MaxLimit     int `toml:"max_limit"`
	SuggestLimit int `toml:"suggest_limit"`
}

// DataConfig points at the catalog asset. An empty path uses the embedded one.
type DataConfig struct {
	Path string `toml:"path"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit int  `toml:"default_limit"`
	NoColor      bool `toml:"no_color"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	opts := rank.DefaultOptions()
	return &Config{
		Search: SearchConfig{
			MaxResults:         opts.MaxResults,
			MaxQueryLength:     opts.MaxQueryLength,
			FuzzyMaxDistance:   opts.FuzzyMaxDistance,
			FuzzyFactor:        opts.FuzzyFactor,
			FuzzyMinTermLength: opts.FuzzyMinTermLength,
			ContentMultiplier:  opts.ContentMultiplier,
			CidWeight:          opts.CidWeight,
			PhraseBonus:        opts.PhraseBonus,
		},
		Server: ServerConfig{
			DebounceMs:   300,
			MaxLimit:     50,
			SuggestLimit: 8,
		},
		CLI: CliConfig{
			DefaultLimit: 10,
		},
	}
}

// SearchOptions maps [search] onto engine options. Out-of-range values fall
// back to their defaults.
func (c *Config) SearchOptions() rank.Options {
	s := c.Search
	return rank.Options{
		MaxResults:         s.MaxResults,
		MaxQueryLength:     s.MaxQueryLength,
		FuzzyMaxDistance:   s.FuzzyMaxDistance,
		FuzzyFactor:        s.FuzzyFactor,
		FuzzyMinTermLength: s.FuzzyMinTermLength,
		ContentMultiplier:  s.ContentMultiplier,
		CidWeight:          s.CidWeight,
		PhraseBonus:        s.PhraseBonus,
	}.Sanitize()
}

// Debounce returns the live-search settle delay. Negative values disable it.
func (c *Config) Debounce() time.Duration {
	if c.Server.DebounceMs < 0 {
		return 0
	}
	return time.Duration(c.Server.DebounceMs) * time.Millisecond
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/pcdserve
// 2. ~/Library/Application Support/pcdserve (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", utils.AppName)
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", utils.AppName)
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/pcdserve/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err == nil {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
			log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}
	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)
	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}
	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse picks every recognizable key out of a file that failed to
// decode as a whole.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "search"); ok {
		extractSearchConfig(section, &config.Search)
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "data"); ok {
		if val, ok := utils.ExtractString(section, "path"); ok {
			config.Data.Path = val
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	return config, nil
}

func extractSearchConfig(data map[string]any, search *SearchConfig) {
	if val, ok := utils.ExtractInt64(data, "max_results"); ok {
		search.MaxResults = val
	}
	if val, ok := utils.ExtractInt64(data, "max_query_length"); ok {
		search.MaxQueryLength = val
	}
	if val, ok := utils.ExtractInt64(data, "fuzzy_max_distance"); ok {
		search.FuzzyMaxDistance = val
	}
	if val, ok := utils.ExtractFloat(data, "fuzzy_factor"); ok {
		search.FuzzyFactor = val
	}
	if val, ok := utils.ExtractInt64(data, "fuzzy_min_term_length"); ok {
		search.FuzzyMinTermLength = val
	}
	if val, ok := utils.ExtractFloat(data, "content_multiplier"); ok {
		search.ContentMultiplier = val
	}
	if val, ok := utils.ExtractFloat(data, "cid_weight"); ok {
		search.CidWeight = val
	}
	if val, ok := utils.ExtractFloat(data, "phrase_bonus"); ok {
		search.PhraseBonus = val
	}
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "debounce_ms"); ok {
		server.DebounceMs = val
	}
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "suggest_limit"); ok {
		server.SuggestLimit = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		cli.DefaultLimit = val
	}
	if val, ok := utils.ExtractBool(data, "no_color"); ok {
		cli.NoColor = val
	}
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
