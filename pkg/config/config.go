/*
Package config manages TOML config for wordoracle services.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/bastiangx/wordoracle/internal/utils"
	"github.com/charmbracelet/log"
)

const appDir = "wordoracle"

// Config holds the entire config structure
type Config struct {
	Server ServerConfig `toml:"server"`
	Index  IndexConfig  `toml:"index"`
	CLI    CliConfig    `toml:"cli"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig has IPC server options.
type ServerConfig struct {
	MaxLimit      int      `toml:"max_limit"`
	DefaultLimit  int      `toml:"default_limit"`
	MaxQuery      int      `toml:"max_query"`
	RateLimit     float64  `toml:"rate_limit"` // requests per second, 0 disables
	RateBurst     int      `toml:"rate_burst"`
	CacheSize     int      `toml:"cache_size"` // 0 disables the response cache
	ServeDefaults bool     `toml:"serve_defaults"`
	Defaults      []string `toml:"defaults"`
}

// IndexConfig holds suggestion index options.
type IndexConfig struct {
	Backend         string `toml:"backend"` // "chunked" or "patricia"
	ChunkSize       int    `toml:"chunk_size"`
	Truncate        bool   `toml:"truncate"`
	MinIntersection int    `toml:"min_intersection"`
	Whitespace      string `toml:"whitespace"`
	MaxEntries      int    `toml:"max_entries"` // 0 loads every entry
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit int  `toml:"default_limit"`
	NoColor      bool `toml:"no_color"`
}

// LogConfig holds audit log options.
type LogConfig struct {
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", appDir)
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", appDir)
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
// 2. Default path: [UserConfigDir]/wordoracle/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
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

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			MaxLimit:      64,
			DefaultLimit:  20,
			MaxQuery:      120,
			RateLimit:     0,
			RateBurst:     32,
			CacheSize:     1024,
			ServeDefaults: false,
			Defaults:      []string{},
		},
		Index: IndexConfig{
			Backend:         "chunked",
			ChunkSize:       2,
			Truncate:        true,
			MinIntersection: 2,
			Whitespace:      " ",
			MaxEntries:      0,
		},
		CLI: CliConfig{
			DefaultLimit: 20,
			NoColor:      false,
		},
		Log: LogConfig{
			File:       "",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
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

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	config.sanitize()
	return config, nil
}

// tryPartialParse keeps every value that still parses and uses defaults for the rest
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "index"); ok {
		extractIndexConfig(section, &config.Index)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	if section, ok := utils.ExtractSection(tempConfig, "log"); ok {
		extractLogConfig(section, &config.Log)
	}
	config.sanitize()
	return config, nil
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		server.DefaultLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "max_query"); ok {
		server.MaxQuery = val
	}
	if val, ok := utils.ExtractFloat64(data, "rate_limit"); ok {
		server.RateLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "rate_burst"); ok {
		server.RateBurst = val
	}
	if val, ok := utils.ExtractInt64(data, "cache_size"); ok {
		server.CacheSize = val
	}
	if val, ok := utils.ExtractBool(data, "serve_defaults"); ok {
		server.ServeDefaults = val
	}
	if val, ok := utils.ExtractStringSlice(data, "defaults"); ok {
		server.Defaults = val
	}
}

func extractIndexConfig(data map[string]any, index *IndexConfig) {
	if val, ok := utils.ExtractString(data, "backend"); ok {
		index.Backend = val
	}
	if val, ok := utils.ExtractInt64(data, "chunk_size"); ok {
		index.ChunkSize = val
	}
	if val, ok := utils.ExtractBool(data, "truncate"); ok {
		index.Truncate = val
	}
	if val, ok := utils.ExtractInt64(data, "min_intersection"); ok {
		index.MinIntersection = val
	}
	if val, ok := utils.ExtractString(data, "whitespace"); ok {
		index.Whitespace = val
	}
	if val, ok := utils.ExtractInt64(data, "max_entries"); ok {
		index.MaxEntries = val
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

func extractLogConfig(data map[string]any, l *LogConfig) {
	if val, ok := utils.ExtractString(data, "file"); ok {
		l.File = val
	}
	if val, ok := utils.ExtractInt64(data, "max_size_mb"); ok {
		l.MaxSizeMB = val
	}
	if val, ok := utils.ExtractInt64(data, "max_backups"); ok {
		l.MaxBackups = val
	}
	if val, ok := utils.ExtractInt64(data, "max_age_days"); ok {
		l.MaxAgeDays = val
	}
}

// sanitize replaces out of range values with defaults
func (c *Config) sanitize() {
	def := DefaultConfig()
	if c.Server.MaxLimit < 1 {
		log.Warnf("server.max_limit %d is invalid, using %d", c.Server.MaxLimit, def.Server.MaxLimit)
		c.Server.MaxLimit = def.Server.MaxLimit
	}
	if c.Server.DefaultLimit < 1 || c.Server.DefaultLimit > c.Server.MaxLimit {
		log.Warnf("server.default_limit %d is invalid, clamping", c.Server.DefaultLimit)
		c.Server.DefaultLimit = min(max(c.Server.DefaultLimit, 1), c.Server.MaxLimit)
	}
	if c.Server.MaxQuery < 1 {
		c.Server.MaxQuery = def.Server.MaxQuery
	}
	if c.Server.RateLimit < 0 {
		c.Server.RateLimit = 0
	}
	if c.Server.RateBurst < 1 {
		c.Server.RateBurst = def.Server.RateBurst
	}
	if c.Server.CacheSize < 0 {
		c.Server.CacheSize = 0
	}
	if c.Index.Backend == "" {
		c.Index.Backend = def.Index.Backend
	}
	if c.Index.ChunkSize < 1 {
		log.Warnf("index.chunk_size %d is invalid, using %d", c.Index.ChunkSize, def.Index.ChunkSize)
		c.Index.ChunkSize = def.Index.ChunkSize
	}
	if c.Index.MinIntersection < 0 {
		c.Index.MinIntersection = def.Index.MinIntersection
	}
	if c.CLI.DefaultLimit < 1 {
		c.CLI.DefaultLimit = def.CLI.DefaultLimit
	}
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(filepath.Dir(defaultPath)); err != nil {
		return err
	}
	return utils.SaveTOMLFile(DefaultConfig(), defaultPath)
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

// Update changes the server limits and saves to file when configPath is set
func (c *Config) Update(configPath string, maxLimit, defaultLimit *int, serveDefaults *bool) error {
	server := &c.Server
	if maxLimit != nil {
		server.MaxLimit = *maxLimit
	}
	if defaultLimit != nil {
		server.DefaultLimit = *defaultLimit
	}
	if serveDefaults != nil {
		server.ServeDefaults = *serveDefaults
	}
	c.sanitize()
	if configPath == "" {
		return nil
	}
	return SaveConfig(c, configPath)
}
