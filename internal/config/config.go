package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	LogDir    string `toml:"log_dir"`
	ImportDir string `toml:"import_dir"`
	APIBind   string `toml:"api_bind"`
	APIToken  string `toml:"api_token"`
}

// Scanning contains configuration for QR scan resolution.
type Scanning struct {
	// RecordEvents controls whether successful resolutions append a scan
	// event to the history and bump the tree's scan counter.
	RecordEvents       bool `toml:"record_events"`
	RateLimitPerMinute int  `toml:"rate_limit_per_minute"`
	RateBurst          int  `toml:"rate_burst"`
}

// Geo contains configuration for proximity searches.
type Geo struct {
	DefaultRadiusKm float64 `toml:"default_radius_km"`
	MaxRadiusKm     float64 `toml:"max_radius_km"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Trees          bool   `toml:"trees"`
	Scans          bool   `toml:"scans"`
	Achievements   bool   `toml:"achievements"`
	Campaigns      bool   `toml:"campaigns"`
	Imports        bool   `toml:"imports"`
	Errors         bool   `toml:"errors"`
}

// Import contains configuration for bulk CSV tree imports.
type Import struct {
	Enabled bool `toml:"enabled"`
	// DefaultPlanter credits rows that omit a planted_by column.
	DefaultPlanter string `toml:"default_planter"`
}

// Workflow contains configuration for daemon timing and intervals.
type Workflow struct {
	MilestoneCheckInterval int `toml:"milestone_check_interval"`
	ImportRescanInterval   int `toml:"import_rescan_interval"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for Green Sprint.
//
// Configuration sections by subsystem:
//   - Paths: data/log/import directories and API bind address
//   - Scanning: scan event recording and API rate limits
//   - Geo: proximity search radius defaults and caps
//   - Notifications: ntfy push notification settings
//   - Import: bulk CSV import behaviour
//   - Workflow: daemon polling intervals
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Scanning      Scanning      `toml:"scanning"`
	Geo           Geo           `toml:"geo"`
	Notifications Notifications `toml:"notifications"`
	Import        Import        `toml:"import"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/greensprint/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/greensprint/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("greensprint.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// DatabasePath returns the location of the SQLite record store.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "greensprint.db")
}

// SocketPath returns the default daemon IPC socket location.
func (c *Config) SocketPath() string {
	return filepath.Join(c.Paths.LogDir, "greensprint.sock")
}

// EnsureDirectories creates required directories for daemon operation.
// ImportDir is created on a best-effort basis so the daemon can run when the
// import location is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Import.Enabled && strings.TrimSpace(c.Paths.ImportDir) != "" {
		_ = os.MkdirAll(c.Paths.ImportDir, 0o755)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
