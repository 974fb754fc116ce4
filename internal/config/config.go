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

// SFTP contains connection settings for the remote file store.
type SFTP struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	Username    string   `toml:"username"`
	SSHKeyPath  string   `toml:"ssh_key_path"`
	RemotePaths []string `toml:"remote_paths"`
}

// Paths contains local directory configuration.
type Paths struct {
	IncomingDir string `toml:"incoming_dir"`
	TVDir       string `toml:"tv_dir"`
	LogDir      string `toml:"log_dir"`
}

// Transfers contains download scheduling and retry settings.
type Transfers struct {
	MaxWorkers        int    `toml:"max_workers"`
	MaxPathLength     int    `toml:"max_path_length"`
	GraceSeconds      int    `toml:"grace_seconds"`
	RetryCount        int    `toml:"retry_count"`
	RetryDelaySeconds int    `toml:"retry_delay_seconds"`
	HashAlgorithm     string `toml:"hash_algorithm"`
}

// Routing contains file routing settings.
type Routing struct {
	DryRun bool `toml:"dry_run"`
}

// TMDB contains configuration for The Movie Database API.
type TMDB struct {
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
	Language string `toml:"language"`
}

// LLM contains settings for the optional filename-parsing model.
type LLM struct {
	Enabled             bool    `toml:"enabled"`
	Provider            string  `toml:"provider"`
	BaseURL             string  `toml:"base_url"`
	Model               string  `toml:"model"`
	APIKey              string  `toml:"api_key"`
	ConfidenceThreshold float64 `toml:"confidence_threshold"`
	TimeoutSeconds      int     `toml:"timeout_seconds"`
}

// Daemon contains poll loop timing.
type Daemon struct {
	PollIntervalSeconds int `toml:"poll_interval_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Shuttle.
//
// Configuration sections by subsystem:
//   - SFTP: remote host credentials and the remote roots to reconcile
//   - Paths: local incoming directory, TV library root, log directory
//   - Transfers: worker count, path ceiling, listing grace, retry policy
//   - Routing: dry-run toggle for the router
//   - TMDB: show/episode catalog bootstrap via The Movie Database
//   - LLM: optional model-backed filename parsing and name shortening
//   - Daemon: sync poll interval
//   - Logging: log format and level
type Config struct {
	SFTP      SFTP      `toml:"sftp"`
	Paths     Paths     `toml:"paths"`
	Transfers Transfers `toml:"transfers"`
	Routing   Routing   `toml:"routing"`
	TMDB      TMDB      `toml:"tmdb"`
	LLM       LLM       `toml:"llm"`
	Daemon    Daemon    `toml:"daemon"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/shuttle/config.toml")
}

// SampleConfig returns the embedded sample configuration document.
func SampleConfig() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
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

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("shuttle.toml")
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

// EnsureDirectories creates required directories for daemon operation.
// TVDir is created on a best-effort basis so the daemon can run when
// library storage is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.IncomingDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.TVDir) != "" {
		_ = os.MkdirAll(c.Paths.TVDir, 0o755)
	}
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", trimmed, err)
	}
	return abs, nil
}
