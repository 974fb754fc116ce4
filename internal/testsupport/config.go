// Package testsupport provides shared helpers for package tests: seeded
// configs, catalog stores, and file fixtures.
package testsupport

import (
	"path/filepath"
	"testing"

	"shuttle/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.SFTP.Host = "seedbox.example"
	cfg.SFTP.Username = "sync"
	cfg.SFTP.SSHKeyPath = filepath.Join(base, "id_ed25519")
	cfg.SFTP.RemotePaths = []string{"/remote/incoming"}
	cfg.Paths.IncomingDir = filepath.Join(base, "incoming")
	cfg.Paths.TVDir = filepath.Join(base, "tv")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Transfers.RetryDelaySeconds = 0

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithHashAlgorithm enables post-download hashing on the test config.
func WithHashAlgorithm(algo string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Transfers.HashAlgorithm = algo
	}
}

// WithRemotePaths overrides the remote roots on the test config.
func WithRemotePaths(paths ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.SFTP.RemotePaths = paths
	}
}
