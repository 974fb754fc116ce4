// Package preflight verifies the runtime environment before a sync pass:
// directory access, free disk space, SFTP connectivity, and the optional
// TMDB and LLM endpoints.
package preflight

import (
	"context"
	"time"

	"shuttle/internal/config"
	"shuttle/internal/remote"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable checks for the given config. Checks for
// optional integrations run only when the integration is configured.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Incoming directory", cfg.Paths.IncomingDir))
	results = append(results, CheckDirectoryAccess("TV directory", cfg.Paths.TVDir))
	results = append(results, CheckDiskSpace("Incoming disk space", cfg.Paths.IncomingDir))

	if cfg.SFTP.Host != "" {
		results = append(results, CheckSFTP(ctx, cfg))
	}
	if cfg.TMDB.APIKey != "" {
		results = append(results, CheckTMDB(ctx, cfg))
	}
	if cfg.LLM.Enabled {
		results = append(results, CheckLLM(ctx, cfg.LLM))
	}

	return results
}

// AllPassed reports whether every check succeeded.
func AllPassed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}

// CheckSFTP opens and closes one session against the configured server.
func CheckSFTP(ctx context.Context, cfg *config.Config) Result {
	const name = "SFTP server"
	if err := cfg.ValidateRemote(); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client := remote.NewSFTPClient(cfg, nil)
	if err := client.Connect(checkCtx); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	defer client.Disconnect()
	return Result{Name: name, Passed: true, Detail: "Reachable"}
}
