package preflight

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"shuttle/internal/config"
	"shuttle/internal/services/llm"
	"shuttle/internal/services/tmdb"
)

// minFreeBytes is the floor below which the incoming disk is reported as
// effectively full.
const minFreeBytes = 1 << 30

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDiskSpace reports the free space on the filesystem backing path.
func CheckDiskSpace(name, path string) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	detail := fmt.Sprintf("%.1f GiB free", float64(free)/(1<<30))
	if free < minFreeBytes {
		return Result{Name: name, Detail: detail + " (below 1 GiB)"}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckTMDB verifies the API key with a cheap search request.
func CheckTMDB(ctx context.Context, cfg *config.Config) Result {
	const name = "TMDB API"

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language,
		tmdb.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}))
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if _, err := client.SearchTV(checkCtx, "the"); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckLLM verifies the configured model endpoint is reachable. One
// attempt, no retries.
func CheckLLM(ctx context.Context, cfg config.LLM) Result {
	const name = "LLM endpoint"

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := llm.New(cfg, llm.WithRetryMaxAttempts(1))
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}
