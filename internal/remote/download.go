package remote

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/sourcegraph/conc/pool"

	"shuttle/internal/services"
)

// downloadDir mirrors a remote tree under localPath. The tree is listed once
// over lister, then every file becomes its own sub-task on a bounded pool,
// each task downloading over a fresh session from factory. filenameMap is
// read-only here; entries it names (key: remote path) land under the mapped
// name instead of their own.
func downloadDir(ctx context.Context, lister Client, factory Factory, workers int, remotePath, localPath string, filenameMap map[string]string) error {
	if workers < 1 {
		workers = 1
	}
	if err := os.MkdirAll(localPath, 0o755); err != nil {
		return services.Wrap(services.ErrLocalIO, "sftp", "download", "create local dir", err)
	}

	entries, err := lister.ListDirRecursive(ctx, remotePath)
	if err != nil {
		return err
	}

	// Directories first, so empty ones survive the mirror and file tasks
	// never race a MkdirAll against each other.
	var files []Entry
	for _, entry := range entries {
		if !entry.IsDir {
			files = append(files, entry)
			continue
		}
		rel, err := filepath.Rel(remotePath, entry.Path)
		if err != nil {
			return services.Wrap(services.ErrLocalIO, "sftp", "download", "resolve "+entry.Path, err)
		}
		if err := os.MkdirAll(filepath.Join(localPath, rel), 0o755); err != nil {
			return services.Wrap(services.ErrLocalIO, "sftp", "download", "create local dir", err)
		}
	}

	p := pool.New().WithErrors().WithMaxGoroutines(workers)
	for _, entry := range files {
		p.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rel, err := filepath.Rel(remotePath, path.Dir(entry.Path))
			if err != nil {
				return services.Wrap(services.ErrLocalIO, "sftp", "download", "resolve "+entry.Path, err)
			}
			localName := entry.Name
			if mapped, ok := filenameMap[entry.Path]; ok && mapped != "" {
				localName = mapped
			}

			client := factory()
			if err := client.Connect(ctx); err != nil {
				return err
			}
			defer client.Disconnect()
			return client.GetFile(ctx, entry.Path, filepath.Join(localPath, rel, localName))
		})
	}
	return p.Wait()
}
