package remote

import "context"

// Client is one SFTP session. Sessions are not safe for concurrent use;
// each transfer worker opens its own via a Factory.
type Client interface {
	// Connect establishes the underlying SSH and SFTP sessions.
	Connect(ctx context.Context) error
	// Disconnect tears the sessions down. Safe to call when not connected.
	Disconnect() error
	// Reconnect drops the current sessions and establishes fresh ones.
	Reconnect(ctx context.Context) error

	// ListDir lists the immediate children of a remote directory, with
	// junk entries and too-recently-modified files filtered out.
	ListDir(ctx context.Context, remotePath string) ([]Entry, error)
	// ListDirRecursive walks a remote tree depth-first, applying the same
	// filters at every level.
	ListDirRecursive(ctx context.Context, remotePath string) ([]Entry, error)

	// GetFile downloads a single remote file to a local path.
	GetFile(ctx context.Context, remotePath, localPath string) error
	// GetDir mirrors a remote directory tree under localPath. filenameMap
	// optionally renames individual files (key: remote path) as they land,
	// for targets whose combined path would otherwise be too long.
	GetDir(ctx context.Context, remotePath, localPath string, filenameMap map[string]string) error
}

// Factory builds a disconnected Client. The transfer pool calls it once per
// worker task so sessions are never shared across goroutines.
type Factory func() Client
