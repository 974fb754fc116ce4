package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"shuttle/internal/config"
	"shuttle/internal/logging"
	"shuttle/internal/services"
)

// SFTPClient implements Client over an SSH key-authenticated SFTP session.
type SFTPClient struct {
	host    string
	port    int
	user    string
	keyPath string
	grace   time.Duration
	workers int
	logger  *slog.Logger

	sshConn  *ssh.Client
	sftpConn *sftp.Client
}

// NewSFTPClient builds a disconnected client from config.
func NewSFTPClient(cfg *config.Config, logger *slog.Logger) *SFTPClient {
	if logger == nil {
		logger = logging.NewNop()
	}
	workers := cfg.Transfers.MaxWorkers
	if workers < 1 {
		workers = 1
	}
	return &SFTPClient{
		host:    cfg.SFTP.Host,
		port:    cfg.SFTP.Port,
		user:    cfg.SFTP.Username,
		keyPath: cfg.SFTP.SSHKeyPath,
		grace:   time.Duration(cfg.Transfers.GraceSeconds) * time.Second,
		workers: workers,
		logger:  logger.With(logging.String(logging.FieldComponent, "sftp")),
	}
}

// clone returns a disconnected client with the same connection settings,
// for directory sub-tasks that need a session of their own.
func (c *SFTPClient) clone() *SFTPClient {
	return &SFTPClient{
		host:    c.host,
		port:    c.port,
		user:    c.user,
		keyPath: c.keyPath,
		grace:   c.grace,
		workers: c.workers,
		logger:  c.logger,
	}
}

// NewFactory returns a Factory producing independent clients from the same
// config. Each transfer worker gets its own session.
func NewFactory(cfg *config.Config, logger *slog.Logger) Factory {
	return func() Client {
		return NewSFTPClient(cfg, logger)
	}
}

// Connect dials the server and opens an SFTP subsystem session.
func (c *SFTPClient) Connect(ctx context.Context) error {
	if c.sftpConn != nil {
		return nil
	}

	keyBytes, err := os.ReadFile(c.keyPath)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "sftp", "connect", "read ssh key", err)
	}
	signer, err := ssh.ParsePrivateKey(keyBytes)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "sftp", "connect", "parse ssh key", err)
	}

	sshConfig := &ssh.ClientConfig{
		User:            c.user,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         30 * time.Second,
	}

	addr := net.JoinHostPort(c.host, fmt.Sprintf("%d", c.port))
	dialer := net.Dialer{Timeout: sshConfig.Timeout}
	netConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return services.Wrap(services.ErrTransient, "sftp", "connect", "dial "+addr, err)
	}

	sshNetConn, chans, reqs, err := ssh.NewClientConn(netConn, addr, sshConfig)
	if err != nil {
		_ = netConn.Close()
		return services.Wrap(services.ErrTransient, "sftp", "connect", "ssh handshake", err)
	}
	sshConn := ssh.NewClient(sshNetConn, chans, reqs)

	sftpConn, err := sftp.NewClient(sshConn)
	if err != nil {
		_ = sshConn.Close()
		return services.Wrap(services.ErrTransient, "sftp", "connect", "open sftp subsystem", err)
	}

	c.sshConn = sshConn
	c.sftpConn = sftpConn
	c.logger.Debug("connected", logging.String("host", c.host), logging.Int("port", c.port))
	return nil
}

// Disconnect closes both sessions. Safe to call repeatedly.
func (c *SFTPClient) Disconnect() error {
	var errs []error
	if c.sftpConn != nil {
		if err := c.sftpConn.Close(); err != nil {
			errs = append(errs, err)
		}
		c.sftpConn = nil
	}
	if c.sshConn != nil {
		if err := c.sshConn.Close(); err != nil {
			errs = append(errs, err)
		}
		c.sshConn = nil
	}
	return errors.Join(errs...)
}

// Reconnect drops the current sessions and opens fresh ones.
func (c *SFTPClient) Reconnect(ctx context.Context) error {
	_ = c.Disconnect()
	return c.Connect(ctx)
}

func (c *SFTPClient) conn() (*sftp.Client, error) {
	if c.sftpConn == nil {
		return nil, services.Wrap(services.ErrTransient, "sftp", "session", "not connected", nil)
	}
	return c.sftpConn, nil
}

// ListDir lists the immediate children of remotePath, filtered.
func (c *SFTPClient) ListDir(ctx context.Context, remotePath string) ([]Entry, error) {
	conn, err := c.conn()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	infos, err := conn.ReadDir(remotePath)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "sftp", "list", "read dir "+remotePath, err)
	}

	now := time.Now()
	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		entry, keep := c.filterEntry(remotePath, info, now)
		if keep {
			entries = append(entries, entry)
		}
	}
	sortEntries(entries)
	return entries, nil
}

// ListDirRecursive walks the tree depth-first, filtering every level.
func (c *SFTPClient) ListDirRecursive(ctx context.Context, remotePath string) ([]Entry, error) {
	toplevel, err := c.ListDir(ctx, remotePath)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, entry := range toplevel {
		entries = append(entries, entry)
		if !entry.IsDir {
			continue
		}
		children, err := c.ListDirRecursive(ctx, entry.Path)
		if err != nil {
			return nil, err
		}
		entries = append(entries, children...)
	}
	return entries, nil
}

// filterEntry applies the junk filters and, for files only, the modification
// grace window. Files still being written look like recent mtimes.
func (c *SFTPClient) filterEntry(parent string, info os.FileInfo, now time.Time) (Entry, bool) {
	name := info.Name()
	if info.IsDir() {
		if !IsValidDirectory(name) {
			return Entry{}, false
		}
	} else {
		if !IsValidMediaFile(name) {
			return Entry{}, false
		}
		if c.grace > 0 && now.Sub(info.ModTime()) < c.grace {
			c.logger.Debug("skipping recently modified file",
				logging.String("name", name),
				logging.Duration("age", now.Sub(info.ModTime())))
			return Entry{}, false
		}
	}

	return Entry{
		Name:         name,
		Path:         path.Join(parent, name),
		Size:         info.Size(),
		ModifiedTime: info.ModTime(),
		IsDir:        info.IsDir(),
		FetchedAt:    now,
	}, true
}

// GetFile downloads one remote file to localPath, creating parent dirs.
func (c *SFTPClient) GetFile(ctx context.Context, remotePath, localPath string) error {
	conn, err := c.conn()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := conn.Open(remotePath)
	if err != nil {
		return services.Wrap(services.ErrTransient, "sftp", "download", "open remote "+remotePath, err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return services.Wrap(services.ErrLocalIO, "sftp", "download", "create local dir", err)
	}
	dst, err := os.Create(localPath)
	if err != nil {
		return services.Wrap(services.ErrLocalIO, "sftp", "download", "create local file", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, src)
	if err != nil {
		_ = os.Remove(localPath)
		// A *fs.PathError came from the local file; anything else means
		// the remote read broke and a fresh session may recover it.
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return services.Wrap(services.ErrLocalIO, "sftp", "download", "write local "+localPath, err)
		}
		return services.Wrap(services.ErrTransient, "sftp", "download", "copy "+remotePath, err)
	}
	if err := dst.Close(); err != nil {
		return services.Wrap(services.ErrLocalIO, "sftp", "download", "flush local file", err)
	}

	c.logger.Debug("downloaded file",
		logging.String("remote", remotePath),
		logging.String("local", localPath),
		logging.Int64("bytes", written))
	return nil
}

// GetDir mirrors a remote directory tree under localPath, downloading each
// child file as its own sub-task over its own session. filenameMap renames
// individual files (keyed by remote path) as they land.
func (c *SFTPClient) GetDir(ctx context.Context, remotePath, localPath string, filenameMap map[string]string) error {
	sub := func() Client { return c.clone() }
	return downloadDir(ctx, c, sub, c.workers, remotePath, localPath, filenameMap)
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
}
