package remote

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

type fakeLister struct {
	Client
	entries []Entry
	listErr error
}

func (l *fakeLister) ListDirRecursive(ctx context.Context, remotePath string) ([]Entry, error) {
	return l.entries, l.listErr
}

// downloadRecorder tracks sessions handed out by the factory across the
// concurrent file tasks.
type downloadRecorder struct {
	mu        sync.Mutex
	sessions  int
	failPaths map[string]error
}

func (r *downloadRecorder) newSession() *fakeTransferSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions++
	return &fakeTransferSession{rec: r}
}

type fakeTransferSession struct {
	Client
	rec       *downloadRecorder
	connected bool
	gets      int
}

func (s *fakeTransferSession) Connect(ctx context.Context) error {
	s.connected = true
	return nil
}

func (s *fakeTransferSession) Disconnect() error {
	s.connected = false
	return nil
}

func (s *fakeTransferSession) GetFile(ctx context.Context, remotePath, localPath string) error {
	if !s.connected {
		return fmt.Errorf("get %s over disconnected session", remotePath)
	}
	s.gets++
	if s.gets > 1 {
		return fmt.Errorf("session reused for %s", remotePath)
	}
	s.rec.mu.Lock()
	failErr := s.rec.failPaths[remotePath]
	s.rec.mu.Unlock()
	if failErr != nil {
		return failErr
	}
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(localPath, []byte(remotePath), 0o644)
}

func showTreeEntries() []Entry {
	return []Entry{
		{Name: "Season 01", Path: "/remote/show/Season 01", IsDir: true},
		{Name: "ep1.mkv", Path: "/remote/show/Season 01/ep1.mkv", Size: 10},
		{Name: "ep2.mkv", Path: "/remote/show/Season 01/ep2.mkv", Size: 10},
		{Name: "Extras", Path: "/remote/show/Extras", IsDir: true},
		{Name: "movie.mkv", Path: "/remote/show/movie.mkv", Size: 10},
	}
}

func TestDownloadDirFansOutPerFileSessions(t *testing.T) {
	rec := &downloadRecorder{}
	lister := &fakeLister{entries: showTreeEntries()}
	local := t.TempDir()

	renames := map[string]string{"/remote/show/Season 01/ep2.mkv": "e2.mkv"}
	err := downloadDir(context.Background(), lister, func() Client { return rec.newSession() },
		2, "/remote/show", local, renames)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, rel := range []string{
		filepath.Join("Season 01", "ep1.mkv"),
		filepath.Join("Season 01", "e2.mkv"),
		"movie.mkv",
	} {
		if _, statErr := os.Stat(filepath.Join(local, rel)); statErr != nil {
			t.Fatalf("expected %s to be downloaded: %v", rel, statErr)
		}
	}
	if info, statErr := os.Stat(filepath.Join(local, "Extras")); statErr != nil || !info.IsDir() {
		t.Fatalf("expected empty directory Extras to be mirrored, got %v", statErr)
	}
	if rec.sessions != 3 {
		t.Fatalf("expected one fresh session per file, got %d sessions for 3 files", rec.sessions)
	}
}

func TestDownloadDirPropagatesFileFailure(t *testing.T) {
	getErr := transientErr("connection reset")
	rec := &downloadRecorder{failPaths: map[string]error{"/remote/show/movie.mkv": getErr}}
	lister := &fakeLister{entries: showTreeEntries()}
	local := t.TempDir()

	err := downloadDir(context.Background(), lister, func() Client { return rec.newSession() },
		2, "/remote/show", local, nil)
	if !errors.Is(err, getErr) {
		t.Fatalf("expected the failed file's error, got %v", err)
	}
}

func TestDownloadDirPropagatesListFailure(t *testing.T) {
	listErr := transientErr("read dir failed")
	lister := &fakeLister{listErr: listErr}
	factoryCalls := 0

	err := downloadDir(context.Background(), lister, func() Client {
		factoryCalls++
		return nil
	}, 2, "/remote/show", t.TempDir(), nil)
	if !errors.Is(err, listErr) {
		t.Fatalf("expected the listing error, got %v", err)
	}
	if factoryCalls != 0 {
		t.Fatalf("no sessions should be opened when listing fails, got %d", factoryCalls)
	}
}
