package router

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"shuttle/internal/catalog"
	"shuttle/internal/config"
	"shuttle/internal/testsupport"
)

type fixture struct {
	cfg   *config.Config
	store *catalog.Store
	r     *Router
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t)

	return &fixture{cfg: cfg, store: store, r: New(cfg, store, nil, nil)}
}

func (f *fixture) addShow(t *testing.T, tmdbID int64, name string, aliases ...string) *catalog.Show {
	t.Helper()
	show, err := f.store.AddShow(context.Background(), &catalog.Show{
		TMDBID:  tmdbID,
		SysName: name,
		SysPath: filepath.Join(f.cfg.Paths.TVDir, name),
		Aliases: aliases,
	})
	if err != nil {
		t.Fatalf("add show: %v", err)
	}
	return show
}

func (f *fixture) stageFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(f.cfg.Paths.IncomingDir, name)
	testsupport.WriteFile(t, path, 64)
	return path
}

func (f *fixture) stageRecord(t *testing.T, name string) *catalog.DownloadedFile {
	t.Helper()
	path := f.stageFile(t, name)
	record, err := f.store.UpsertDownloadedFile(context.Background(), &catalog.DownloadedFile{
		Name:        name,
		RemotePath:  "/remote/" + name,
		CurrentPath: path,
		Status:      catalog.StatusDownloaded,
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	return record
}

func TestRouteBacklogMovesEpisodeIntoSeasonFolder(t *testing.T) {
	f := newFixture(t)
	f.addShow(t, 1396, "Breaking Bad")
	f.stageRecord(t, "Breaking.Bad.S01E05.1080p.mkv")

	outcomes, err := f.r.RouteBacklog(context.Background(), false)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if len(outcomes) != 1 || !outcomes[0].Routed {
		t.Fatalf("unexpected outcomes: %+v", outcomes)
	}

	want := filepath.Join(f.cfg.Paths.TVDir, "Breaking Bad", "Season 01", "Breaking.Bad.S01E05.1080p.mkv")
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("file not at destination: %v", err)
	}

	record, err := f.store.FindDownloadedFileByRemotePath(context.Background(), "/remote/Breaking.Bad.S01E05.1080p.mkv")
	if err != nil {
		t.Fatalf("find record: %v", err)
	}
	if record.Status != catalog.StatusRouted {
		t.Fatalf("status not updated: %s", record.Status)
	}
	if record.CurrentPath != want {
		t.Fatalf("current path not updated: %q", record.CurrentPath)
	}
	if record.PreviousPath == "" || record.PreviousPath == record.CurrentPath {
		t.Fatalf("previous path not preserved: %q", record.PreviousPath)
	}
	if record.RoutingAttempts != 1 {
		t.Fatalf("routing attempts: %d", record.RoutingAttempts)
	}
	if record.TMDBID == nil || *record.TMDBID != 1396 {
		t.Fatalf("tmdb id not recorded: %+v", record.TMDBID)
	}
}

func TestRouteMatchesAlias(t *testing.T) {
	f := newFixture(t)
	f.addShow(t, 100, "Demon Slayer Kimetsu no Yaiba", "Kimetsu no Yaiba")
	f.stageRecord(t, "Kimetsu.no.Yaiba.S02E03.mkv")

	outcomes, err := f.r.RouteBacklog(context.Background(), false)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if len(outcomes) != 1 || !outcomes[0].Routed {
		t.Fatalf("alias match failed: %+v", outcomes)
	}
	want := filepath.Join(f.cfg.Paths.TVDir, "Demon Slayer Kimetsu no Yaiba", "Season 02", "Kimetsu.no.Yaiba.S02E03.mkv")
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("file not at destination: %v", err)
	}
}

func TestRouteResolvesAbsoluteEpisodeNumber(t *testing.T) {
	f := newFixture(t)
	show := f.addShow(t, 200, "One Piece")
	episodes := []catalog.Episode{
		{TMDBID: show.TMDBID, Season: 1, Episode: 1, AbsNumber: 1},
		{TMDBID: show.TMDBID, Season: 1, Episode: 2, AbsNumber: 2},
		{TMDBID: show.TMDBID, Season: 2, Episode: 1, AbsNumber: 3},
	}
	if err := f.store.ReplaceEpisodes(context.Background(), show.TMDBID, episodes); err != nil {
		t.Fatalf("episodes: %v", err)
	}
	f.stageRecord(t, "One Piece - 3.mkv")

	outcomes, err := f.r.RouteBacklog(context.Background(), false)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if len(outcomes) != 1 || !outcomes[0].Routed {
		t.Fatalf("absolute resolution failed: %+v", outcomes)
	}
	want := filepath.Join(f.cfg.Paths.TVDir, "One Piece", "Season 02", "One Piece - 3.mkv")
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("file not at destination: %v", err)
	}
}

func TestRouteUnknownShowRecordsError(t *testing.T) {
	f := newFixture(t)
	record := f.stageRecord(t, "Unknown.Show.S01E01.mkv")

	outcomes, err := f.r.RouteBacklog(context.Background(), false)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if len(outcomes) != 1 || outcomes[0].Routed || outcomes[0].Err == nil {
		t.Fatalf("expected routing failure: %+v", outcomes)
	}

	// File stays put.
	if _, err := os.Stat(record.CurrentPath); err != nil {
		t.Fatalf("file moved despite failure: %v", err)
	}

	stored, err := f.store.FindDownloadedFileByRemotePath(context.Background(), record.RemotePath)
	if err != nil {
		t.Fatalf("find record: %v", err)
	}
	if stored.Status != catalog.StatusError || stored.ErrorMessage == "" {
		t.Fatalf("failure not recorded: %+v", stored)
	}
	if stored.RoutingAttempts != 1 {
		t.Fatalf("attempts not incremented: %d", stored.RoutingAttempts)
	}
}

func TestRouteUnparseableNameFailsBeforeLookup(t *testing.T) {
	f := newFixture(t)
	record := f.stageRecord(t, "[DeadFileGuard].mkv")

	outcomes, err := f.r.RouteBacklog(context.Background(), false)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if len(outcomes) != 1 || outcomes[0].Err == nil {
		t.Fatalf("expected routing failure: %+v", outcomes)
	}
	if outcomes[0].Reason != "unrecognized filename" {
		t.Fatalf("unexpected reason: %q", outcomes[0].Reason)
	}

	if _, err := os.Stat(record.CurrentPath); err != nil {
		t.Fatalf("file moved despite failure: %v", err)
	}
	stored, err := f.store.FindDownloadedFileByRemotePath(context.Background(), record.RemotePath)
	if err != nil {
		t.Fatalf("find record: %v", err)
	}
	if stored.Status != catalog.StatusError || stored.ErrorMessage == "" {
		t.Fatalf("failure not recorded: %+v", stored)
	}
}

func TestRouteDryRunLeavesEverythingInPlace(t *testing.T) {
	f := newFixture(t)
	f.addShow(t, 1396, "Breaking Bad")
	record := f.stageRecord(t, "Breaking.Bad.S01E05.mkv")

	outcomes, err := f.r.RouteBacklog(context.Background(), true)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if len(outcomes) != 1 || !outcomes[0].Skipped {
		t.Fatalf("expected dry-run skip: %+v", outcomes)
	}
	if outcomes[0].To == "" {
		t.Fatal("dry run should still report the planned destination")
	}
	if _, err := os.Stat(record.CurrentPath); err != nil {
		t.Fatalf("dry run moved the file: %v", err)
	}

	stored, err := f.store.FindDownloadedFileByRemotePath(context.Background(), record.RemotePath)
	if err != nil {
		t.Fatalf("find record: %v", err)
	}
	if stored.Status != catalog.StatusDownloaded {
		t.Fatalf("dry run changed status: %s", stored.Status)
	}
}

func TestRouteRecordDirectoryFansOut(t *testing.T) {
	f := newFixture(t)
	f.addShow(t, 1396, "Breaking Bad")

	dir := filepath.Join(f.cfg.Paths.IncomingDir, "Breaking.Bad.S01.1080p")
	f.stageFile(t, filepath.Join("Breaking.Bad.S01.1080p", "Breaking.Bad.S01E01.mkv"))
	f.stageFile(t, filepath.Join("Breaking.Bad.S01.1080p", "Breaking.Bad.S01E02.mkv"))

	record, err := f.store.UpsertDownloadedFile(context.Background(), &catalog.DownloadedFile{
		Name:        "Breaking.Bad.S01.1080p",
		RemotePath:  "/remote/Breaking.Bad.S01.1080p",
		CurrentPath: dir,
		IsDir:       true,
		Status:      catalog.StatusDownloaded,
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	outcomes := f.r.RouteRecord(context.Background(), record, false)
	routed := 0
	for _, outcome := range outcomes {
		if outcome.Routed {
			routed++
		}
		if outcome.Err != nil {
			t.Fatalf("unexpected error: %+v", outcome)
		}
	}
	if routed != 2 {
		t.Fatalf("expected 2 routed files, got %d", routed)
	}

	stored, err := f.store.FindDownloadedFileByRemotePath(context.Background(), record.RemotePath)
	if err != nil {
		t.Fatalf("find record: %v", err)
	}
	if stored.Status != catalog.StatusRouted {
		t.Fatalf("directory record not marked routed: %s", stored.Status)
	}
}

func TestRouteIncomingMovesUntrackedFiles(t *testing.T) {
	f := newFixture(t)
	f.addShow(t, 1396, "Breaking Bad")
	f.stageFile(t, "Breaking.Bad.S02E01.mkv")

	outcomes, err := f.r.RouteIncoming(context.Background(), false)
	if err != nil {
		t.Fatalf("route incoming: %v", err)
	}
	if len(outcomes) != 1 || !outcomes[0].Routed {
		t.Fatalf("unexpected outcomes: %+v", outcomes)
	}
	want := filepath.Join(f.cfg.Paths.TVDir, "Breaking Bad", "Season 02", "Breaking.Bad.S02E01.mkv")
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("file not at destination: %v", err)
	}
}
