package router

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"shuttle/internal/catalog"
	"shuttle/internal/config"
	"shuttle/internal/fileutil"
	"shuttle/internal/logging"
	"shuttle/internal/parser"
	"shuttle/internal/remote"
)

// Outcome describes what happened to one routed file.
type Outcome struct {
	Name     string
	From     string
	To       string
	ShowName string
	Routed   bool
	Skipped  bool
	Reason   string
	Err      error
}

// Router moves downloaded files into the show library. Each file is parsed,
// matched against the tracked shows, resolved to a season/episode pair, and
// moved to "<show>/Season NN/<original filename>".
type Router struct {
	cfg      *config.Config
	store    *catalog.Store
	provider parser.Provider
	logger   *slog.Logger
}

// New builds a router. provider may be nil; parsing then relies on the
// pattern rules alone.
func New(cfg *config.Config, store *catalog.Store, provider parser.Provider, logger *slog.Logger) *Router {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Router{
		cfg:      cfg,
		store:    store,
		provider: provider,
		logger:   logger.With(logging.String(logging.FieldComponent, "router")),
	}
}

// RouteBacklog routes every catalog record still in the downloaded state.
// Directory records are routed file by file; the record flips to routed
// only when every media file inside made it into the library.
func (r *Router) RouteBacklog(ctx context.Context, dryRun bool) ([]Outcome, error) {
	records, err := r.store.ListDownloadedFilesByStatus(ctx, catalog.StatusDownloaded)
	if err != nil {
		return nil, err
	}

	var outcomes []Outcome
	for _, record := range records {
		outcomes = append(outcomes, r.RouteRecord(ctx, record, dryRun)...)
	}
	return outcomes, nil
}

// RouteIncoming walks the incoming directory and routes every media file it
// finds, tracked or not. Files with a catalog record get their record
// updated; stray files are still moved.
func (r *Router) RouteIncoming(ctx context.Context, dryRun bool) ([]Outcome, error) {
	var outcomes []Outcome
	root := r.cfg.Paths.IncomingDir
	err := filepath.WalkDir(root, func(path string, entry os.DirEntry, walkErr error) error {
		if walkErr != nil {
			if os.IsNotExist(walkErr) && path == root {
				return filepath.SkipAll
			}
			return walkErr
		}
		if entry.IsDir() || !remote.IsValidMediaFile(entry.Name()) {
			return nil
		}

		record, findErr := r.store.FindDownloadedFileByCurrentPath(ctx, path)
		if findErr != nil {
			return findErr
		}
		outcomes = append(outcomes, r.routeOne(ctx, path, record, dryRun))
		return nil
	})
	if err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

// RouteRecord routes one catalog record. Directory records fan out over the
// media files inside their downloaded tree.
func (r *Router) RouteRecord(ctx context.Context, record *catalog.DownloadedFile, dryRun bool) []Outcome {
	if !record.IsDir {
		return []Outcome{r.routeOne(ctx, record.CurrentPath, record, dryRun)}
	}

	var outcomes []Outcome
	allRouted := true
	walkErr := filepath.WalkDir(record.CurrentPath, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !remote.IsValidMediaFile(entry.Name()) {
			return nil
		}
		outcome := r.routeOne(ctx, path, nil, dryRun)
		outcomes = append(outcomes, outcome)
		if !outcome.Routed {
			allRouted = false
		}
		return nil
	})

	record.RoutingAttempts++
	now := time.Now().UTC()
	record.LastRoutingAt = &now
	switch {
	case walkErr != nil:
		record.Status = catalog.StatusError
		record.ErrorMessage = walkErr.Error()
		outcomes = append(outcomes, Outcome{Name: record.Name, From: record.CurrentPath, Err: walkErr})
	case dryRun:
		// leave the record untouched beyond the attempt counter
	case allRouted && len(outcomes) > 0:
		record.PreviousPath = record.CurrentPath
		record.Status = catalog.StatusRouted
		record.ErrorMessage = ""
	}
	if !dryRun || walkErr != nil {
		if _, err := r.store.UpsertDownloadedFile(ctx, record); err != nil {
			outcomes = append(outcomes, Outcome{Name: record.Name, Err: err})
		}
	}
	return outcomes
}

// routeOne is the per-file state machine. record may be nil for files with
// no catalog backing; the move still happens, only the bookkeeping differs.
func (r *Router) routeOne(ctx context.Context, path string, record *catalog.DownloadedFile, dryRun bool) Outcome {
	name := filepath.Base(path)
	logger := logging.WithContext(ctx, r.logger).With(logging.String("name", name))

	var provider parser.Provider
	threshold := r.cfg.LLM.ConfidenceThreshold
	if r.cfg.LLM.Enabled {
		provider = r.provider
	}
	parsed := parser.Parse(ctx, name, provider, threshold)

	outcome := Outcome{Name: name, From: path, ShowName: parsed.ShowName}

	applyParse := func() {
		if record == nil {
			return
		}
		record.ShowName = parsed.ShowName
		record.Season = parsed.Season
		record.Episode = parsed.Episode
		record.Confidence = parsed.Confidence
		record.Reasoning = parsed.Reasoning
		if parsed.HashTag != "" {
			record.HashTag = parsed.HashTag
		}
	}

	fail := func(reason string, err error) Outcome {
		applyParse()
		outcome.Err = err
		outcome.Reason = reason
		logger.Warn("routing failed", logging.String("reason", reason), logging.Error(err))
		r.recordAttempt(ctx, record, "", err)
		return outcome
	}

	if parsed.ShowName == "" {
		return fail("unrecognized filename", fmt.Errorf("no show name parsed from %q", name))
	}

	show, err := r.store.FindShowByNameOrAlias(ctx, parsed.ShowName)
	if err != nil {
		return fail("catalog lookup", err)
	}
	if show == nil {
		return fail("show not tracked", fmt.Errorf("no tracked show matches %q", parsed.ShowName))
	}

	season, episode, err := r.resolveEpisode(ctx, show, parsed)
	if err != nil {
		return fail("episode resolution", err)
	}

	dest := filepath.Join(show.SysPath, fmt.Sprintf("Season %02d", season), name)
	outcome.To = dest

	if dryRun {
		outcome.Skipped = true
		outcome.Reason = "dry run"
		logger.Info("would route", logging.String("dest", dest))
		return outcome
	}

	if err := fileutil.MoveFile(path, dest); err != nil {
		return fail("move", err)
	}

	logger.Info("routed",
		logging.String("show", show.SysName),
		logging.Int("season", season),
		logging.Int("episode", episode),
		logging.String("dest", dest))

	outcome.Routed = true
	if record != nil {
		applyParse()
		record.PreviousPath = record.CurrentPath
		record.CurrentPath = dest
		record.Status = catalog.StatusRouted
		record.Season = &season
		record.Episode = &episode
		record.TMDBID = &show.TMDBID
		record.ErrorMessage = ""
		record.RoutingAttempts++
		now := time.Now().UTC()
		record.LastRoutingAt = &now
		if _, err := r.store.UpsertDownloadedFile(ctx, record); err != nil {
			outcome.Err = err
		}
	}
	return outcome
}

// resolveEpisode turns the parsed numbers into a concrete season/episode.
// A bare episode number is treated as an absolute number and resolved
// against the show's episode catalog.
func (r *Router) resolveEpisode(ctx context.Context, show *catalog.Show, parsed parser.Result) (int, int, error) {
	if parsed.Episode == nil {
		return 0, 0, fmt.Errorf("no episode number parsed from filename")
	}
	if parsed.Season != nil {
		return *parsed.Season, *parsed.Episode, nil
	}

	ref, err := r.store.FindEpisodeByAbsoluteNumber(ctx, show.TMDBID, *parsed.Episode)
	if err != nil {
		return 0, 0, err
	}
	if ref == nil {
		return 0, 0, fmt.Errorf("absolute episode %d not in catalog for %q", *parsed.Episode, show.SysName)
	}
	return ref.Season, ref.Episode, nil
}

// recordAttempt persists a failed routing attempt when the file has a
// catalog record.
func (r *Router) recordAttempt(ctx context.Context, record *catalog.DownloadedFile, dest string, cause error) {
	if record == nil {
		return
	}
	record.RoutingAttempts++
	now := time.Now().UTC()
	record.LastRoutingAt = &now
	record.Status = catalog.StatusError
	record.ErrorMessage = cause.Error()
	if dest != "" {
		record.CurrentPath = dest
	}
	if _, err := r.store.UpsertDownloadedFile(ctx, record); err != nil {
		r.logger.Error("failed to record routing attempt",
			logging.String("remote", record.RemotePath), logging.Error(err))
	}
}
