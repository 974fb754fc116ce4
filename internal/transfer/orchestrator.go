package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"shuttle/internal/catalog"
	"shuttle/internal/config"
	"shuttle/internal/hashing"
	"shuttle/internal/logging"
	"shuttle/internal/remote"
	"shuttle/internal/services"
	"shuttle/internal/shorten"
)

// Outcome is the result of processing one diffed entry.
type Outcome struct {
	Entry     remote.Entry
	LocalPath string
	Skipped   bool
	SkipNote  string
	Err       error
}

// Summary aggregates one sync pass.
type Summary struct {
	Scanned    int
	New        int
	Downloaded int
	Skipped    int
	Failed     int
	DryRun     bool
	Outcomes   []Outcome
}

// Orchestrator runs the diff-and-download pass: snapshot the remote,
// diff against the catalog, then pull every new entry through a bounded
// worker pool.
type Orchestrator struct {
	cfg     *config.Config
	store   *catalog.Store
	factory remote.Factory
	namer   shorten.Namer
	logger  *slog.Logger
}

// New builds an orchestrator. A nil namer falls back to deterministic
// truncation for over-length paths.
func New(cfg *config.Config, store *catalog.Store, factory remote.Factory, namer shorten.Namer, logger *slog.Logger) *Orchestrator {
	if namer == nil {
		namer = shorten.Deterministic{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		cfg:     cfg,
		store:   store,
		factory: factory,
		namer:   namer,
		logger:  logger.With(logging.String(logging.FieldComponent, "transfer")),
	}
}

// SyncFromRemote performs one full sync pass over every configured remote
// root. Missing remote configuration is fatal, not a soft skip.
func (o *Orchestrator) SyncFromRemote(ctx context.Context, dryRun bool) (*Summary, error) {
	if err := o.cfg.ValidateRemote(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "transfer", "sync", "remote configuration incomplete", err)
	}
	dryRun = dryRun || o.cfg.Routing.DryRun

	summary := &Summary{DryRun: dryRun}
	for _, root := range o.cfg.SFTP.RemotePaths {
		if err := o.syncRoot(ctx, root, dryRun, summary); err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			// One unreachable root must not stop the pass for the rest.
			o.logger.Error("remote root failed",
				logging.String("remote_path", root), logging.Error(err))
			summary.Failed++
			summary.Outcomes = append(summary.Outcomes, Outcome{
				Entry: remote.Entry{Name: path.Base(root), Path: root, IsDir: true},
				Err:   err,
			})
		}
	}

	o.logger.Info("sync pass complete",
		logging.Int("scanned", summary.Scanned),
		logging.Int("new", summary.New),
		logging.Int("downloaded", summary.Downloaded),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed),
		logging.Bool("dry_run", dryRun))
	return summary, nil
}

func (o *Orchestrator) syncRoot(ctx context.Context, root string, dryRun bool, summary *Summary) error {
	ctx = services.WithRemotePath(ctx, root)
	logger := logging.WithContext(ctx, o.logger)

	client := o.factory()
	if err := client.Connect(ctx); err != nil {
		return err
	}
	defer client.Disconnect()

	var entries []remote.Entry
	err := remote.WithRetry(ctx, remote.PolicyFromConfig(o.cfg), client, func() error {
		var listErr error
		entries, listErr = client.ListDir(ctx, root)
		return listErr
	})
	if err != nil {
		return err
	}
	summary.Scanned += len(entries)

	if err := o.store.ReplaceSnapshot(ctx, entries); err != nil {
		return err
	}
	diff, err := o.store.DiffSnapshotAgainstDownloaded(ctx)
	if err != nil {
		return err
	}
	summary.New += len(diff)
	logger.Info("remote scan",
		logging.Int("entries", len(entries)),
		logging.Int("new", len(diff)))

	if len(diff) == 0 {
		return nil
	}
	if dryRun {
		for _, entry := range diff {
			summary.Outcomes = append(summary.Outcomes, Outcome{
				Entry:    entry,
				Skipped:  true,
				SkipNote: "dry run",
			})
			summary.Skipped++
		}
		return nil
	}

	outcomes := o.downloadAll(ctx, diff)
	for _, outcome := range outcomes {
		summary.Outcomes = append(summary.Outcomes, outcome)
		switch {
		case outcome.Err != nil:
			summary.Failed++
		case outcome.Skipped:
			summary.Skipped++
		default:
			summary.Downloaded++
		}
	}
	return nil
}

// downloadAll fans the diffed entries out over the worker pool. Each task
// opens its own session; SFTP sessions are not safe to share.
func (o *Orchestrator) downloadAll(ctx context.Context, entries []remote.Entry) []Outcome {
	workers := o.cfg.Transfers.MaxWorkers
	if workers < 1 {
		workers = 1
	}
	policy := remote.PolicyFromConfig(o.cfg)

	outcomes := make([]Outcome, len(entries))
	var mu sync.Mutex

	workerPool := pool.New().WithMaxGoroutines(workers)
	for i, entry := range entries {
		i, entry := i, entry
		workerPool.Go(func() {
			outcome := o.processEntry(ctx, entry, policy)
			mu.Lock()
			outcomes[i] = outcome
			mu.Unlock()
		})
	}
	workerPool.Wait()
	return outcomes
}

func (o *Orchestrator) processEntry(ctx context.Context, entry remote.Entry, policy remote.RetryPolicy) Outcome {
	logger := logging.WithContext(ctx, o.logger).With(logging.String("name", entry.Name))

	p, err := planLocalPath(ctx, o.namer, o.cfg.Paths.IncomingDir, entry, o.cfg.Transfers.MaxPathLength)
	if err != nil {
		logger.Warn("skipping entry", logging.Error(err))
		o.recordError(ctx, entry, "", err)
		return Outcome{Entry: entry, Skipped: true, SkipNote: err.Error()}
	}

	client := o.factory()
	if err := client.Connect(ctx); err != nil {
		o.recordError(ctx, entry, p.localPath, err)
		return Outcome{Entry: entry, LocalPath: p.localPath, Err: err}
	}
	defer client.Disconnect()

	if entry.IsDir {
		p, err = planDirContents(ctx, o.namer, client, policy, entry, p, o.cfg.Transfers.MaxPathLength)
		if err != nil {
			logger.Warn("skipping directory", logging.Error(err))
			o.recordError(ctx, entry, "", err)
			return Outcome{Entry: entry, Skipped: true, SkipNote: err.Error()}
		}
	}

	started := time.Now()
	err = remote.WithRetry(ctx, policy, client, func() error {
		if entry.IsDir {
			return client.GetDir(ctx, entry.Path, p.localPath, p.filenameMap)
		}
		return client.GetFile(ctx, entry.Path, p.localPath)
	})
	if err != nil {
		logger.Error("download failed", logging.Error(err))
		o.recordError(ctx, entry, p.localPath, err)
		return Outcome{Entry: entry, LocalPath: p.localPath, Err: err}
	}

	logger.Info("downloaded",
		logging.String("local", p.localPath),
		logging.Int64("bytes", entry.Size),
		logging.Duration("elapsed", time.Since(started)))

	record := o.buildRecord(ctx, entry, p)
	if _, storeErr := o.store.UpsertDownloadedFile(ctx, record); storeErr != nil {
		return Outcome{Entry: entry, LocalPath: p.localPath, Err: storeErr}
	}
	return Outcome{Entry: entry, LocalPath: p.localPath}
}

// buildRecord fills the catalog row for a completed download, including the
// optional local hash. Directories get a single row and no hash; their
// contents are routed later as a unit.
func (o *Orchestrator) buildRecord(ctx context.Context, entry remote.Entry, p plan) *catalog.DownloadedFile {
	record := &catalog.DownloadedFile{
		Name:         p.localName,
		RemotePath:   entry.Path,
		CurrentPath:  p.localPath,
		Size:         entry.Size,
		ModifiedTime: entry.ModifiedTime,
		FetchedAt:    entry.FetchedAt,
		IsDir:        entry.IsDir,
		Status:       catalog.StatusDownloaded,
	}

	algoName := o.cfg.Transfers.HashAlgorithm
	if entry.IsDir || algoName == "" {
		return record
	}

	algo, ok := hashing.ParseAlgorithm(algoName)
	if !ok {
		return record
	}
	value, err := hashing.HashFile(p.localPath, algo, hashing.DefaultChunkSize)
	if err != nil {
		logging.WithContext(ctx, o.logger).Warn("hashing failed",
			logging.String("local", p.localPath), logging.Error(err))
		return record
	}
	now := time.Now().UTC()
	record.HashValue = value
	record.HashAlgo = string(algo)
	record.HashCalculatedAt = &now
	return record
}

// recordError persists a failed or skipped entry so operators can see it in
// the catalog.
func (o *Orchestrator) recordError(ctx context.Context, entry remote.Entry, localPath string, cause error) {
	record := &catalog.DownloadedFile{
		Name:         entry.Name,
		RemotePath:   entry.Path,
		CurrentPath:  localPath,
		Size:         entry.Size,
		ModifiedTime: entry.ModifiedTime,
		FetchedAt:    entry.FetchedAt,
		IsDir:        entry.IsDir,
		Status:       catalog.StatusError,
		ErrorMessage: cause.Error(),
	}
	if _, err := o.store.UpsertDownloadedFile(ctx, record); err != nil {
		logging.WithContext(ctx, o.logger).Error("failed to record error state",
			logging.String("remote", entry.Path),
			logging.Error(fmt.Errorf("%v (original: %w)", err, cause)))
	}
}
