package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"shuttle/internal/remote"
)

// ReplaceSnapshot clears the snapshot table and inserts the given listing in
// one transaction. The snapshot always reflects exactly the most recent scan.
func (s *Store) ReplaceSnapshot(ctx context.Context, entries []remote.Entry) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin snapshot transaction: %w", err)
		}
		defer tx.Rollback()

		if _, err := tx.ExecContext(ctx, `DELETE FROM remote_snapshot`); err != nil {
			return fmt.Errorf("clear snapshot: %w", err)
		}

		stmt, err := tx.PrepareContext(
			ctx,
			`INSERT INTO remote_snapshot (remote_path, name, size, modified_time, is_dir, fetched_at)
             VALUES (?, ?, ?, ?, ?, ?)`,
		)
		if err != nil {
			return fmt.Errorf("prepare snapshot insert: %w", err)
		}
		defer stmt.Close()

		for _, entry := range entries {
			if _, err := stmt.ExecContext(
				ctx,
				entry.Path,
				entry.Name,
				entry.Size,
				formatTime(entry.ModifiedTime),
				boolToInt(entry.IsDir),
				formatTime(entry.FetchedAt),
			); err != nil {
				return fmt.Errorf("insert snapshot row %q: %w", entry.Path, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit snapshot: %w", err)
		}
		return nil
	})
}

// DiffSnapshotAgainstDownloaded returns the snapshot entries with no
// downloaded-file record, i.e. everything new since the last sync.
func (s *Store) DiffSnapshotAgainstDownloaded(ctx context.Context) ([]remote.Entry, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT s.remote_path, s.name, s.size, s.modified_time, s.is_dir, s.fetched_at
         FROM remote_snapshot s
         LEFT JOIN downloaded_files d ON d.remote_path = s.remote_path
         WHERE d.id IS NULL
         ORDER BY s.remote_path`,
	)
	if err != nil {
		return nil, fmt.Errorf("diff snapshot: %w", err)
	}
	defer rows.Close()

	var entries []remote.Entry
	for rows.Next() {
		entry, err := scanSnapshotEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// BootstrapDownloadedFromSnapshot marks every current snapshot entry as
// already downloaded without transferring anything. Used when pointing the
// tool at a remote whose contents are already present locally.
func (s *Store) BootstrapDownloadedFromSnapshot(ctx context.Context) (int, error) {
	entries, err := s.snapshotEntries(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, entry := range entries {
		record := &DownloadedFile{
			Name:         entry.Name,
			RemotePath:   entry.Path,
			Size:         entry.Size,
			ModifiedTime: entry.ModifiedTime,
			FetchedAt:    entry.FetchedAt,
			IsDir:        entry.IsDir,
			Status:       StatusDownloaded,
		}
		if _, err := s.UpsertDownloadedFile(ctx, record); err != nil {
			return count, fmt.Errorf("bootstrap %q: %w", entry.Path, err)
		}
		count++
	}
	return count, nil
}

func (s *Store) snapshotEntries(ctx context.Context) ([]remote.Entry, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT remote_path, name, size, modified_time, is_dir, fetched_at
         FROM remote_snapshot ORDER BY remote_path`,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshot: %w", err)
	}
	defer rows.Close()

	var entries []remote.Entry
	for rows.Next() {
		entry, err := scanSnapshotEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanSnapshotEntry(scanner interface{ Scan(dest ...any) error }) (remote.Entry, error) {
	var (
		path        string
		name        string
		size        int64
		modifiedRaw sql.NullString
		isDir       int
		fetchedRaw  sql.NullString
	)
	if err := scanner.Scan(&path, &name, &size, &modifiedRaw, &isDir, &fetchedRaw); err != nil {
		return remote.Entry{}, err
	}
	return remote.Entry{
		Name:         name,
		Path:         path,
		Size:         size,
		ModifiedTime: parseTime(modifiedRaw),
		IsDir:        isDir != 0,
		FetchedAt:    parseTime(fetchedRaw),
	}, nil
}
