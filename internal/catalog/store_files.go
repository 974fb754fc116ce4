package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const fileColumns = "id, name, remote_path, current_path, previous_path, size, modified_time, fetched_at, is_dir, status, hash_value, hash_algo, hash_calculated_at, hash_tag, show_name, season, episode, confidence, reasoning, tmdb_id, routing_attempts, last_routing_attempt, error_message, created_at, updated_at"

// UpsertDownloadedFile inserts or updates a record keyed by remote_path and
// returns the stored row (with its id populated). This is the only write
// path for downloaded-file records.
func (s *Store) UpsertDownloadedFile(ctx context.Context, file *DownloadedFile) (*DownloadedFile, error) {
	if file == nil {
		return nil, errors.New("downloaded file is nil")
	}
	if file.RemotePath == "" {
		return nil, errors.New("downloaded file requires a remote path")
	}
	if file.Status == "" {
		file.Status = StatusPending
	}
	if _, ok := ParseStatus(string(file.Status)); !ok {
		return nil, fmt.Errorf("unknown status %q", file.Status)
	}

	now := time.Now().UTC()
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO downloaded_files (
            name, remote_path, current_path, previous_path, size, modified_time,
            fetched_at, is_dir, status, hash_value, hash_algo, hash_calculated_at,
            hash_tag, show_name, season, episode, confidence, reasoning, tmdb_id,
            routing_attempts, last_routing_attempt, error_message, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(remote_path) DO UPDATE SET
            name = excluded.name,
            current_path = excluded.current_path,
            previous_path = excluded.previous_path,
            size = excluded.size,
            modified_time = excluded.modified_time,
            fetched_at = excluded.fetched_at,
            is_dir = excluded.is_dir,
            status = excluded.status,
            hash_value = excluded.hash_value,
            hash_algo = excluded.hash_algo,
            hash_calculated_at = excluded.hash_calculated_at,
            hash_tag = excluded.hash_tag,
            show_name = excluded.show_name,
            season = excluded.season,
            episode = excluded.episode,
            confidence = excluded.confidence,
            reasoning = excluded.reasoning,
            tmdb_id = excluded.tmdb_id,
            routing_attempts = excluded.routing_attempts,
            last_routing_attempt = excluded.last_routing_attempt,
            error_message = excluded.error_message,
            updated_at = excluded.updated_at`,
		file.Name,
		file.RemotePath,
		nullableString(file.CurrentPath),
		nullableString(file.PreviousPath),
		file.Size,
		formatTime(file.ModifiedTime),
		formatTime(file.FetchedAt),
		boolToInt(file.IsDir),
		string(file.Status),
		nullableString(file.HashValue),
		nullableString(file.HashAlgo),
		nullableTime(file.HashCalculatedAt),
		nullableString(file.HashTag),
		nullableString(file.ShowName),
		nullableInt(file.Season),
		nullableInt(file.Episode),
		file.Confidence,
		nullableString(file.Reasoning),
		nullableInt64(file.TMDBID),
		file.RoutingAttempts,
		nullableTime(file.LastRoutingAt),
		nullableString(file.ErrorMessage),
		now.Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert downloaded file: %w", err)
	}

	return s.FindDownloadedFileByRemotePath(ctx, file.RemotePath)
}

// FindDownloadedFileByRemotePath fetches a record by its unique key.
// A missing record is (nil, nil), not an error.
func (s *Store) FindDownloadedFileByRemotePath(ctx context.Context, remotePath string) (*DownloadedFile, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+fileColumns+` FROM downloaded_files WHERE remote_path = ?`,
		remotePath,
	)
	file, err := scanDownloadedFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find downloaded file: %w", err)
	}
	return file, nil
}

// FindDownloadedFileByCurrentPath matches a record by where the file sits
// locally right now. A miss is (nil, nil).
func (s *Store) FindDownloadedFileByCurrentPath(ctx context.Context, currentPath string) (*DownloadedFile, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+fileColumns+` FROM downloaded_files WHERE current_path = ?`,
		currentPath,
	)
	file, err := scanDownloadedFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find downloaded file by path: %w", err)
	}
	return file, nil
}

// ListDownloadedFilesByStatus returns all records in the given lifecycle state.
func (s *Store) ListDownloadedFilesByStatus(ctx context.Context, status Status) ([]*DownloadedFile, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+fileColumns+` FROM downloaded_files WHERE status = ? ORDER BY id`,
		string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("list downloaded files: %w", err)
	}
	defer rows.Close()

	var files []*DownloadedFile
	for rows.Next() {
		file, err := scanDownloadedFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan downloaded file: %w", err)
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

// CountDownloadedFilesByStatus returns row counts grouped by lifecycle
// status. Statuses with no rows are absent from the map.
func (s *Store) CountDownloadedFilesByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT status, COUNT(*) FROM downloaded_files GROUP BY status`,
	)
	if err != nil {
		return nil, fmt.Errorf("count downloaded files: %w", err)
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var statusStr string
		var count int
		if err := rows.Scan(&statusStr, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[Status(statusStr)] = count
	}
	return counts, rows.Err()
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func scanDownloadedFile(scanner interface{ Scan(dest ...any) error }) (*DownloadedFile, error) {
	var (
		id              int64
		name            string
		remotePath      string
		currentPath     sql.NullString
		previousPath    sql.NullString
		size            int64
		modifiedRaw     sql.NullString
		fetchedRaw      sql.NullString
		isDir           int
		statusStr       string
		hashValue       sql.NullString
		hashAlgo        sql.NullString
		hashCalcRaw     sql.NullString
		hashTag         sql.NullString
		showName        sql.NullString
		season          sql.NullInt64
		episode         sql.NullInt64
		confidence      sql.NullFloat64
		reasoning       sql.NullString
		tmdbID          sql.NullInt64
		routingAttempts int
		lastRoutingRaw  sql.NullString
		errorMessage    sql.NullString
		createdRaw      sql.NullString
		updatedRaw      sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&name,
		&remotePath,
		&currentPath,
		&previousPath,
		&size,
		&modifiedRaw,
		&fetchedRaw,
		&isDir,
		&statusStr,
		&hashValue,
		&hashAlgo,
		&hashCalcRaw,
		&hashTag,
		&showName,
		&season,
		&episode,
		&confidence,
		&reasoning,
		&tmdbID,
		&routingAttempts,
		&lastRoutingRaw,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	return &DownloadedFile{
		ID:               id,
		Name:             name,
		RemotePath:       remotePath,
		CurrentPath:      currentPath.String,
		PreviousPath:     previousPath.String,
		Size:             size,
		ModifiedTime:     parseTime(modifiedRaw),
		FetchedAt:        parseTime(fetchedRaw),
		IsDir:            isDir != 0,
		Status:           Status(statusStr),
		HashValue:        hashValue.String,
		HashAlgo:         hashAlgo.String,
		HashCalculatedAt: parseTimePtr(hashCalcRaw),
		HashTag:          hashTag.String,
		ShowName:         showName.String,
		Season:           intPtr(season),
		Episode:          intPtr(episode),
		Confidence:       confidence.Float64,
		Reasoning:        reasoning.String,
		TMDBID:           int64Ptr(tmdbID),
		RoutingAttempts:  routingAttempts,
		LastRoutingAt:    parseTimePtr(lastRoutingRaw),
		ErrorMessage:     errorMessage.String,
		CreatedAt:        parseTime(createdRaw),
		UpdatedAt:        parseTime(updatedRaw),
	}, nil
}
