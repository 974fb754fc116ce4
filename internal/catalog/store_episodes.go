package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ReplaceEpisodes swaps the episode list for a show in one transaction.
// Refreshing metadata always rewrites the full list, so stale rows never
// linger after a show shrinks upstream.
func (s *Store) ReplaceEpisodes(ctx context.Context, tmdbID int64, episodes []Episode) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin episode transaction: %w", err)
		}
		defer tx.Rollback()

		if _, err := tx.ExecContext(ctx, `DELETE FROM episodes WHERE tmdb_id = ?`, tmdbID); err != nil {
			return fmt.Errorf("clear episodes: %w", err)
		}

		stmt, err := tx.PrepareContext(
			ctx,
			`INSERT INTO episodes (tmdb_id, season, episode, abs_number, title, air_date)
             VALUES (?, ?, ?, ?, ?, ?)`,
		)
		if err != nil {
			return fmt.Errorf("prepare episode insert: %w", err)
		}
		defer stmt.Close()

		for _, episode := range episodes {
			if _, err := stmt.ExecContext(
				ctx,
				tmdbID,
				episode.Season,
				episode.Episode,
				episode.AbsNumber,
				nullableString(episode.Title),
				nullableString(episode.AirDate),
			); err != nil {
				return fmt.Errorf("insert episode S%02dE%02d: %w", episode.Season, episode.Episode, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit episodes: %w", err)
		}
		return nil
	})
}

// FindEpisodeByAbsoluteNumber resolves an absolute episode number to its
// season/episode pair for a show. A miss is (nil, nil).
func (s *Store) FindEpisodeByAbsoluteNumber(ctx context.Context, tmdbID int64, absNumber int) (*EpisodeRef, error) {
	var ref EpisodeRef
	err := s.db.QueryRowContext(
		ctx,
		`SELECT season, episode FROM episodes WHERE tmdb_id = ? AND abs_number = ?`,
		tmdbID,
		absNumber,
	).Scan(&ref.Season, &ref.Episode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find episode by absolute number: %w", err)
	}
	return &ref, nil
}

// EpisodeCount returns how many episodes are cataloged for a show.
func (s *Store) EpisodeCount(ctx context.Context, tmdbID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM episodes WHERE tmdb_id = ?`,
		tmdbID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count episodes: %w", err)
	}
	return count, nil
}
