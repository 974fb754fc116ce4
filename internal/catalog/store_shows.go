package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// AddShow inserts a tracked show. The TMDB id must be unique.
func (s *Store) AddShow(ctx context.Context, show *Show) (*Show, error) {
	if show == nil {
		return nil, errors.New("show is nil")
	}
	if show.SysName == "" || show.SysPath == "" {
		return nil, errors.New("show requires sys_name and sys_path")
	}

	now := time.Now().UTC()
	result, err := s.execWithRetry(
		ctx,
		`INSERT INTO tv_shows (tmdb_id, sys_name, sys_path, aliases, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		show.TMDBID,
		show.SysName,
		show.SysPath,
		joinAliases(show.Aliases),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert show: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("show insert id: %w", err)
	}

	stored := *show
	stored.ID = id
	stored.CreatedAt = now
	return &stored, nil
}

// ShowExists reports whether a show with the given TMDB id is tracked.
func (s *Store) ShowExists(ctx context.Context, tmdbID int64) (bool, error) {
	var count int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM tv_shows WHERE tmdb_id = ?`,
		tmdbID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check show: %w", err)
	}
	return count > 0, nil
}

// FindShowByNameOrAlias matches a parsed show name against sys_name and the
// alias list, case-insensitively. A miss is (nil, nil).
func (s *Store) FindShowByNameOrAlias(ctx context.Context, name string) (*Show, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil, nil
	}

	show, err := s.findShowWhere(ctx, `LOWER(sys_name) = ?`, needle)
	if err != nil || show != nil {
		return show, err
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, tmdb_id, sys_name, sys_path, aliases, created_at FROM tv_shows WHERE aliases IS NOT NULL`,
	)
	if err != nil {
		return nil, fmt.Errorf("scan aliases: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		candidate, err := scanShow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan show: %w", err)
		}
		for _, alias := range candidate.Aliases {
			if strings.ToLower(strings.TrimSpace(alias)) == needle {
				return candidate, nil
			}
		}
	}
	return nil, rows.Err()
}

// FindShowByTMDBID fetches a show by its TMDB id. A miss is (nil, nil).
func (s *Store) FindShowByTMDBID(ctx context.Context, tmdbID int64) (*Show, error) {
	return s.findShowWhere(ctx, `tmdb_id = ?`, tmdbID)
}

// ListShows returns all tracked shows ordered by name.
func (s *Store) ListShows(ctx context.Context) ([]*Show, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, tmdb_id, sys_name, sys_path, aliases, created_at FROM tv_shows ORDER BY sys_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list shows: %w", err)
	}
	defer rows.Close()

	var shows []*Show
	for rows.Next() {
		show, err := scanShow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan show: %w", err)
		}
		shows = append(shows, show)
	}
	return shows, rows.Err()
}

func (s *Store) findShowWhere(ctx context.Context, where string, arg any) (*Show, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, tmdb_id, sys_name, sys_path, aliases, created_at FROM tv_shows WHERE `+where,
		arg,
	)
	show, err := scanShow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find show: %w", err)
	}
	return show, nil
}

func scanShow(scanner interface{ Scan(dest ...any) error }) (*Show, error) {
	var (
		id         int64
		tmdbID     int64
		sysName    string
		sysPath    string
		aliasesRaw sql.NullString
		createdRaw sql.NullString
	)
	if err := scanner.Scan(&id, &tmdbID, &sysName, &sysPath, &aliasesRaw, &createdRaw); err != nil {
		return nil, err
	}
	return &Show{
		ID:        id,
		TMDBID:    tmdbID,
		SysName:   sysName,
		SysPath:   sysPath,
		Aliases:   splitAliases(aliasesRaw.String),
		CreatedAt: parseTime(createdRaw),
	}, nil
}

func joinAliases(aliases []string) any {
	var kept []string
	for _, alias := range aliases {
		alias = strings.TrimSpace(alias)
		if alias != "" {
			kept = append(kept, alias)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return strings.Join(kept, ",")
}

func splitAliases(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var aliases []string
	for _, piece := range strings.Split(raw, ",") {
		piece = strings.TrimSpace(piece)
		if piece != "" {
			aliases = append(aliases, piece)
		}
	}
	return aliases
}
