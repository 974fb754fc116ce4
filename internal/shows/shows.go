// Package shows bootstraps tracked shows: TMDB lookup, library directory
// creation, and episode catalog ingestion with computed absolute numbers.
package shows

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"shuttle/internal/catalog"
	"shuttle/internal/config"
	"shuttle/internal/logging"
	"shuttle/internal/services"
	"shuttle/internal/services/tmdb"
	"shuttle/internal/textutil"
)

// Manager adds shows to the catalog and keeps their episode lists fresh.
type Manager struct {
	cfg      *config.Config
	store    *catalog.Store
	searcher tmdb.Searcher
	logger   *slog.Logger
}

// New builds a manager.
func New(cfg *config.Config, store *catalog.Store, searcher tmdb.Searcher, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		cfg:      cfg,
		store:    store,
		searcher: searcher,
		logger:   logger.With(logging.String(logging.FieldComponent, "shows")),
	}
}

// Add looks a show up on TMDB, creates its library directory, records it in
// the catalog, and ingests its episodes. Aliases become additional match
// names for the router.
func (m *Manager) Add(ctx context.Context, name string, aliases []string) (*catalog.Show, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, services.Wrap(services.ErrValidation, "shows", "add", "show name required", nil)
	}

	resp, err := m.searcher.SearchTV(ctx, name)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "shows", "add", "tmdb search failed", err)
	}
	match := bestMatch(resp, name)
	if match == nil {
		return nil, services.Wrap(services.ErrNotFound, "shows", "add", fmt.Sprintf("no TMDB match for %q", name), nil)
	}

	exists, err := m.store.ShowExists(ctx, match.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, services.Wrap(services.ErrValidation, "shows", "add",
			fmt.Sprintf("show %q (tmdb %d) is already tracked", match.Name, match.ID), nil)
	}

	sysName := displayName(match.Name)
	sysPath := filepath.Join(m.cfg.Paths.TVDir, textutil.SanitizeFileName(sysName))
	if err := os.MkdirAll(sysPath, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "shows", "add", "create show directory", err)
	}

	show, err := m.store.AddShow(ctx, &catalog.Show{
		TMDBID:  match.ID,
		SysName: sysName,
		SysPath: sysPath,
		Aliases: aliases,
	})
	if err != nil {
		return nil, err
	}

	count, err := m.RefreshEpisodes(ctx, show.TMDBID)
	if err != nil {
		// The show is tracked; a failed episode pull is recoverable with a
		// later refresh.
		m.logger.Warn("episode ingestion failed", logging.Int64("tmdb_id", show.TMDBID), logging.Error(err))
		return show, nil
	}

	m.logger.Info("show added",
		logging.String("name", show.SysName),
		logging.Int64("tmdb_id", show.TMDBID),
		logging.Int("episodes", count))
	return show, nil
}

// RefreshEpisodes re-ingests a show's full episode list from TMDB and
// recomputes absolute numbers. Season 0 (specials) is excluded from the
// absolute sequence.
func (m *Manager) RefreshEpisodes(ctx context.Context, tmdbID int64) (int, error) {
	details, err := m.searcher.GetTVDetails(ctx, tmdbID)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "shows", "refresh", "tmdb show details failed", err)
	}

	var episodes []catalog.Episode
	absNumber := 0
	for _, season := range details.Seasons {
		if season.SeasonNumber == 0 {
			continue
		}
		seasonDetails, err := m.searcher.GetSeasonDetails(ctx, tmdbID, season.SeasonNumber)
		if err != nil {
			return 0, services.Wrap(services.ErrExternalTool, "shows", "refresh",
				fmt.Sprintf("tmdb season %d failed", season.SeasonNumber), err)
		}
		for _, episode := range seasonDetails.Episodes {
			absNumber++
			episodes = append(episodes, catalog.Episode{
				TMDBID:    tmdbID,
				Season:    episode.SeasonNumber,
				Episode:   episode.EpisodeNumber,
				AbsNumber: absNumber,
				Title:     episode.Name,
				AirDate:   episode.AirDate,
			})
		}
	}

	if err := m.store.ReplaceEpisodes(ctx, tmdbID, episodes); err != nil {
		return 0, err
	}
	return len(episodes), nil
}

// bestMatch prefers an exact case-insensitive name match, then falls back
// to TMDB's ranking.
func bestMatch(resp *tmdb.Response, query string) *tmdb.Result {
	if resp == nil || len(resp.Results) == 0 {
		return nil
	}
	lowered := strings.ToLower(query)
	for i := range resp.Results {
		if strings.ToLower(resp.Results[i].Name) == lowered ||
			strings.ToLower(resp.Results[i].OriginalName) == lowered {
			return &resp.Results[i]
		}
	}
	return &resp.Results[0]
}

// displayName normalizes an all-caps or all-lowercase TMDB title for the
// library tree. Mixed-case titles pass through untouched.
func displayName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return trimmed
	}
	if trimmed == strings.ToUpper(trimmed) || trimmed == strings.ToLower(trimmed) {
		return cases.Title(language.Und).String(strings.ToLower(trimmed))
	}
	return trimmed
}
