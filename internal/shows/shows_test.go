package shows

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"shuttle/internal/catalog"
	"shuttle/internal/config"
	"shuttle/internal/services/tmdb"
)

type fakeSearcher struct {
	searchResp *tmdb.Response
	details    *tmdb.TVDetails
	seasons    map[int]*tmdb.SeasonDetails
	searchErr  error
}

func (f *fakeSearcher) SearchTV(ctx context.Context, query string) (*tmdb.Response, error) {
	return f.searchResp, f.searchErr
}

func (f *fakeSearcher) GetTVDetails(ctx context.Context, showID int64) (*tmdb.TVDetails, error) {
	if f.details == nil {
		return nil, errors.New("no details")
	}
	return f.details, nil
}

func (f *fakeSearcher) GetSeasonDetails(ctx context.Context, showID int64, seasonNumber int) (*tmdb.SeasonDetails, error) {
	season, ok := f.seasons[seasonNumber]
	if !ok {
		return nil, errors.New("no such season")
	}
	return season, nil
}

func newFixture(t *testing.T, searcher tmdb.Searcher) (*Manager, *catalog.Store, *config.Config) {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.TVDir = filepath.Join(base, "tv")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	store, err := catalog.OpenPath(filepath.Join(base, "catalog.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return New(&cfg, store, searcher, nil), store, &cfg
}

func breakingBadSearcher() *fakeSearcher {
	return &fakeSearcher{
		searchResp: &tmdb.Response{Results: []tmdb.Result{
			{ID: 62407, Name: "Breaking Bad Wannabe"},
			{ID: 1396, Name: "Breaking Bad", FirstAirDate: "2008-01-20"},
		}},
		details: &tmdb.TVDetails{
			ID:   1396,
			Name: "Breaking Bad",
			Seasons: []struct {
				SeasonNumber int `json:"season_number"`
				EpisodeCount int `json:"episode_count"`
			}{
				{SeasonNumber: 0, EpisodeCount: 3},
				{SeasonNumber: 1, EpisodeCount: 2},
				{SeasonNumber: 2, EpisodeCount: 2},
			},
		},
		seasons: map[int]*tmdb.SeasonDetails{
			1: {SeasonNumber: 1, Episodes: []tmdb.Episode{
				{SeasonNumber: 1, EpisodeNumber: 1, Name: "Pilot"},
				{SeasonNumber: 1, EpisodeNumber: 2, Name: "Cat's in the Bag..."},
			}},
			2: {SeasonNumber: 2, Episodes: []tmdb.Episode{
				{SeasonNumber: 2, EpisodeNumber: 1, Name: "Seven Thirty-Seven"},
				{SeasonNumber: 2, EpisodeNumber: 2, Name: "Grilled"},
			}},
		},
	}
}

func TestAddShowCreatesDirectoryAndEpisodes(t *testing.T) {
	manager, store, cfg := newFixture(t, breakingBadSearcher())

	show, err := manager.Add(context.Background(), "Breaking Bad", []string{"BrBa"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if show.TMDBID != 1396 {
		t.Fatalf("exact match not preferred: tmdb %d", show.TMDBID)
	}
	if show.SysPath != filepath.Join(cfg.Paths.TVDir, "Breaking Bad") {
		t.Fatalf("sys path: %q", show.SysPath)
	}
	if _, err := os.Stat(show.SysPath); err != nil {
		t.Fatalf("show directory not created: %v", err)
	}

	// Absolute numbers run across seasons, skipping specials.
	ref, err := store.FindEpisodeByAbsoluteNumber(context.Background(), 1396, 3)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if ref == nil || ref.Season != 2 || ref.Episode != 1 {
		t.Fatalf("absolute 3 resolved wrong: %+v", ref)
	}
	count, err := store.EpisodeCount(context.Background(), 1396)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4 episodes (specials excluded), got %d", count)
	}

	// Alias recorded for routing.
	byAlias, err := store.FindShowByNameOrAlias(context.Background(), "BrBa")
	if err != nil || byAlias == nil {
		t.Fatalf("alias lookup failed: %v %+v", err, byAlias)
	}
}

func TestAddShowRejectsDuplicate(t *testing.T) {
	manager, _, _ := newFixture(t, breakingBadSearcher())

	if _, err := manager.Add(context.Background(), "Breaking Bad", nil); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if _, err := manager.Add(context.Background(), "Breaking Bad", nil); err == nil {
		t.Fatal("expected error for duplicate show")
	}
}

func TestAddShowNoMatch(t *testing.T) {
	manager, _, _ := newFixture(t, &fakeSearcher{searchResp: &tmdb.Response{}})
	if _, err := manager.Add(context.Background(), "Nonexistent Show", nil); err == nil {
		t.Fatal("expected error when TMDB has no match")
	}
}

func TestAddShowSanitizesUnsafeNames(t *testing.T) {
	searcher := &fakeSearcher{
		searchResp: &tmdb.Response{Results: []tmdb.Result{{ID: 42, Name: "Alias: Reborn"}}},
		details:    &tmdb.TVDetails{ID: 42, Name: "Alias: Reborn"},
	}
	manager, _, cfg := newFixture(t, searcher)

	show, err := manager.Add(context.Background(), "Alias: Reborn", nil)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if show.SysPath != filepath.Join(cfg.Paths.TVDir, "Alias- Reborn") {
		t.Fatalf("unsafe characters not sanitized: %q", show.SysPath)
	}
}
