package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := New("test-key", server.URL, "en-US")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestSearchTV(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/tv" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("query") != "Breaking Bad" {
			t.Errorf("query param: %q", query.Get("query"))
		}
		if query.Get("api_key") != "test-key" || query.Get("language") != "en-US" {
			t.Errorf("auth params missing: %v", query)
		}
		_, _ = w.Write([]byte(`{"page":1,"results":[{"id":1396,"name":"Breaking Bad","first_air_date":"2008-01-20"}],"total_results":1}`))
	})

	resp, err := client.SearchTV(context.Background(), "Breaking Bad")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != 1396 {
		t.Fatalf("unexpected results: %+v", resp.Results)
	}
}

func TestSearchTVRejectsEmptyQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	if _, err := client.SearchTV(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestGetSeasonDetails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tv/1396/season/2" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"season_number":2,"episodes":[{"season_number":2,"episode_number":1,"name":"Seven Thirty-Seven"}]}`))
	})

	season, err := client.GetSeasonDetails(context.Background(), 1396, 2)
	if err != nil {
		t.Fatalf("season details: %v", err)
	}
	if len(season.Episodes) != 1 || season.Episodes[0].EpisodeNumber != 1 {
		t.Fatalf("unexpected episodes: %+v", season.Episodes)
	}
}

func TestGetTVDetailsErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status_message":"not found"}`, http.StatusNotFound)
	})
	if _, err := client.GetTVDetails(context.Background(), 999999); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := New("", "https://api.themoviedb.org/3", ""); err == nil {
		t.Fatal("expected error for missing api key")
	}
}
