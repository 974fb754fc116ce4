package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shuttle/internal/config"
)

func newOllamaServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(config.LLM{
		Provider: "ollama",
		BaseURL:  server.URL,
		Model:    "test-model",
	}, WithSleeper(func(time.Duration) {}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return server, client
}

func TestParseFilenameOllama(t *testing.T) {
	var gotRequest ollamaGenerateRequest
	_, client := newOllamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(ollamaGenerateResponse{
			Response: `{"show_name":"Breaking Bad","season":1,"episode":5,"crc32":"CBF43926","confidence":0.95,"reasoning":"clear marker"}`,
		})
	})

	result, err := client.ParseFilename(context.Background(), "Breaking.Bad.S01E05.[CBF43926].mkv")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if gotRequest.Format != "json" || gotRequest.Stream {
		t.Fatalf("request not forced to non-streaming json: %+v", gotRequest)
	}
	if result.ShowName != "Breaking Bad" {
		t.Fatalf("show name: %q", result.ShowName)
	}
	if result.Season == nil || *result.Season != 1 || result.Episode == nil || *result.Episode != 5 {
		t.Fatalf("season/episode: %+v", result)
	}
	if result.CRC32 != "CBF43926" || result.Confidence != 0.95 {
		t.Fatalf("crc/confidence: %+v", result)
	}
}

func TestParseFilenameClampsConfidence(t *testing.T) {
	_, client := newOllamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaGenerateResponse{
			Response: `{"show_name":"Show","confidence":3.5}`,
		})
	})
	result, err := client.ParseFilename(context.Background(), "show.mkv")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if result.Confidence != 1 {
		t.Fatalf("confidence not clamped: %v", result.Confidence)
	}
}

func TestParseFilenameToleratesMarkdownFences(t *testing.T) {
	_, client := newOllamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaGenerateResponse{
			Response: "```json\n{\"show_name\":\"Show\",\"confidence\":0.8}\n```",
		})
	})
	result, err := client.ParseFilename(context.Background(), "show.mkv")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if result.ShowName != "Show" {
		t.Fatalf("show name: %q", result.ShowName)
	}
}

func TestParseFilenameRetriesServerErrors(t *testing.T) {
	calls := 0
	_, client := newOllamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "overloaded", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(ollamaGenerateResponse{
			Response: `{"show_name":"Show","confidence":0.9}`,
		})
	})

	if _, err := client.ParseFilename(context.Background(), "show.mkv"); err != nil {
		t.Fatalf("parse should recover after retries: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestParseFilenameDoesNotRetryClientErrors(t *testing.T) {
	calls := 0
	_, client := newOllamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "bad model", http.StatusBadRequest)
	})

	if _, err := client.ParseFilename(context.Background(), "show.mkv"); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("client errors should not be retried, got %d attempts", calls)
	}
}

func TestSuggestShortFilename(t *testing.T) {
	_, client := newOllamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaGenerateResponse{
			Response: `{"short_name":"Show S01E05.mkv"}`,
		})
	})
	got, err := client.SuggestShortFilename(context.Background(), "Show.Very.Long.Name.S01E05.1080p.mkv", 20)
	if err != nil {
		t.Fatalf("shorten: %v", err)
	}
	if got != "Show S01E05.mkv" {
		t.Fatalf("suggestion: %q", got)
	}
}

func TestSuggestShortFilenameRejectsOverLongSuggestion(t *testing.T) {
	_, client := newOllamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaGenerateResponse{
			Response: `{"short_name":"Still A Really Long Suggestion That Does Not Fit.mkv"}`,
		})
	})
	if _, err := client.SuggestShortFilename(context.Background(), "name.mkv", 10); err == nil {
		t.Fatal("expected error for over-long suggestion")
	}
}

func TestOpenAIBackend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("missing auth header, got %q", got)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"show_name\":\"Show\",\"confidence\":0.9}"}}]}`))
	}))
	t.Cleanup(server.Close)

	client, err := New(config.LLM{
		Provider: "openai",
		BaseURL:  server.URL,
		Model:    "gpt-test",
		APIKey:   "secret",
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	result, err := client.ParseFilename(context.Background(), "show.mkv")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if result.ShowName != "Show" {
		t.Fatalf("show name: %q", result.ShowName)
	}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	if _, err := New(config.LLM{Provider: "mystery"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	if _, err := New(config.LLM{Provider: "openai"}); err == nil {
		t.Fatal("expected error for missing api key")
	}
}
