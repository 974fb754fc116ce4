package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"shuttle/internal/config"
)

// ollamaBackend speaks the Ollama generate API with format=json so the
// model is forced into structured output.
type ollamaBackend struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

func newOllamaBackend(cfg config.LLM, httpClient *http.Client) *ollamaBackend {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &ollamaBackend{
		baseURL:    baseURL,
		model:      strings.TrimSpace(cfg.Model),
		httpClient: httpClient,
	}
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Format string `json:"format"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

func (b *ollamaBackend) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	payload := ollamaGenerateRequest{
		Model:  b.model,
		Prompt: userPrompt,
		System: systemPrompt,
		Format: "json",
		Stream: false,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("ollama request: encode body: %w", err)
	}

	endpoint, err := url.JoinPath(b.baseURL, "/api/generate")
	if err != nil {
		return "", fmt.Errorf("ollama request: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("ollama request: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ollama request: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", &httpStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var decoded ollamaGenerateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("ollama request: decode response: %w", err)
	}
	if decoded.Error != "" {
		return "", fmt.Errorf("ollama request: api error: %s", decoded.Error)
	}
	if strings.TrimSpace(decoded.Response) == "" {
		return "", fmt.Errorf("ollama request: empty response")
	}
	return decoded.Response, nil
}

func (b *ollamaBackend) Ping(ctx context.Context) error {
	endpoint, err := url.JoinPath(b.baseURL, "/api/tags")
	if err != nil {
		return fmt.Errorf("ollama ping: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("ollama ping: new request: %w", err)
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama ping: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return &httpStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}
