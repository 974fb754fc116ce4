package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"shuttle/internal/parser"
)

const parseFilenamePrompt = `You extract TV episode metadata from release filenames.
Respond with JSON only, using this shape:
{"show_name": string, "season": number or null, "episode": number or null,
"crc32": string or null, "confidence": number between 0 and 1, "reasoning": string}
Rules:
- show_name is the series title with release tags, resolution, codec, and
  group names removed.
- season and episode are null when the filename does not state them. A bare
  trailing number with no season marker is an absolute episode number:
  report it as episode with season null.
- crc32 is the 8-character hex checksum when one appears in brackets.
- confidence reflects how certain you are the show_name is correct.`

const shortenNamePrompt = `You shorten file and directory names that exceed a
filesystem path-length limit. Respond with JSON only:
{"short_name": string}
Rules:
- Keep the series title, season/episode markers, and the file extension.
- Drop release tags, resolution, codec, and group names first.
- The short_name must be at most the requested number of characters.`

type parsePayload struct {
	ShowName   string  `json:"show_name"`
	Season     *int    `json:"season"`
	Episode    *int    `json:"episode"`
	CRC32      string  `json:"crc32"`
	Hash       string  `json:"hash"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// ParseFilename implements parser.Provider.
func (c *Client) ParseFilename(ctx context.Context, filename string) (parser.ProviderResult, error) {
	var empty parser.ProviderResult
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return empty, fmt.Errorf("llm parse: filename required")
	}

	content, err := c.completeWithRetry(ctx, parseFilenamePrompt, filename, "llm parse")
	if err != nil {
		return empty, err
	}

	var payload parsePayload
	if err := decodeJSON(content, &payload); err != nil {
		return empty, fmt.Errorf("llm parse: decode payload: %w", err)
	}

	if payload.Confidence < 0 {
		payload.Confidence = 0
	}
	if payload.Confidence > 1 {
		payload.Confidence = 1
	}
	return parser.ProviderResult{
		ShowName:   strings.TrimSpace(payload.ShowName),
		Season:     payload.Season,
		Episode:    payload.Episode,
		CRC32:      payload.CRC32,
		Hash:       payload.Hash,
		Confidence: payload.Confidence,
		Reasoning:  strings.TrimSpace(payload.Reasoning),
	}, nil
}

// SuggestShortFilename implements shorten.Namer.
func (c *Client) SuggestShortFilename(ctx context.Context, name string, maxLen int) (string, error) {
	return c.suggestShortName(ctx, name, maxLen, "filename")
}

// SuggestShortDirname implements shorten.Namer.
func (c *Client) SuggestShortDirname(ctx context.Context, name string, maxLen int) (string, error) {
	return c.suggestShortName(ctx, name, maxLen, "directory name")
}

func (c *Client) suggestShortName(ctx context.Context, name string, maxLen int, kind string) (string, error) {
	prompt := fmt.Sprintf("Shorten this %s to at most %d characters: %s", kind, maxLen, name)
	content, err := c.completeWithRetry(ctx, shortenNamePrompt, prompt, "llm shorten")
	if err != nil {
		return "", err
	}

	var payload struct {
		ShortName string `json:"short_name"`
	}
	if err := decodeJSON(content, &payload); err != nil {
		return "", fmt.Errorf("llm shorten: decode payload: %w", err)
	}
	short := strings.TrimSpace(payload.ShortName)
	if short == "" {
		return "", fmt.Errorf("llm shorten: empty suggestion")
	}
	if len(short) > maxLen {
		return "", fmt.Errorf("llm shorten: suggestion %q exceeds %d characters", short, maxLen)
	}
	return short, nil
}

// decodeJSON tolerates models that wrap their JSON in markdown fences.
func decodeJSON(content string, target any) error {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}
	return json.Unmarshal([]byte(trimmed), target)
}
