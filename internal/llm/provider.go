// Package llm extracts song titles and artists from free text using a hosted
// language model.
package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"sharevault/internal/core"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

// ErrNoSong is returned when the model could not identify a song.
var ErrNoSong = errors.New("no song information found")

// NewProvider returns the configured song extractor. It returns nil without
// error when no provider is configured.
func NewProvider(config *core.LLMConfig, logger *zap.Logger) (core.SongExtractor, error) {
	var (
		client core.SongExtractor
		err    error
	)

	switch strings.ToLower(config.Provider) {
	case ProviderOpenAI:
		client, err = NewOpenAIClient(config, logger)
	case ProviderAnthropic:
		client, err = NewAnthropicClient(config, logger)
	case ProviderNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", config.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", config.Provider, err)
	}
	return client, nil
}

// SongExtractResponse is the JSON shape both providers are asked to return.
type SongExtractResponse struct {
	Found  bool   `json:"found"`
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Reason string `json:"reason,omitempty"`
}

const extractSongPrompt = `You are a music expert helping to identify songs from video titles shared in a group chat.

Your task is to determine if the title refers to a specific song, and if so, extract the song details.

Respond with a JSON object in this exact format:
{
  "found": true/false,
  "title": "Song Title",
  "artist": "Artist Name",
  "reason": "Explanation of why song was/wasn't found"
}

Rules:
1. Set "found" to true only if you can identify a specific song
2. Strip video decorations such as "Official Video", "Lyrics", "Live at ..." from the title
3. If found=false, include a brief reason in the "reason" field
4. If several songs are mentioned, extract the first one
5. Respond with the JSON object only

Examples of when to set found=true:
- "Queen – Bohemian Rhapsody (Official Video Remastered)"
- "Daft Punk - One More Time (Official Video)"

Examples of when to set found=false:
- "My trip to Iceland vlog"
- "10 hours of rain sounds"`

// parseSongResponse decodes a model reply. Replies wrapped in a markdown
// code fence are accepted.
func parseSongResponse(content string) (*core.SongQuery, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var response SongExtractResponse
	if err := json.Unmarshal([]byte(content), &response); err != nil {
		return nil, fmt.Errorf("failed to parse song response: %w", err)
	}

	if !response.Found || strings.TrimSpace(response.Title) == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoSong, response.Reason)
	}

	return &core.SongQuery{
		Title:  strings.TrimSpace(response.Title),
		Artist: strings.TrimSpace(response.Artist),
	}, nil
}
