package llm

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"sharevault/internal/core"
)

func TestNewProvider(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name     string
		config   core.LLMConfig
		wantNil  bool
		hasError bool
	}{
		{"Disabled", core.LLMConfig{Provider: "none"}, true, false},
		{"Empty provider", core.LLMConfig{}, true, false},
		{"OpenAI without key", core.LLMConfig{Provider: "openai"}, true, true},
		{"Anthropic without key", core.LLMConfig{Provider: "anthropic"}, true, true},
		{"OpenAI", core.LLMConfig{Provider: "OpenAI", APIKey: "sk-test"}, false, false},
		{"Anthropic", core.LLMConfig{Provider: "anthropic", APIKey: "sk-test"}, false, false},
		{"Unknown", core.LLMConfig{Provider: "ollama"}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor, err := NewProvider(&tt.config, logger)
			if (err != nil) != tt.hasError {
				t.Fatalf("NewProvider() error = %v, hasError %v", err, tt.hasError)
			}
			if (extractor == nil) != tt.wantNil {
				t.Errorf("NewProvider() extractor = %v, wantNil %v", extractor, tt.wantNil)
			}
		})
	}
}

func TestParseSongResponse(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected *core.SongQuery
		noSong   bool
		hasError bool
	}{
		{
			name:     "Plain JSON",
			content:  `{"found": true, "title": "One More Time", "artist": "Daft Punk"}`,
			expected: &core.SongQuery{Title: "One More Time", Artist: "Daft Punk"},
		},
		{
			name:     "Code fence",
			content:  "```json\n{\"found\": true, \"title\": \" Yesterday \", \"artist\": \"The Beatles\"}\n```",
			expected: &core.SongQuery{Title: "Yesterday", Artist: "The Beatles"},
		},
		{
			name:    "Not found",
			content: `{"found": false, "reason": "vlog"}`,
			noSong:  true,
		},
		{
			name:    "Found without title",
			content: `{"found": true, "artist": "Someone"}`,
			noSong:  true,
		},
		{
			name:     "Invalid JSON",
			content:  `Sure! The song is One More Time.`,
			hasError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSongResponse(tt.content)
			switch {
			case tt.noSong:
				if !errors.Is(err, ErrNoSong) {
					t.Errorf("parseSongResponse() error = %v, want ErrNoSong", err)
				}
			case tt.hasError:
				if err == nil || errors.Is(err, ErrNoSong) {
					t.Errorf("parseSongResponse() error = %v, want parse error", err)
				}
			default:
				if err != nil {
					t.Fatalf("parseSongResponse() error = %v", err)
				}
				if *got != *tt.expected {
					t.Errorf("parseSongResponse() = %+v, want %+v", got, tt.expected)
				}
			}
		})
	}
}
