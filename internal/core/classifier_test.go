package core

import (
	"errors"
	"testing"

	"go.uber.org/zap"
)

func TestParseMusicURL_RoundTrip(t *testing.T) {
	const id = "4uLU6hMCjMI75M1A2tKUQC"

	for _, kind := range MusicKinds {
		t.Run(kind.String(), func(t *testing.T) {
			rawURL := "https://open.spotify.com/" + kind.String() + "/" + id + "?si=abc123"

			got, err := ParseMusicURL(rawURL)
			if err != nil {
				t.Fatalf("ParseMusicURL() error = %v", err)
			}
			if got.ExternalID != id || got.Kind != kind || got.Provider != ProviderMusic || got.SourceURL != rawURL {
				t.Errorf("ParseMusicURL() = %+v", got)
			}
		})
	}
}

func TestParseMusicURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		kind     LinkKind
		id       string
		sentinel error
	}{
		{"Locale prefix", "https://open.spotify.com/intl-de/track/abc123", KindTrack, "abc123", nil},
		{"Fragment", "https://open.spotify.com/album/xyz#top", KindAlbum, "xyz", nil},
		{"Unknown kind", "https://open.spotify.com/episode/abc123", KindUnclassified, "", ErrUnknownKind},
		{"Missing id", "https://open.spotify.com/track", KindUnclassified, "", ErrUnparseableURL},
		{"Other host", "https://spotify.link/abc", KindUnclassified, "", ErrUnparseableURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMusicURL(tt.input)
			if tt.sentinel != nil {
				if !errors.Is(err, tt.sentinel) {
					t.Errorf("ParseMusicURL() error = %v, want %v", err, tt.sentinel)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMusicURL() unexpected error: %v", err)
			}
			if got.Kind != tt.kind || got.ExternalID != tt.id {
				t.Errorf("ParseMusicURL() = %+v, want kind %s id %s", got, tt.kind, tt.id)
			}
		})
	}
}

func TestParseVideoID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		hasError bool
	}{
		{"Watch link with extra params", "https://www.youtube.com/watch?v=XXXXXXXXXXX&t=5", "XXXXXXXXXXX", false},
		{"Short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"Short link with query", "https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ", false},
		{"Shorts", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"Music host", "https://music.youtube.com/watch?v=dQw4w9WgXcQ&list=RD", "dQw4w9WgXcQ", false},
		{"Watch without id", "https://www.youtube.com/watch", "", true},
		{"Channel page", "https://www.youtube.com/@somechannel", "", true},
		{"Bare host", "https://youtube.com/", "", true},
		{"Embed", "https://www.youtube.com/embed/dQw4w9WgXcQ?start=3", "dQw4w9WgXcQ", false},
		{"Old embed path", "https://www.youtube.com/v/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"Mobile host", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"Channel with eleven character name", "https://www.youtube.com/c/abcdefghijk", "", true},
		{"User page with eleven character name", "https://www.youtube.com/user/abcdefghijk", "", true},
		{"Query id outside watch page", "https://www.youtube.com/results?v=dQw4w9WgXcQ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVideoID(tt.input)
			if tt.hasError {
				if err == nil {
					t.Errorf("ParseVideoID() expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVideoID() unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("ParseVideoID() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestClassifier_Classify(t *testing.T) {
	classifier := NewClassifier(zap.NewNop())

	tests := []struct {
		name     string
		input    string
		ok       bool
		provider Provider
		kind     LinkKind
	}{
		{"Music track", "https://open.spotify.com/track/abc", true, ProviderMusic, KindTrack},
		{"Music unknown kind is dropped", "https://open.spotify.com/show/abc", false, ProviderNone, KindUnclassified},
		{"Video", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", true, ProviderVideo, KindVideo},
		{"Unparseable video is dropped", "https://www.youtube.com/feed/subscriptions", false, ProviderNone, KindUnclassified},
		{"Channel page is not a video", "https://www.youtube.com/c/abcdefghijk", false, ProviderNone, KindUnclassified},
		{"Plain web page", "https://news.example.com/story", false, ProviderNone, KindUnclassified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := classifier.Classify(tt.input)
			if ok != tt.ok {
				t.Fatalf("Classify() ok = %v, want %v", ok, tt.ok)
			}
			if got.Provider != tt.provider || got.Kind != tt.kind {
				t.Errorf("Classify() = %+v", got)
			}
		})
	}
}

func TestIsWebCandidate(t *testing.T) {
	if !IsWebCandidate("https://news.example.com/story") {
		t.Error("plain page should be a web candidate")
	}
	if IsWebCandidate("https://open.spotify.com/episode/abc") {
		t.Error("music host URLs are never web candidates")
	}
	if IsWebCandidate("https://youtu.be/") {
		t.Error("video host URLs are never web candidates")
	}
}
