package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

const aliceBobTranscript = "[01.02.23, 9:05:10 AM] Alice: check this https://open.spotify.com/track/abc123\n" +
	"[01.02.23, 9:06:00 AM] Bob: same https://open.spotify.com/track/abc123"

func TestAnalyser_FirstSenderWins(t *testing.T) {
	analyser := NewAnalyser(nil, false, zap.NewNop(), nil)

	records := analyser.Analyse(context.Background(), aliceBobTranscript, Options{})

	if len(records) != 1 {
		t.Fatalf("Analyse() returned %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.URL != "https://open.spotify.com/track/abc123" || rec.Sender != "Alice" || rec.Timestamp != "01.02.23, 9:05:10 AM" {
		t.Errorf("record = %+v", rec)
	}
}

func TestAnalyser_EnrichesTracks(t *testing.T) {
	f := newOrchestratorFixture()
	f.catalog.tracks["abc123"] = TrackInfo{Name: "Song", Artists: "Artist", ImageURL: "img"}

	analyser := NewAnalyser(f.orchestrator(), false, zap.NewNop(), f.recorder)
	records := analyser.Analyse(context.Background(), aliceBobTranscript, Options{EnableMusic: true})

	if len(records) != 1 || records[0].Kind != KindTrack || records[0].Name != "Song" {
		t.Errorf("records = %+v", records)
	}
	if f.recorder.analyses != 1 {
		t.Errorf("recorded %d analyses, want 1", f.recorder.analyses)
	}
}

func TestAnalyser_EmptyTranscript(t *testing.T) {
	analyser := NewAnalyser(nil, false, zap.NewNop(), nil)
	if records := analyser.Analyse(context.Background(), "", Options{EnableMusic: true}); len(records) != 0 {
		t.Errorf("Analyse() = %v, want no records", records)
	}
}

func TestAnalyser_AnalyseFile(t *testing.T) {
	tests := []struct {
		name       string
		consume    bool
		fileRemain bool
	}{
		{"Development keeps upload", false, true},
		{"Production consumes upload", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sharevault.txt")
			if err := os.WriteFile(path, []byte(aliceBobTranscript), 0o600); err != nil {
				t.Fatal(err)
			}

			analyser := NewAnalyser(nil, tt.consume, zap.NewNop(), nil)
			records, err := analyser.AnalyseFile(context.Background(), path, Options{})
			if err != nil {
				t.Fatalf("AnalyseFile() error = %v", err)
			}
			if len(records) != 1 {
				t.Errorf("AnalyseFile() returned %d records, want 1", len(records))
			}

			_, statErr := os.Stat(path)
			if exists := statErr == nil; exists != tt.fileRemain {
				t.Errorf("file exists = %v, want %v", exists, tt.fileRemain)
			}
		})
	}
}

func TestAnalyser_AnalyseFileMissing(t *testing.T) {
	analyser := NewAnalyser(nil, true, zap.NewNop(), nil)

	_, err := analyser.AnalyseFile(context.Background(), filepath.Join(t.TempDir(), "absent.txt"), Options{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("AnalyseFile() error = %v, want not-exist", err)
	}
}
