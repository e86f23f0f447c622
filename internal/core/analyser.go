package core

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"sharevault/pkg/text"
)

// Analysis status labels passed to Recorder.RecordAnalysis.
const (
	AnalysisSuccess = "success"
	AnalysisFailed  = "failed"
)

// Analyser is the entry point of the pipeline: segment a transcript, extract
// attributed links, enrich them and flatten the result in transcript order.
type Analyser struct {
	orchestrator *Orchestrator
	consume      bool
	logger       *zap.Logger
	recorder     Recorder
}

// NewAnalyser builds an Analyser. When consume is set, AnalyseFile removes
// the file once it has been read.
func NewAnalyser(orchestrator *Orchestrator, consume bool, logger *zap.Logger, recorder Recorder) *Analyser {
	if recorder == nil {
		recorder = NopRecorder()
	}
	return &Analyser{
		orchestrator: orchestrator,
		consume:      consume,
		logger:       logger,
		recorder:     recorder,
	}
}

// CanUpdatePlaylist reports whether Options.UpdateCuratedPlaylist can be honoured.
func (a *Analyser) CanUpdatePlaylist() bool {
	return a.orchestrator != nil && a.orchestrator.CanUpdatePlaylist()
}

// Analyse runs the pipeline over an in-memory transcript.
func (a *Analyser) Analyse(ctx context.Context, transcript string, opts Options) []LinkRecord {
	messages := text.Segment(transcript)

	set := NewLinkSet()
	for _, attr := range text.Extract(messages) {
		set.Add(attr.URL, attr.Sender, attr.Timestamp)
	}

	a.logger.Debug("Transcript parsed",
		zap.Int("messages", len(messages)),
		zap.Int("links", set.Len()))

	if a.orchestrator != nil {
		a.orchestrator.Enrich(ctx, set, opts)
	}

	records := set.Records()
	a.recorder.RecordAnalysis(AnalysisSuccess, len(records))
	return records
}

// AnalyseFile reads a transcript from path and analyses it.
func (a *Analyser) AnalyseFile(ctx context.Context, path string, opts Options) ([]LinkRecord, error) {
	transcript, err := a.readTranscript(path)
	if err != nil {
		a.recorder.RecordAnalysis(AnalysisFailed, 0)
		return nil, err
	}
	return a.Analyse(ctx, transcript, opts), nil
}

func (a *Analyser) readTranscript(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open transcript: %w", err)
	}

	transcript, readErr := text.ReadTranscript(file)
	_ = file.Close()

	if a.consume {
		if err := os.Remove(path); err != nil {
			a.logger.Warn("Failed to remove consumed transcript", zap.String("path", path), zap.Error(err))
		} else {
			a.logger.Debug("Consumed transcript", zap.String("path", path))
		}
	}

	if readErr != nil {
		return "", readErr
	}
	return transcript, nil
}
