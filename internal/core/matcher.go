package core

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"sharevault/pkg/fuzzy"
)

// MinTrackMatchScore is the lowest score a search hit needs to be taken as
// the track a video title refers to.
const MinTrackMatchScore = 0.6

// TrackMatcher finds the music track a video title most likely refers to.
type TrackMatcher struct {
	store      PlaylistStore
	extractor  SongExtractor
	normalizer *fuzzy.Normalizer
	logger     *zap.Logger
}

// NewTrackMatcher builds a matcher. extractor is optional; without it the
// title is split heuristically on " - ".
func NewTrackMatcher(store PlaylistStore, extractor SongExtractor, logger *zap.Logger) *TrackMatcher {
	return &TrackMatcher{
		store:      store,
		extractor:  extractor,
		normalizer: fuzzy.NewNormalizer(),
		logger:     logger,
	}
}

func (m *TrackMatcher) songQuery(ctx context.Context, videoTitle string) SongQuery {
	if m.extractor != nil {
		q, err := m.extractor.ExtractSongInfo(ctx, videoTitle)
		if err == nil && q != nil && q.Title != "" {
			return *q
		}
		m.logger.Debug("Song extraction failed, splitting title", zap.String("title", videoTitle), zap.Error(err))
	}

	artist, title := fuzzy.SplitVideoTitle(videoTitle)
	return SongQuery{Title: title, Artist: artist}
}

// Match returns the best scoring search hit for videoTitle, if any clears
// MinTrackMatchScore.
func (m *TrackMatcher) Match(ctx context.Context, videoTitle string) (TrackCandidate, bool) {
	q := m.songQuery(ctx, videoTitle)
	if q.Title == "" {
		return TrackCandidate{}, false
	}

	candidates, err := m.store.SearchTracks(ctx, strings.TrimSpace(q.Artist+" "+q.Title))
	if err != nil {
		m.logger.Warn("Track search failed", zap.String("title", videoTitle), zap.Error(err))
		return TrackCandidate{}, false
	}

	var best TrackCandidate
	bestScore := 0.0
	for _, c := range candidates {
		score := m.normalizer.TrackScore(q.Title, q.Artist, c.Name, c.Artists)
		if score > bestScore {
			best, bestScore = c, score
		}
	}

	if bestScore < MinTrackMatchScore {
		m.logger.Debug("No confident track match",
			zap.String("title", videoTitle),
			zap.Float64("bestScore", bestScore))
		return TrackCandidate{}, false
	}

	m.logger.Debug("Matched video to track",
		zap.String("title", videoTitle),
		zap.String("trackID", best.ID),
		zap.Float64("score", bestScore))
	return best, true
}
