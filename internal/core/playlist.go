package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// MaxPlaylistAddsPerRequest is the music service's cap on tracks added per request.
const MaxPlaylistAddsPerRequest = 100

// PlaylistSync keeps the curated playlist a superset of the tracks shared in
// a transcript. It reads the current playlist then adds only what is missing.
type PlaylistSync struct {
	store    PlaylistStore
	name     string
	newSet   DedupStoreFactory
	logger   *zap.Logger
	recorder Recorder
}

func NewPlaylistSync(
	store PlaylistStore,
	name string,
	newSet DedupStoreFactory,
	logger *zap.Logger,
	recorder Recorder,
) *PlaylistSync {
	if name == "" {
		name = DefaultPlaylistName
	}
	if recorder == nil {
		recorder = NopRecorder()
	}
	return &PlaylistSync{
		store:    store,
		name:     name,
		newSet:   newSet,
		logger:   logger,
		recorder: recorder,
	}
}

// Writable reports whether the store accepts playlist changes.
func (p *PlaylistSync) Writable() bool {
	return p.store.CanModifyPlaylists()
}

// Sync finds or creates the curated playlist and appends the tracks from
// trackIDs that it does not contain yet. Returns the number of tracks added.
func (p *PlaylistSync) Sync(ctx context.Context, trackIDs []string) (int, error) {
	playlistID, found, err := p.store.FindPlaylist(ctx, p.name)
	if err != nil {
		return 0, fmt.Errorf("failed to look up playlist %q: %w", p.name, err)
	}

	var existing []string
	if found {
		existing, err = p.store.PlaylistTrackIDs(ctx, playlistID)
		if err != nil {
			return 0, fmt.Errorf("failed to read playlist %q: %w", p.name, err)
		}
	} else {
		playlistID, err = p.store.CreatePlaylist(ctx, p.name)
		if err != nil {
			return 0, fmt.Errorf("failed to create playlist %q: %w", p.name, err)
		}
		p.logger.Info("Created curated playlist", zap.String("name", p.name), zap.String("playlistID", playlistID))
	}

	set := p.newSet(len(existing), len(trackIDs))
	set.Load(existing)
	missing := set.Missing(trackIDs)

	added := 0
	for _, chunk := range chunkIDs(missing, MaxPlaylistAddsPerRequest) {
		if err := p.store.AddTracks(ctx, playlistID, chunk); err != nil {
			p.recorder.RecordPlaylistAdds(added)
			return added, fmt.Errorf("failed to add tracks to playlist %q: %w", p.name, err)
		}
		added += len(chunk)
	}
	p.recorder.RecordPlaylistAdds(added)

	p.logger.Info("Curated playlist updated",
		zap.String("playlistID", playlistID),
		zap.Int("existing", len(existing)),
		zap.Int("offered", len(trackIDs)),
		zap.Int("added", added))
	return added, nil
}
