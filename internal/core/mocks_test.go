package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var errProviderDown = errors.New("provider down")

type mockMusicCatalog struct {
	mu sync.Mutex

	tracks    map[string]TrackInfo
	albums    map[string]AlbumInfo
	artists   map[string]ArtistInfo
	playlists map[string]PlaylistInfo

	failTracks    bool
	failAlbums    bool
	failPlaylists bool

	trackBatches  [][]string
	albumBatches  [][]string
	artistBatches [][]string
	playlistCalls []string
}

func newMockMusicCatalog() *mockMusicCatalog {
	return &mockMusicCatalog{
		tracks:    make(map[string]TrackInfo),
		albums:    make(map[string]AlbumInfo),
		artists:   make(map[string]ArtistInfo),
		playlists: make(map[string]PlaylistInfo),
	}
}

func pick[T any](known map[string]T, ids []string) map[string]T {
	out := make(map[string]T)
	for _, id := range ids {
		if v, ok := known[id]; ok {
			out[id] = v
		}
	}
	return out
}

func (m *mockMusicCatalog) Tracks(_ context.Context, ids []string) (map[string]TrackInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trackBatches = append(m.trackBatches, append([]string(nil), ids...))
	if m.failTracks {
		return nil, errProviderDown
	}
	return pick(m.tracks, ids), nil
}

func (m *mockMusicCatalog) Albums(_ context.Context, ids []string) (map[string]AlbumInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.albumBatches = append(m.albumBatches, append([]string(nil), ids...))
	if m.failAlbums {
		return nil, errProviderDown
	}
	return pick(m.albums, ids), nil
}

func (m *mockMusicCatalog) Artists(_ context.Context, ids []string) (map[string]ArtistInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artistBatches = append(m.artistBatches, append([]string(nil), ids...))
	return pick(m.artists, ids), nil
}

func (m *mockMusicCatalog) Playlist(_ context.Context, id string) (*PlaylistInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playlistCalls = append(m.playlistCalls, id)
	if m.failPlaylists {
		return nil, errProviderDown
	}
	info, ok := m.playlists[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &info, nil
}

type mockVideoCatalog struct {
	mu     sync.Mutex
	titles map[string]string
	calls  []string
}

func (m *mockVideoCatalog) VideoTitle(_ context.Context, videoID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, videoID)
	title, ok := m.titles[videoID]
	if !ok {
		return "", ErrNotFound
	}
	return title, nil
}

func (m *mockVideoCatalog) ThumbnailURL(videoID string) string {
	return fmt.Sprintf("https://img.example/vi/%s/default.jpg", videoID)
}

type mockPageFetcher struct {
	pages map[string]PageInfo
}

func (m *mockPageFetcher) PageInfo(_ context.Context, pageURL string) (*PageInfo, error) {
	info, ok := m.pages[pageURL]
	if !ok {
		return nil, errProviderDown
	}
	return &info, nil
}

type mockPlaylistStore struct {
	mu sync.Mutex

	playlists map[string]string
	tracks    map[string][]string
	search    map[string][]TrackCandidate

	created  []string
	addCalls [][]string
	failFind bool
	readOnly bool
}

func newMockPlaylistStore() *mockPlaylistStore {
	return &mockPlaylistStore{
		playlists: make(map[string]string),
		tracks:    make(map[string][]string),
		search:    make(map[string][]TrackCandidate),
	}
}

func (m *mockPlaylistStore) FindPlaylist(_ context.Context, name string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFind {
		return "", false, errProviderDown
	}
	id, ok := m.playlists[name]
	return id, ok, nil
}

func (m *mockPlaylistStore) CreatePlaylist(_ context.Context, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := "pl-" + name
	m.playlists[name] = id
	m.created = append(m.created, name)
	return id, nil
}

func (m *mockPlaylistStore) PlaylistTrackIDs(_ context.Context, playlistID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.tracks[playlistID]...), nil
}

func (m *mockPlaylistStore) AddTracks(_ context.Context, playlistID string, trackIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addCalls = append(m.addCalls, append([]string(nil), trackIDs...))
	m.tracks[playlistID] = append(m.tracks[playlistID], trackIDs...)
	return nil
}

func (m *mockPlaylistStore) SearchTracks(_ context.Context, query string) ([]TrackCandidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.search[query], nil
}

func (m *mockPlaylistStore) CanModifyPlaylists() bool {
	return !m.readOnly
}

func (m *mockPlaylistStore) added() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []string
	for _, call := range m.addCalls {
		all = append(all, call...)
	}
	return all
}

// mapSet is an exact DedupStore for tests.
type mapSet map[string]struct{}

func newMapSet(_, _ int) DedupStore {
	return mapSet{}
}

func (s mapSet) Load(keys []string) {
	for _, k := range keys {
		s[k] = struct{}{}
	}
}

func (s mapSet) Missing(keys []string) []string {
	var missing []string
	for _, k := range keys {
		if _, ok := s[k]; ok || k == "" {
			continue
		}
		s[k] = struct{}{}
		missing = append(missing, k)
	}
	return missing
}

type mockExtractor struct {
	query *SongQuery
	err   error
}

func (m *mockExtractor) ExtractSongInfo(_ context.Context, _ string) (*SongQuery, error) {
	return m.query, m.err
}

type countingRecorder struct {
	mu           sync.Mutex
	analyses     int
	lookups      map[string]int
	playlistAdds int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{lookups: make(map[string]int)}
}

func (r *countingRecorder) RecordAnalysis(string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyses++
}

func (r *countingRecorder) RecordLookup(provider, kind, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups[provider+"/"+kind+"/"+status]++
}

func (r *countingRecorder) RecordPlaylistAdds(count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playlistAdds += count
}
