package core

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type orchestratorFixture struct {
	catalog  *mockMusicCatalog
	videos   *mockVideoCatalog
	pages    *mockPageFetcher
	store    *mockPlaylistStore
	recorder *countingRecorder
}

func newOrchestratorFixture() *orchestratorFixture {
	return &orchestratorFixture{
		catalog:  newMockMusicCatalog(),
		videos:   &mockVideoCatalog{titles: make(map[string]string)},
		pages:    &mockPageFetcher{pages: make(map[string]PageInfo)},
		store:    newMockPlaylistStore(),
		recorder: newCountingRecorder(),
	}
}

func (f *orchestratorFixture) orchestrator() *Orchestrator {
	logger := zap.NewNop()
	return NewOrchestrator(OrchestratorDeps{
		Music:    NewMusicEnricher(f.catalog, 4, logger, f.recorder),
		Video:    NewVideoEnricher(f.videos, logger, f.recorder),
		Web:      NewWebEnricher(f.pages, 2, logger, f.recorder),
		Playlist: NewPlaylistSync(f.store, "Sweating", newMapSet, logger, f.recorder),
		Matcher:  NewTrackMatcher(f.store, nil, logger),
	}, logger)
}

func linkSetOf(urls ...string) *LinkSet {
	set := NewLinkSet()
	for _, u := range urls {
		set.Add(u, "Alice", "01.02.23, 9:05:10 AM")
	}
	return set
}

func TestOrchestrator_UnresolvedTrackStaysUnclassified(t *testing.T) {
	f := newOrchestratorFixture()
	set := linkSetOf("https://open.spotify.com/track/unknown")

	f.orchestrator().Enrich(context.Background(), set, Options{EnableMusic: true})

	rec, _ := set.Get("https://open.spotify.com/track/unknown")
	if rec.Kind != KindUnclassified || rec.Name != "" || rec.ImageURL != "" {
		t.Errorf("record = %+v, want unenriched", rec)
	}
	if rec.Sender != "Alice" {
		t.Errorf("attribution lost: %+v", rec)
	}
}

func TestOrchestrator_EnrichesAllKinds(t *testing.T) {
	f := newOrchestratorFixture()
	f.catalog.tracks["t1"] = TrackInfo{Name: "Song", Artists: "A", ImageURL: "img-t"}
	f.catalog.albums["a1"] = AlbumInfo{Name: "LP", Artists: "A", ImageURL: "img-a"}
	f.catalog.playlists["p1"] = PlaylistInfo{Name: "Mix", ImageURL: "img-p"}
	f.catalog.artists["r1"] = ArtistInfo{Name: "Band", ImageURL: "img-r"}
	f.videos.titles["dQw4w9WgXcQ"] = "Clip"
	f.pages.pages["https://blog.example.com/"] = PageInfo{Title: "Blog"}

	urls := []string{
		"https://blog.example.com/",
		"https://open.spotify.com/track/t1",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://open.spotify.com/album/a1",
		"https://open.spotify.com/playlist/p1",
		"https://open.spotify.com/artist/r1",
	}
	set := linkSetOf(urls...)

	f.orchestrator().Enrich(context.Background(), set, Options{EnableMusic: true, EnableVideo: true, EnableWeb: true})

	records := set.Records()
	var gotURLs []string
	var gotKinds []LinkKind
	for _, r := range records {
		gotURLs = append(gotURLs, r.URL)
		gotKinds = append(gotKinds, r.Kind)
	}
	if !reflect.DeepEqual(gotURLs, urls) {
		t.Errorf("order = %v, want %v", gotURLs, urls)
	}
	wantKinds := []LinkKind{KindWebsite, KindTrack, KindVideo, KindAlbum, KindPlaylist, KindArtist}
	if !reflect.DeepEqual(gotKinds, wantKinds) {
		t.Errorf("kinds = %v, want %v", gotKinds, wantKinds)
	}
}

func TestOrchestrator_RespectsOptions(t *testing.T) {
	f := newOrchestratorFixture()
	f.catalog.tracks["t1"] = TrackInfo{Name: "Song"}
	f.videos.titles["dQw4w9WgXcQ"] = "Clip"

	set := linkSetOf("https://open.spotify.com/track/t1", "https://youtu.be/dQw4w9WgXcQ", "https://blog.example.com/")
	f.orchestrator().Enrich(context.Background(), set, Options{EnableVideo: true})

	if len(f.catalog.trackBatches) != 0 {
		t.Error("music lookups ran with music disabled")
	}
	if rec, _ := set.Get("https://youtu.be/dQw4w9WgXcQ"); rec.Kind != KindVideo {
		t.Errorf("video record kind = %s, want video", rec.Kind)
	}
	if rec, _ := set.Get("https://blog.example.com/"); rec.Kind != KindUnclassified {
		t.Errorf("web record kind = %s, want unclassified with web disabled", rec.Kind)
	}
}

func TestOrchestrator_ProviderFailureIsolated(t *testing.T) {
	f := newOrchestratorFixture()
	f.catalog.failTracks = true
	f.catalog.albums["a1"] = AlbumInfo{Name: "LP"}
	f.videos.titles["dQw4w9WgXcQ"] = "Clip"

	set := linkSetOf(
		"https://open.spotify.com/track/t1",
		"https://open.spotify.com/album/a1",
		"https://youtu.be/dQw4w9WgXcQ",
	)
	f.orchestrator().Enrich(context.Background(), set, Options{EnableMusic: true, EnableVideo: true, UpdateCuratedPlaylist: true})

	if rec, _ := set.Get("https://open.spotify.com/track/t1"); rec.Kind != KindUnclassified {
		t.Errorf("failed track kind = %s, want unclassified", rec.Kind)
	}
	if rec, _ := set.Get("https://open.spotify.com/album/a1"); rec.Name != "LP" {
		t.Errorf("album name = %q, want LP", rec.Name)
	}
	if rec, _ := set.Get("https://youtu.be/dQw4w9WgXcQ"); rec.Name != "Clip" {
		t.Errorf("video name = %q, want Clip", rec.Name)
	}
	if len(f.store.created) != 0 || len(f.store.addCalls) != 0 {
		t.Error("playlist must not be touched when music lookups failed")
	}
}

func TestOrchestrator_UpdatesCuratedPlaylist(t *testing.T) {
	f := newOrchestratorFixture()
	f.catalog.tracks["t1"] = TrackInfo{Name: "Song"}
	f.catalog.tracks["t2"] = TrackInfo{Name: "Other"}
	f.store.playlists["Sweating"] = "pl-1"
	f.store.tracks["pl-1"] = []string{"t2"}
	f.videos.titles["dQw4w9WgXcQ"] = "Daft Punk - One More Time (Official Video)"
	f.store.search["Daft Punk One More Time"] = []TrackCandidate{
		{ID: "queen", Name: "Bohemian Rhapsody", Artists: "Queen"},
		{ID: "omt", Name: "One More Time", Artists: "Daft Punk"},
	}

	set := linkSetOf(
		"https://open.spotify.com/track/t1",
		"https://open.spotify.com/track/t2",
		"https://open.spotify.com/track/unresolved",
		"https://youtu.be/dQw4w9WgXcQ",
	)
	f.orchestrator().Enrich(context.Background(), set, Options{EnableMusic: true, EnableVideo: true, UpdateCuratedPlaylist: true})

	want := []string{"t1", "omt"}
	if got := f.store.added(); !reflect.DeepEqual(got, want) {
		t.Errorf("added tracks = %v, want %v", got, want)
	}
	if f.recorder.playlistAdds != 2 {
		t.Errorf("recorded %d playlist adds, want 2", f.recorder.playlistAdds)
	}
}

func TestOrchestrator_NoPlaylistUpdateWithoutFlag(t *testing.T) {
	f := newOrchestratorFixture()
	f.catalog.tracks["t1"] = TrackInfo{Name: "Song"}

	set := linkSetOf("https://open.spotify.com/track/t1")
	f.orchestrator().Enrich(context.Background(), set, Options{EnableMusic: true})

	if len(f.store.addCalls) != 0 || len(f.store.created) != 0 {
		t.Error("playlist touched without UpdateCuratedPlaylist")
	}
}

func TestOrchestrator_NilEnrichers(t *testing.T) {
	set := linkSetOf("https://open.spotify.com/track/t1", "https://youtu.be/dQw4w9WgXcQ")
	o := NewOrchestrator(OrchestratorDeps{}, zap.NewNop())

	o.Enrich(context.Background(), set, Options{EnableMusic: true, EnableVideo: true, UpdateCuratedPlaylist: true})

	for _, r := range set.Records() {
		if r.Kind != KindUnclassified {
			t.Errorf("record %s enriched without enrichers", r.URL)
		}
	}
}

// completionLog records the order in which provider lookups return.
type completionLog struct {
	mu    sync.Mutex
	order []string
}

func (l *completionLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.order = append(l.order, name)
}

func (l *completionLog) names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.order...)
}

// slowMusicCatalog holds track lookups back until release is closed.
type slowMusicCatalog struct {
	*mockMusicCatalog
	release <-chan struct{}
	log     *completionLog
}

func (c slowMusicCatalog) Tracks(ctx context.Context, ids []string) (map[string]TrackInfo, error) {
	select {
	case <-c.release:
	case <-time.After(5 * time.Second):
	}
	defer c.log.add("music")
	return c.mockMusicCatalog.Tracks(ctx, ids)
}

type signallingVideoCatalog struct {
	*mockVideoCatalog
	done func()
}

func (c signallingVideoCatalog) VideoTitle(ctx context.Context, videoID string) (string, error) {
	defer c.done()
	return c.mockVideoCatalog.VideoTitle(ctx, videoID)
}

type signallingPageFetcher struct {
	*mockPageFetcher
	done func()
}

func (f signallingPageFetcher) PageInfo(ctx context.Context, pageURL string) (*PageInfo, error) {
	defer f.done()
	return f.mockPageFetcher.PageInfo(ctx, pageURL)
}

func TestOrchestrator_OutputOrderIgnoresCompletionOrder(t *testing.T) {
	f := newOrchestratorFixture()
	f.catalog.tracks["t1"] = TrackInfo{Name: "Song"}
	f.videos.titles["dQw4w9WgXcQ"] = "Clip"
	f.pages.pages["https://blog.example.com/"] = PageInfo{Title: "Blog"}

	log := &completionLog{}
	var others sync.WaitGroup
	others.Add(2)
	release := make(chan struct{})
	go func() {
		others.Wait()
		close(release)
	}()

	logger := zap.NewNop()
	o := NewOrchestrator(OrchestratorDeps{
		Music: NewMusicEnricher(slowMusicCatalog{f.catalog, release, log}, 4, logger, nil),
		Video: NewVideoEnricher(signallingVideoCatalog{f.videos, func() {
			log.add("video")
			others.Done()
		}}, logger, nil),
		Web: NewWebEnricher(signallingPageFetcher{f.pages, func() {
			log.add("web")
			others.Done()
		}}, 2, logger, nil),
	}, logger)

	urls := []string{
		"https://open.spotify.com/track/t1",
		"https://youtu.be/dQw4w9WgXcQ",
		"https://blog.example.com/",
	}
	set := linkSetOf(urls...)
	o.Enrich(context.Background(), set, Options{EnableMusic: true, EnableVideo: true, EnableWeb: true})

	if got := log.names(); len(got) != 3 || got[2] != "music" {
		t.Fatalf("completion order = %v, want music last", got)
	}

	var gotURLs, gotNames []string
	for _, r := range set.Records() {
		gotURLs = append(gotURLs, r.URL)
		gotNames = append(gotNames, r.Name)
	}
	if !reflect.DeepEqual(gotURLs, urls) {
		t.Errorf("order = %v, want %v", gotURLs, urls)
	}
	if want := []string{"Song", "Clip", "Blog"}; !reflect.DeepEqual(gotNames, want) {
		t.Errorf("names = %v, want %v", gotNames, want)
	}
}

func TestOrchestrator_CanUpdatePlaylist(t *testing.T) {
	f := newOrchestratorFixture()
	if !f.orchestrator().CanUpdatePlaylist() {
		t.Error("writable store should allow playlist updates")
	}

	f.store.readOnly = true
	if f.orchestrator().CanUpdatePlaylist() {
		t.Error("read-only store must not allow playlist updates")
	}

	if NewOrchestrator(OrchestratorDeps{}, zap.NewNop()).CanUpdatePlaylist() {
		t.Error("orchestrator without playlist sync must not allow playlist updates")
	}
}
