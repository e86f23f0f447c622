package core

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Per-request identifier caps of the music service's bulk endpoints.
const (
	MaxTracksPerRequest  = 50
	MaxArtistsPerRequest = 50
	MaxAlbumsPerRequest  = 20
)

// Lookup status labels passed to Recorder.RecordLookup.
const (
	LookupSuccess  = "success"
	LookupNotFound = "not_found"
	LookupError    = "error"
	LookupFallback = "fallback"
)

// GroupResult is the outcome of one lookup group. Fields is keyed by URL.
// Err is set when at least one request of the group failed; whatever did
// resolve is still present in Fields.
type GroupResult struct {
	Kind   LinkKind
	Fields map[string]Enrichment
	Err    error
}

func newGroupResult(kind LinkKind) GroupResult {
	return GroupResult{Kind: kind, Fields: make(map[string]Enrichment)}
}

// identifierIndex maps each distinct external id to the URLs that produced it,
// keeping first-seen id order.
type identifierIndex struct {
	ids  []string
	urls map[string][]string
}

func indexIdentifiers(ids []Identifier) identifierIndex {
	idx := identifierIndex{urls: make(map[string][]string)}
	for _, id := range ids {
		if _, seen := idx.urls[id.ExternalID]; !seen {
			idx.ids = append(idx.ids, id.ExternalID)
		}
		idx.urls[id.ExternalID] = append(idx.urls[id.ExternalID], id.SourceURL)
	}
	return idx
}

func (idx identifierIndex) assign(res *GroupResult, externalID string, e Enrichment) {
	for _, u := range idx.urls[externalID] {
		res.Fields[u] = e
	}
}

func chunkIDs(ids []string, size int) [][]string {
	if size <= 0 {
		size = len(ids)
	}
	var chunks [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

// MusicEnricher resolves music identifiers, one concurrent group per entity kind.
type MusicEnricher struct {
	catalog  MusicCatalog
	workers  int
	logger   *zap.Logger
	recorder Recorder
}

func NewMusicEnricher(catalog MusicCatalog, workers int, logger *zap.Logger, recorder Recorder) *MusicEnricher {
	if workers <= 0 {
		workers = DefaultMusicWorkers
	}
	if recorder == nil {
		recorder = NopRecorder()
	}
	return &MusicEnricher{
		catalog:  catalog,
		workers:  workers,
		logger:   logger,
		recorder: recorder,
	}
}

// Lookup runs one group per kind present in byKind on a bounded pool and
// returns a result per dispatched kind. A failing group never cancels its siblings.
func (m *MusicEnricher) Lookup(ctx context.Context, byKind map[LinkKind][]Identifier) map[LinkKind]GroupResult {
	results := make([]GroupResult, len(MusicKinds))
	dispatched := make([]bool, len(MusicKinds))

	var g errgroup.Group
	g.SetLimit(m.workers)

	for i, kind := range MusicKinds {
		ids := byKind[kind]
		if len(ids) == 0 {
			continue
		}
		dispatched[i] = true
		g.Go(func() error {
			results[i] = m.lookupKind(ctx, kind, ids)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[LinkKind]GroupResult)
	for i, kind := range MusicKinds {
		if dispatched[i] {
			out[kind] = results[i]
		}
	}
	return out
}

func (m *MusicEnricher) lookupKind(ctx context.Context, kind LinkKind, ids []Identifier) GroupResult {
	idx := indexIdentifiers(ids)
	res := newGroupResult(kind)

	switch kind {
	case KindTrack:
		res.Err = lookupBatched(ctx, m, idx, &res, MaxTracksPerRequest, m.catalog.Tracks)
	case KindAlbum:
		res.Err = lookupBatched(ctx, m, idx, &res, MaxAlbumsPerRequest, m.catalog.Albums)
	case KindArtist:
		res.Err = lookupBatched(ctx, m, idx, &res, MaxArtistsPerRequest, m.catalog.Artists)
	case KindPlaylist:
		res.Err = m.lookupPlaylists(ctx, idx, &res)
	default:
		res.Err = fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	m.logger.Debug("Music lookup group finished",
		zap.String("kind", kind.String()),
		zap.Int("requested", len(idx.ids)),
		zap.Int("resolved", len(res.Fields)),
		zap.Error(res.Err))
	return res
}

func lookupBatched[T Enrichment](
	ctx context.Context,
	m *MusicEnricher,
	idx identifierIndex,
	res *GroupResult,
	size int,
	fetch func(context.Context, []string) (map[string]T, error),
) error {
	var errs []error
	kind := res.Kind.String()

	for _, chunk := range chunkIDs(idx.ids, size) {
		found, err := fetch(ctx, chunk)
		if err != nil {
			m.logger.Warn("Music lookup failed",
				zap.String("kind", kind),
				zap.Int("batch", len(chunk)),
				zap.Error(err))
			m.recorder.RecordLookup(ProviderMusic.String(), kind, LookupError)
			errs = append(errs, err)
			continue
		}

		for _, id := range chunk {
			info, ok := found[id]
			if !ok {
				m.logger.Debug("Music identifier not found", zap.String("kind", kind), zap.String("id", id))
				m.recorder.RecordLookup(ProviderMusic.String(), kind, LookupNotFound)
				continue
			}
			idx.assign(res, id, info)
			m.recorder.RecordLookup(ProviderMusic.String(), kind, LookupSuccess)
		}
	}
	return errors.Join(errs...)
}

// Playlists have no bulk endpoint and are fetched one at a time.
func (m *MusicEnricher) lookupPlaylists(ctx context.Context, idx identifierIndex, res *GroupResult) error {
	var errs []error
	for _, id := range idx.ids {
		info, err := m.catalog.Playlist(ctx, id)
		switch {
		case errors.Is(err, ErrNotFound) || (err == nil && info == nil):
			m.logger.Debug("Playlist not found", zap.String("id", id))
			m.recorder.RecordLookup(ProviderMusic.String(), KindPlaylist.String(), LookupNotFound)
		case err != nil:
			m.logger.Warn("Playlist lookup failed", zap.String("id", id), zap.Error(err))
			m.recorder.RecordLookup(ProviderMusic.String(), KindPlaylist.String(), LookupError)
			errs = append(errs, err)
		default:
			idx.assign(res, id, *info)
			m.recorder.RecordLookup(ProviderMusic.String(), KindPlaylist.String(), LookupSuccess)
		}
	}
	return errors.Join(errs...)
}

// VideoEnricher looks up video titles one identifier at a time. A failed
// lookup still classifies the URL as a video, named by its URL.
type VideoEnricher struct {
	catalog  VideoCatalog
	logger   *zap.Logger
	recorder Recorder
}

func NewVideoEnricher(catalog VideoCatalog, logger *zap.Logger, recorder Recorder) *VideoEnricher {
	if recorder == nil {
		recorder = NopRecorder()
	}
	return &VideoEnricher{
		catalog:  catalog,
		logger:   logger,
		recorder: recorder,
	}
}

func (v *VideoEnricher) Lookup(ctx context.Context, ids []Identifier) GroupResult {
	idx := indexIdentifiers(ids)
	res := newGroupResult(KindVideo)

	for _, id := range idx.ids {
		thumbnail := v.catalog.ThumbnailURL(id)

		title, err := v.catalog.VideoTitle(ctx, id)
		if err == nil && title != "" {
			idx.assign(&res, id, VideoInfo{Title: title, ThumbnailURL: thumbnail})
			v.recorder.RecordLookup(ProviderVideo.String(), KindVideo.String(), LookupSuccess)
			continue
		}

		v.logger.Warn("Video title lookup failed, using URL as name",
			zap.String("videoID", id),
			zap.Error(err))
		v.recorder.RecordLookup(ProviderVideo.String(), KindVideo.String(), LookupFallback)
		for _, u := range idx.urls[id] {
			res.Fields[u] = VideoInfo{Title: u, ThumbnailURL: thumbnail}
		}
	}
	return res
}

// WebEnricher fetches titles of generic pages with bounded concurrency. Pages
// that cannot be fetched are named by their host.
type WebEnricher struct {
	fetcher     PageFetcher
	concurrency int
	logger      *zap.Logger
	recorder    Recorder
}

func NewWebEnricher(fetcher PageFetcher, concurrency int, logger *zap.Logger, recorder Recorder) *WebEnricher {
	if concurrency <= 0 {
		concurrency = DefaultWebConcurrency
	}
	if recorder == nil {
		recorder = NopRecorder()
	}
	return &WebEnricher{
		fetcher:     fetcher,
		concurrency: concurrency,
		logger:      logger,
		recorder:    recorder,
	}
}

func (w *WebEnricher) Lookup(ctx context.Context, urls []string) GroupResult {
	infos := make([]PageInfo, len(urls))

	var g errgroup.Group
	g.SetLimit(w.concurrency)

	for i, pageURL := range urls {
		g.Go(func() error {
			info, err := w.fetcher.PageInfo(ctx, pageURL)
			if err != nil || info == nil || info.Title == "" {
				w.logger.Debug("Page title lookup failed", zap.String("url", pageURL), zap.Error(err))
				w.recorder.RecordLookup(ProviderWeb.String(), KindWebsite.String(), LookupFallback)
				fallback := PageInfo{Title: hostOf(pageURL)}
				if info != nil {
					fallback.ImageURL = info.ImageURL
				}
				infos[i] = fallback
				return nil
			}
			w.recorder.RecordLookup(ProviderWeb.String(), KindWebsite.String(), LookupSuccess)
			infos[i] = *info
			return nil
		})
	}
	_ = g.Wait()

	res := newGroupResult(KindWebsite)
	for i, pageURL := range urls {
		res.Fields[pageURL] = infos[i]
	}
	return res
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Hostname()
}
