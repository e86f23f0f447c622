package core

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Orchestrator classifies the URLs of a LinkSet, fans lookups out to the
// configured enrichers and folds the results back into the set. Any of the
// enrichers may be nil, in which case that provider is skipped.
type Orchestrator struct {
	classifier *Classifier
	music      *MusicEnricher
	video      *VideoEnricher
	web        *WebEnricher
	playlist   *PlaylistSync
	matcher    *TrackMatcher
	logger     *zap.Logger
}

type OrchestratorDeps struct {
	Music    *MusicEnricher
	Video    *VideoEnricher
	Web      *WebEnricher
	Playlist *PlaylistSync
	Matcher  *TrackMatcher
}

func NewOrchestrator(deps OrchestratorDeps, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		classifier: NewClassifier(logger.Named("classifier")),
		music:      deps.Music,
		video:      deps.Video,
		web:        deps.Web,
		playlist:   deps.Playlist,
		matcher:    deps.Matcher,
		logger:     logger,
	}
}

// CanUpdatePlaylist reports whether a curated playlist update can take effect.
func (o *Orchestrator) CanUpdatePlaylist() bool {
	return o.playlist != nil && o.playlist.Writable()
}

// plan is the partition of a LinkSet's URLs by provider and kind.
type plan struct {
	music map[LinkKind][]Identifier
	video []Identifier
	web   []string
	idOf  map[string]string
	total int
}

func (o *Orchestrator) partition(urls []string, opts Options) plan {
	p := plan{
		music: make(map[LinkKind][]Identifier),
		idOf:  make(map[string]string),
	}

	for _, u := range urls {
		id, ok := o.classifier.Classify(u)
		if !ok {
			if opts.EnableWeb && IsWebCandidate(u) {
				p.web = append(p.web, u)
				p.total++
			}
			continue
		}

		switch id.Provider {
		case ProviderMusic:
			if !opts.EnableMusic {
				continue
			}
			p.music[id.Kind] = append(p.music[id.Kind], id)
		case ProviderVideo:
			if !opts.EnableVideo {
				continue
			}
			p.video = append(p.video, id)
		default:
			continue
		}
		p.idOf[u] = id.ExternalID
		p.total++
	}
	return p
}

// Enrich populates metadata in set according to opts. Lookup failures only
// leave the affected records unenriched; Enrich itself never fails.
func (o *Orchestrator) Enrich(ctx context.Context, set *LinkSet, opts Options) {
	p := o.partition(set.URLs(), opts)
	if p.total == 0 {
		return
	}

	var (
		musicResults map[LinkKind]GroupResult
		videoResult  *GroupResult
		webResult    *GroupResult
		g            errgroup.Group
	)

	if o.music != nil && len(p.music) > 0 {
		g.Go(func() error {
			musicResults = o.music.Lookup(ctx, p.music)
			return nil
		})
	}
	if o.video != nil && len(p.video) > 0 {
		g.Go(func() error {
			res := o.video.Lookup(ctx, p.video)
			videoResult = &res
			return nil
		})
	}
	if o.web != nil && len(p.web) > 0 {
		g.Go(func() error {
			res := o.web.Lookup(ctx, p.web)
			webResult = &res
			return nil
		})
	}
	_ = g.Wait()

	musicOK := true
	for _, kind := range MusicKinds {
		res, ok := musicResults[kind]
		if !ok {
			continue
		}
		if res.Err != nil {
			musicOK = false
		}
		o.merge(set, res)
	}
	if videoResult != nil {
		o.merge(set, *videoResult)
	}
	if webResult != nil {
		o.merge(set, *webResult)
	}

	if opts.UpdateCuratedPlaylist && opts.EnableMusic {
		o.syncPlaylist(ctx, set, p, musicOK)
	}
}

// merge applies a group's fields in record order so the outcome does not
// depend on map iteration.
func (o *Orchestrator) merge(set *LinkSet, res GroupResult) {
	for _, u := range set.URLs() {
		if e, ok := res.Fields[u]; ok {
			set.Apply(u, e)
		}
	}
}

func (o *Orchestrator) syncPlaylist(ctx context.Context, set *LinkSet, p plan, musicOK bool) {
	if o.playlist == nil {
		return
	}
	if !musicOK {
		o.logger.Warn("Skipping playlist update, music lookups failed")
		return
	}

	var trackIDs []string
	for _, u := range set.URLsOfKind(KindTrack) {
		trackIDs = append(trackIDs, p.idOf[u])
	}
	trackIDs = append(trackIDs, o.matchVideos(ctx, set)...)

	if len(trackIDs) == 0 {
		o.logger.Debug("No tracks to add to playlist")
		return
	}

	if _, err := o.playlist.Sync(ctx, trackIDs); err != nil {
		o.logger.Warn("Playlist update failed", zap.Error(err))
	}
}

// matchVideos maps titled video records to music tracks. Videos named by
// their own URL had no title lookup and are skipped.
func (o *Orchestrator) matchVideos(ctx context.Context, set *LinkSet) []string {
	if o.matcher == nil {
		return nil
	}

	var ids []string
	for _, u := range set.URLsOfKind(KindVideo) {
		rec, _ := set.Get(u)
		if rec.Name == "" || rec.Name == rec.URL {
			continue
		}
		if track, ok := o.matcher.Match(ctx, rec.Name); ok {
			ids = append(ids, track.ID)
		}
	}
	return ids
}
