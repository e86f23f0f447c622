package core

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrNotFound is returned by collaborators when the provider does not know an identifier.
	ErrNotFound = errors.New("not found")
	// ErrUnknownKind is returned when a music URL names an entity kind we cannot enrich.
	ErrUnknownKind = errors.New("unknown entity kind")
	// ErrUnparseableURL is returned when a provider URL does not yield an identifier.
	ErrUnparseableURL = errors.New("unparseable provider URL")
	// ErrNotAuthenticated is returned by collaborators used before authentication.
	ErrNotAuthenticated = errors.New("client not authenticated")
)

type LinkKind int

const (
	// KindUnclassified marks a record that no enrichment applied to
	KindUnclassified LinkKind = iota
	// KindTrack is a music track
	KindTrack
	// KindAlbum is a music album
	KindAlbum
	// KindPlaylist is a music playlist
	KindPlaylist
	// KindArtist is a music artist
	KindArtist
	// KindVideo is a video clip
	KindVideo
	// KindWebsite is a generic web page
	KindWebsite
)

var kindNames = map[LinkKind]string{
	KindTrack:    "track",
	KindAlbum:    "album",
	KindPlaylist: "playlist",
	KindArtist:   "artist",
	KindVideo:    "video",
	KindWebsite:  "website",
}

func (k LinkKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unclassified"
}

// ParseMusicKind maps a music URL path segment to its kind.
func ParseMusicKind(segment string) (LinkKind, error) {
	switch segment {
	case "track":
		return KindTrack, nil
	case "album":
		return KindAlbum, nil
	case "playlist":
		return KindPlaylist, nil
	case "artist":
		return KindArtist, nil
	default:
		return KindUnclassified, ErrUnknownKind
	}
}

// MusicKinds lists the music entity kinds in dispatch order.
var MusicKinds = []LinkKind{KindTrack, KindAlbum, KindPlaylist, KindArtist}

type Provider int

const (
	// ProviderNone means no enrichment provider applies
	ProviderNone Provider = iota
	// ProviderMusic is the music streaming service
	ProviderMusic
	// ProviderVideo is the video service
	ProviderVideo
	// ProviderWeb is plain page-title lookup
	ProviderWeb
)

func (p Provider) String() string {
	switch p {
	case ProviderMusic:
		return "spotify"
	case ProviderVideo:
		return "youtube"
	case ProviderWeb:
		return "web"
	default:
		return "none"
	}
}

// Identifier is a provider-specific reference derived from a link URL.
type Identifier struct {
	Provider   Provider
	Kind       LinkKind
	ExternalID string
	SourceURL  string
}

// LinkRecord is one unique URL found in a transcript together with its
// attribution and whatever metadata enrichment produced.
type LinkRecord struct {
	URL       string
	Sender    string
	Timestamp string
	Kind      LinkKind
	Name      string
	Artists   string
	ImageURL  string
}

type linkRecordJSON struct {
	URL       string `json:"url"`
	User      string `json:"user"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type,omitempty"`
	Name      string `json:"name,omitempty"`
	Artists   string `json:"artists,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
}

// MarshalJSON emits the upload wire format; enrichment fields are omitted when empty.
func (r LinkRecord) MarshalJSON() ([]byte, error) {
	out := linkRecordJSON{
		URL:       r.URL,
		User:      r.Sender,
		Timestamp: r.Timestamp,
		Name:      r.Name,
		Artists:   r.Artists,
		ImageURL:  r.ImageURL,
	}
	if r.Kind != KindUnclassified {
		out.Type = r.Kind.String()
	}
	return json.Marshal(out)
}

// Enrichment is the metadata a provider returned for one URL. The concrete
// type determines which LinkRecord fields it may set.
type Enrichment interface {
	Kind() LinkKind
}

type TrackInfo struct {
	Name     string
	Artists  string
	ImageURL string
}

type AlbumInfo struct {
	Name     string
	Artists  string
	ImageURL string
}

type PlaylistInfo struct {
	Name     string
	ImageURL string
}

type ArtistInfo struct {
	Name     string
	ImageURL string
}

type VideoInfo struct {
	Title        string
	ThumbnailURL string
}

type PageInfo struct {
	Title    string
	ImageURL string
}

func (TrackInfo) Kind() LinkKind    { return KindTrack }
func (AlbumInfo) Kind() LinkKind    { return KindAlbum }
func (PlaylistInfo) Kind() LinkKind { return KindPlaylist }
func (ArtistInfo) Kind() LinkKind   { return KindArtist }
func (VideoInfo) Kind() LinkKind    { return KindVideo }
func (PageInfo) Kind() LinkKind     { return KindWebsite }

// Options selects which enrichments run for one analysis.
type Options struct {
	EnableMusic           bool
	EnableVideo           bool
	EnableWeb             bool
	UpdateCuratedPlaylist bool
}

// TrackCandidate is a music search hit used to match video titles to tracks.
type TrackCandidate struct {
	ID      string
	Name    string
	Artists string
	URL     string
}

// SongQuery is a title/artist pair extracted from free text.
type SongQuery struct {
	Title  string
	Artist string
}

// MusicCatalog resolves music identifiers. Bulk methods accept at most the
// provider's per-request cap and return only the identifiers they resolved.
type MusicCatalog interface {
	Tracks(ctx context.Context, ids []string) (map[string]TrackInfo, error)
	Albums(ctx context.Context, ids []string) (map[string]AlbumInfo, error)
	Artists(ctx context.Context, ids []string) (map[string]ArtistInfo, error)
	Playlist(ctx context.Context, id string) (*PlaylistInfo, error)
}

// PlaylistStore manages the curated playlist and track search on the music service.
type PlaylistStore interface {
	FindPlaylist(ctx context.Context, name string) (id string, found bool, err error)
	CreatePlaylist(ctx context.Context, name string) (string, error)
	PlaylistTrackIDs(ctx context.Context, playlistID string) ([]string, error)
	AddTracks(ctx context.Context, playlistID string, trackIDs []string) error
	SearchTracks(ctx context.Context, query string) ([]TrackCandidate, error)
	CanModifyPlaylists() bool
}

// VideoCatalog looks up video titles, one identifier per request. Thumbnail
// URLs are derived from the identifier without a request.
type VideoCatalog interface {
	VideoTitle(ctx context.Context, videoID string) (string, error)
	ThumbnailURL(videoID string) string
}

// DedupStore is a set of seen keys used to diff track lists.
type DedupStore interface {
	Load(keys []string)
	Missing(keys []string) []string
}

// DedupStoreFactory builds a DedupStore sized for existing plus incoming keys.
type DedupStoreFactory func(existing, incoming int) DedupStore

// PageFetcher looks up the title and preview image of a generic web page.
type PageFetcher interface {
	PageInfo(ctx context.Context, pageURL string) (*PageInfo, error)
}

// SongExtractor extracts a song title and artist from free text such as a video title.
type SongExtractor interface {
	ExtractSongInfo(ctx context.Context, text string) (*SongQuery, error)
}

// Recorder receives operational counters.
type Recorder interface {
	RecordAnalysis(status string, links int)
	RecordLookup(provider, kind, status string)
	RecordPlaylistAdds(count int)
}

type nopRecorder struct{}

func (nopRecorder) RecordAnalysis(string, int)         {}
func (nopRecorder) RecordLookup(string, string, string) {}
func (nopRecorder) RecordPlaylistAdds(int)              {}

// NopRecorder discards all measurements.
func NopRecorder() Recorder {
	return nopRecorder{}
}
