package core

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

const (
	// MusicDomainToken must appear in a URL before the music pattern is tried
	MusicDomainToken = "spotify"
	// VideoDomainToken must appear in a URL for it to be treated as a video link
	VideoDomainToken = "youtu"
	// VideoIDLength is the fixed length of a video identifier
	VideoIDLength = 11
)

var (
	// Optional intl-xx locale segment, then entity kind and id. Query and fragment are not part of the id.
	musicURLRegex = regexp.MustCompile(`^https://open\.spotify\.com/(?:intl-[a-zA-Z-]+/)?([^/?#]+)/([^/?#]+)`)
	videoIDRegex  = regexp.MustCompile(`^[\w-]{11}$`)

	// Path prefixes on the full video host that carry the id as the next segment.
	videoPathPrefixes = []string{"embed/", "shorts/", "v/", "live/"}
)

// Classifier decides which provider, if any, can enrich a URL.
type Classifier struct {
	logger *zap.Logger
}

func NewClassifier(logger *zap.Logger) *Classifier {
	return &Classifier{logger: logger}
}

// Classify returns the provider identifier for rawURL. ok is false when no
// provider applies or the URL could not be parsed; parse failures are logged.
func (c *Classifier) Classify(rawURL string) (Identifier, bool) {
	if strings.Contains(rawURL, MusicDomainToken) {
		id, err := ParseMusicURL(rawURL)
		if err != nil {
			c.logger.Warn("Skipping music URL", zap.String("url", rawURL), zap.Error(err))
			return Identifier{}, false
		}
		return id, true
	}

	if strings.Contains(rawURL, VideoDomainToken) {
		videoID, err := ParseVideoID(rawURL)
		if err != nil {
			c.logger.Warn("Could not parse video link", zap.String("url", rawURL), zap.Error(err))
			return Identifier{}, false
		}
		return Identifier{
			Provider:   ProviderVideo,
			Kind:       KindVideo,
			ExternalID: videoID,
			SourceURL:  rawURL,
		}, true
	}

	return Identifier{}, false
}

// ParseMusicURL extracts the entity kind and id from a music service URL.
func ParseMusicURL(rawURL string) (Identifier, error) {
	matches := musicURLRegex.FindStringSubmatch(rawURL)
	if len(matches) < 3 {
		return Identifier{}, fmt.Errorf("%w: %s", ErrUnparseableURL, rawURL)
	}

	kind, err := ParseMusicKind(matches[1])
	if err != nil {
		return Identifier{}, fmt.Errorf("%w: %s", err, matches[1])
	}

	return Identifier{
		Provider:   ProviderMusic,
		Kind:       kind,
		ExternalID: matches[2],
		SourceURL:  rawURL,
	}, nil
}

// ParseVideoID extracts a video identifier from watch, share, embed and
// shorts links. Other pages on the video host, such as channels, have none.
func ParseVideoID(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnparseableURL, err)
	}

	path := strings.Trim(u.Path, "/")
	var videoID string
	switch {
	case strings.EqualFold(u.Hostname(), "youtu.be"):
		videoID, _, _ = strings.Cut(path, "/")
	case path == "watch":
		videoID = u.Query().Get("v")
	default:
		for _, prefix := range videoPathPrefixes {
			if rest, ok := strings.CutPrefix(path, prefix); ok {
				videoID, _, _ = strings.Cut(rest, "/")
				break
			}
		}
	}

	if videoID == "" {
		return "", fmt.Errorf("%w: no video id in %s", ErrUnparseableURL, rawURL)
	}
	if !videoIDRegex.MatchString(videoID) {
		return "", fmt.Errorf("%w: invalid video id %q", ErrUnparseableURL, videoID)
	}
	return videoID, nil
}

// IsWebCandidate reports whether rawURL is left to generic page lookup.
// URLs carrying either provider token never are, even when they failed to parse.
func IsWebCandidate(rawURL string) bool {
	return !strings.Contains(rawURL, MusicDomainToken) && !strings.Contains(rawURL, VideoDomainToken)
}
