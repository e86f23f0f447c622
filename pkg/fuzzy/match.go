package fuzzy

import (
	"regexp"
	"strings"
)

const (
	titleWeight    = 0.7
	artistWeight   = 0.3

	// artistTitleParts is the number of parts in an "Artist - Title" video title.
	artistTitleParts = 2
)

var videoNoisePatterns = compilePatterns(
	`\(Official Video\)`,
	`\(Official Music Video\)`,
	`\(Official Audio\)`,
	`\(Official Lyric Video\)`,
	`\(Lyric Video\)`,
	`\(Lyrics\)`,
	`\(Visualizer\)`,
	`\[Official Video\]`,
	`\[Official Music Video\]`,
	`\[Official Audio\]`,
	`\[Lyric Video\]`,
	`\[Lyrics\]`,
	`\(HD\)`,
	`\[HD\]`,
	`\(4K\)`,
	`\[4K\]`,
)

func compilePatterns(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(`(?i)`+p))
	}
	return compiled
}

// CleanVideoTitle removes the usual video-only decorations such as
// "(Official Video)" or "[HD]" from a title.
func CleanVideoTitle(title string) string {
	cleaned := title
	for _, re := range videoNoisePatterns {
		cleaned = re.ReplaceAllString(cleaned, "")
	}
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(cleaned, " "))
}

// SplitVideoTitle splits a cleaned "Artist - Title" video title. Without a
// separator the whole string is the title and artist is empty.
func SplitVideoTitle(videoTitle string) (artist, title string) {
	cleaned := CleanVideoTitle(videoTitle)
	parts := strings.SplitN(cleaned, " - ", artistTitleParts)
	if len(parts) == artistTitleParts {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return "", cleaned
}

// TrackScore rates a candidate track against a wanted title and artist.
// Title similarity dominates. The artist part is the best similarity between
// any wanted name and any credited name; without a wanted artist the
// candidate's "artists title" is compared to the wanted title instead, since
// an unsplit video title usually carries the artist.
func (n *Normalizer) TrackScore(wantTitle, wantArtist, candidateTitle, candidateArtists string) float64 {
	title := n.NormalizeTitle(wantTitle)
	candTitle := n.NormalizeTitle(candidateTitle)
	titleScore := n.CalculateSimilarity(candTitle, title)

	credited := n.SplitArtists(candidateArtists)
	wanted := n.SplitArtists(wantArtist)
	if len(wanted) == 0 {
		combined := strings.TrimSpace(strings.Join(credited, " ") + " " + candTitle)
		return titleWeight*titleScore + artistWeight*n.CalculateSimilarity(combined, title)
	}

	artistScore := 0.0
	for _, w := range wanted {
		for _, c := range credited {
			artistScore = max(artistScore, n.CalculateSimilarity(w, c))
		}
	}
	return titleWeight*titleScore + artistWeight*artistScore
}
