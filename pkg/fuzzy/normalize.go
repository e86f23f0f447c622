// Package fuzzy normalizes song titles and artist credits and scores how
// closely a search hit matches a title taken from a video.
package fuzzy

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// Bracketed credit or version tags: "(feat. X)", "[Remastered 2011]", "(Radio Edit)".
	bracketTagRegex = regexp.MustCompile(`(?i)\s*[\(\[][^\)\]]*\b(?:feat|ft|featuring|remix|remixed|remaster|remastered|radio edit|deluxe|extended|live)\b[^\)\]]*[\)\]]`)
	// Dash-suffixed version tags as the music service writes them: "- 2011 Remaster", "- Radio Edit".
	dashTagRegex = regexp.MustCompile(`(?i)\s+-\s+[^-]*\b(?:remix|remaster|remastered|radio edit|single version|live)\b[^-]*$`)
	// Unbracketed featuring credit running to the end of the title.
	trailingFeatRegex = regexp.MustCompile(`(?i)\s+(?:feat\.?|ft\.?|featuring)\s+.*$`)
	// Separators between names in an artist credit.
	creditSplitRegex = regexp.MustCompile(`(?i)\s*(?:,|&|\+|\bx\b|\band\b|\bvs\b\.?|\bfeat\b\.?|\bft\b\.?|\bfeaturing\b)\s*`)

	punctRegex      = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// NormalizeTitle strips featuring credits and version tags, then folds case,
// accents and punctuation. A title that is nothing but a tag word, such as
// "Remix", survives.
func (n *Normalizer) NormalizeTitle(title string) string {
	title = bracketTagRegex.ReplaceAllString(title, "")
	title = dashTagRegex.ReplaceAllString(title, "")
	title = trailingFeatRegex.ReplaceAllString(title, "")
	return fold(title)
}

// SplitArtists breaks a credit such as "Daft Punk, Pharrell Williams" or
// "Calvin Harris feat. Rihanna" into folded names.
func (n *Normalizer) SplitArtists(credit string) []string {
	var names []string
	for _, part := range creditSplitRegex.Split(credit, -1) {
		if name := fold(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func fold(text string) string {
	text = norm.NFKD.String(text)

	var result strings.Builder
	for _, r := range text {
		if !unicode.IsMark(r) {
			result.WriteRune(r)
		}
	}

	text = punctRegex.ReplaceAllString(result.String(), " ")
	text = whitespaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(strings.ToLower(text))
}

// CalculateSimilarity returns the longest common subsequence length relative
// to the longer input, counted in runes, in [0, 1].
func (n *Normalizer) CalculateSimilarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}

	r1, r2 := []rune(s1), []rune(s2)
	if len(r1) == 0 || len(r2) == 0 {
		return 0.0
	}

	return float64(longestCommonSubsequence(r1, r2)) / float64(max(len(r1), len(r2)))
}

func longestCommonSubsequence(r1, r2 []rune) int {
	prev := make([]int, len(r2)+1)
	cur := make([]int, len(r2)+1)

	for i := 1; i <= len(r1); i++ {
		for j := 1; j <= len(r2); j++ {
			if r1[i-1] == r2[j-1] {
				cur[j] = prev[j-1] + 1
			} else {
				cur[j] = max(prev[j], cur[j-1])
			}
		}
		prev, cur = cur, prev
	}

	return prev[len(r2)]
}
