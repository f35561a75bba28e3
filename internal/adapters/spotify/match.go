package spotify

import (
	"strings"
	"unicode"
)

// searchMatchThreshold is the minimum ScoreResult for a search hit to count.
const searchMatchThreshold = 0.8

// noiseTokens mark release variants that do not change which song it is.
var noiseTokens = map[string]struct{}{
	"clean":      {},
	"deluxe":     {},
	"edition":    {},
	"edit":       {},
	"explicit":   {},
	"feat":       {},
	"featuring":  {},
	"ft":         {},
	"live":       {},
	"mix":        {},
	"mono":       {},
	"radio":      {},
	"remaster":   {},
	"remastered": {},
	"stereo":     {},
	"version":    {},
}

// Normalize cleans a search string for comparison. Variant suffixes such as
// "(Live)" or "- Remastered 2011" are dropped; the rest is kept.
func Normalize(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}

	lowered := strings.ToLower(strings.TrimSpace(input))
	trimmed := stripVariantSuffixes(lowered)
	return strings.Join(strings.Fields(cleanSeparators(trimmed)), " ")
}

// ScoreResult returns the similarity of two artist+title pairs in [0, 1].
func ScoreResult(targetArtist, targetTitle, actualArtist, actualTitle string) float64 {
	target := Normalize(strings.TrimSpace(targetArtist + " " + targetTitle))
	actual := Normalize(strings.TrimSpace(actualArtist + " " + actualTitle))
	if target == "" || actual == "" {
		return 0
	}
	return similarity(target, actual)
}

// queryTerm prepares a search query field: bracketed segments and noise
// tokens are removed. It falls back to the raw input if nothing is left.
func queryTerm(input string) string {
	lower := strings.ToLower(input)
	tokens := strings.Fields(cleanSeparators(stripBracketedSegments(lower)))

	kept := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, drop := noiseTokens[token]; !drop {
			kept = append(kept, token)
		}
	}
	if len(kept) == 0 {
		return strings.TrimSpace(input)
	}
	return strings.Join(kept, " ")
}

func stripVariantSuffixes(input string) string {
	trimmed := strings.TrimSpace(input)
	for {
		next := trimBracketedSuffix(trimmed, '(', ')')
		next = trimBracketedSuffix(next, '[', ']')
		next = trimDashSuffix(next)
		if next == trimmed {
			return trimmed
		}
		trimmed = strings.TrimSpace(next)
	}
}

func trimBracketedSuffix(input string, opening, closing byte) string {
	if input == "" || input[len(input)-1] != closing {
		return input
	}
	idx := strings.LastIndexByte(input, opening)
	if idx == -1 || idx >= len(input)-1 {
		return input
	}
	if hasNoiseToken(input[idx+1 : len(input)-1]) {
		return strings.TrimSpace(input[:idx])
	}
	return input
}

func trimDashSuffix(input string) string {
	idx := strings.LastIndex(input, " - ")
	if idx == -1 {
		return input
	}
	if hasNoiseToken(input[idx+3:]) {
		return strings.TrimSpace(input[:idx])
	}
	return input
}

func hasNoiseToken(input string) bool {
	for _, token := range strings.Fields(cleanSeparators(strings.ToLower(input))) {
		if _, ok := noiseTokens[token]; ok {
			return true
		}
	}
	return false
}

func stripBracketedSegments(input string) string {
	var out strings.Builder
	depth := 0
	for _, r := range input {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				out.WriteRune(r)
			}
		}
	}
	return out.String()
}

// cleanSeparators collapses every run of non-alphanumerics into one space.
func cleanSeparators(input string) string {
	var out strings.Builder
	lastSpace := false
	for _, r := range input {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			out.WriteRune(' ')
			lastSpace = true
		}
	}
	return out.String()
}

func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshteinDistance(a, b))/float64(maxLen)
}

func levenshteinDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		copy(prev, curr)
	}

	return prev[len(rb)]
}

func joinArtistNames(track spotifyTrack) string {
	parts := make([]string, 0, len(track.Artists))
	for _, artist := range track.Artists {
		parts = append(parts, artist.Name)
	}
	return strings.Join(parts, " ")
}
