package genius

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
)

// sectionMarker finds the first structural label of a lyrics page. Anything
// before it is page chrome (contributor counts, translations, blurbs).
var sectionMarker = regexp.MustCompile(`\[(Verse|Chorus|Pre-Chorus|Intro|Bridge|Hook|Refrain|Outro)`)

// ParseLyrics extracts the lyrics text from a song page. It returns "" when
// the page has no lyrics container.
func ParseLyrics(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("genius parser: %w", err)
	}

	containers := dom.QuerySelectorAll(doc, `[data-lyrics-container="true"]`)
	if len(containers) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(containers))
	for _, c := range containers {
		for _, excluded := range dom.QuerySelectorAll(c, `[data-exclude-from-selection="true"]`) {
			if excluded.Parent != nil {
				excluded.Parent.RemoveChild(excluded)
			}
		}
		for _, br := range dom.QuerySelectorAll(c, "br") {
			br.Parent.InsertBefore(dom.CreateTextNode("\n"), br)
		}
		parts = append(parts, dom.TextContent(c))
	}

	text := strings.Join(parts, "\n")
	if loc := sectionMarker.FindStringIndex(text); loc != nil {
		text = text[loc[0]:]
	}
	return strings.TrimSpace(text), nil
}

// ParseTrackLinks returns the song page links of an artist page in page order.
func ParseTrackLinks(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("genius parser: %w", err)
	}

	links := []string{}
	for _, card := range dom.QuerySelectorAll(doc, ".mini_card_grid-song .mini_card") {
		if href := strings.TrimSpace(dom.GetAttribute(card, "href")); href != "" {
			links = append(links, href)
		}
	}
	return links, nil
}
