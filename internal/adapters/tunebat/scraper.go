// Package tunebat scrapes per-track audio features from Tunebat track pages.
package tunebat

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-shiori/dom"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/net/html"

	"github.com/ewilliams-labs/melon/internal/core/domain"
	"github.com/ewilliams-labs/melon/internal/core/ports"
)

const (
	DefaultBaseURL  = "https://tunebat.com"
	DefaultMinDelay = time.Second
	DefaultMaxDelay = 6 * time.Second

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36"
)

// Scraper fetches one track page at a time and then waits a random delay
// before releasing the next fetch.
type Scraper struct {
	httpClient *http.Client
	baseURL    string
	minDelay   time.Duration
	maxDelay   time.Duration
	logger     hclog.Logger

	mu sync.Mutex
}

var _ ports.DetailScraper = (*Scraper)(nil)

// Config configures a Scraper. Zero durations disable the delay; a zero
// value Config uses DefaultBaseURL.
type Config struct {
	BaseURL    string
	MinDelay   time.Duration
	MaxDelay   time.Duration
	HTTPClient *http.Client
}

func NewScraper(cfg Config, logger hclog.Logger) *Scraper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 20 * time.Second}
	}
	if cfg.MaxDelay < cfg.MinDelay {
		cfg.MaxDelay = cfg.MinDelay
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Scraper{
		httpClient: cfg.HTTPClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		minDelay:   cfg.MinDelay,
		maxDelay:   cfg.MaxDelay,
		logger:     logger.Named("tunebat"),
	}
}

// GetTrackDetail scrapes the features page of a catalog track.
// Non-200 answers and challenge pages report domain.ErrDetailScraperBlocked.
func (s *Scraper) GetTrackDetail(ctx context.Context, songID string) (domain.TrackDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pageURL := fmt.Sprintf("%s/Info/-/%s", s.baseURL, url.PathEscape(songID))
	s.logger.Debug("fetching track page", "url", pageURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return domain.TrackDetail{}, fmt.Errorf("tunebat adapter: build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", s.baseURL+"/")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return domain.TrackDetail{}, fmt.Errorf("tunebat adapter: fetch %s: %w", songID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		s.logger.Warn("track page refused", "song_id", songID, "status", resp.StatusCode)
		return domain.TrackDetail{}, fmt.Errorf("tunebat adapter: status %d for %s: %w", resp.StatusCode, songID, domain.ErrDetailScraperBlocked)
	}

	detail, err := ParseDetail(resp.Body)
	if err != nil {
		return domain.TrackDetail{}, err
	}
	if detail == (domain.TrackDetail{}) {
		return domain.TrackDetail{}, fmt.Errorf("tunebat adapter: no features on page for %s: %w", songID, domain.ErrDetailScraperBlocked)
	}

	s.logger.Debug("track details scraped", "song_id", songID)
	s.pause(ctx)
	return detail, nil
}

// pause holds the fetch lock for a random duration in [minDelay, maxDelay).
// An ended context cuts it short; the scraped detail is kept either way.
func (s *Scraper) pause(ctx context.Context) {
	d := s.minDelay
	if spread := s.maxDelay - s.minDelay; spread > 0 {
		d += rand.N(spread)
	}
	if d <= 0 {
		return
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		s.logger.Debug("post-fetch delay interrupted", "error", ctx.Err())
	case <-timer.C:
	}
}

// Feature columns carry no label element, only a fixed class attribute.
const (
	energyClass       = "ant-col GFAiD Vwk-7 qYBvC ant-col-xs-8 ant-col-sm-8"
	danceabilityClass = "ant-col GFAiD qYBvC ant-col-xs-8 ant-col-sm-8"
	happinessClass    = "ant-col GFAiD qYBvC Vwk-7 ant-col-xs-8 ant-col-sm-8"
)

// ParseDetail reads the features of a track page. Missing fields stay empty.
func ParseDetail(r io.Reader) (domain.TrackDetail, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return domain.TrackDetail{}, fmt.Errorf("tunebat parser: %w", err)
	}

	paragraphs := dom.GetElementsByTagName(doc, "p")
	divs := dom.GetElementsByTagName(doc, "div")

	return domain.TrackDetail{
		Key:          labelledValue(paragraphs, "Key"),
		BPM:          labelledValue(paragraphs, "BPM"),
		Camelot:      labelledValue(paragraphs, "Camelot"),
		Popularity:   labelledValue(paragraphs, "Popularity"),
		Energy:       classValue(divs, energyClass),
		Danceability: classValue(divs, danceabilityClass),
		Happiness:    classValue(divs, happinessClass),
	}, nil
}

// labelledValue returns the text of the <p> right before the label <p>.
func labelledValue(paragraphs []*html.Node, label string) string {
	for _, p := range paragraphs {
		if strings.TrimSpace(dom.TextContent(p)) != label {
			continue
		}
		for prev := dom.PreviousElementSibling(p); prev != nil; prev = dom.PreviousElementSibling(prev) {
			if dom.TagName(prev) == "p" {
				return strings.TrimSpace(dom.TextContent(prev))
			}
		}
		return ""
	}
	return ""
}

// classValue matches the class attribute exactly, order included.
func classValue(divs []*html.Node, class string) string {
	for _, d := range divs {
		if dom.GetAttribute(d, "class") == class {
			return strings.Join(strings.Fields(dom.TextContent(d)), "")
		}
	}
	return ""
}
