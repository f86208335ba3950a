package source

import (
	"context"
	"encoding/xml"
	"regexp"
	"strings"
	"time"

	"github.com/graf262-max/legal-update-monitor/internal/domain"
	"github.com/graf262-max/legal-update-monitor/internal/infrastructure/httpx"
	"github.com/graf262-max/legal-update-monitor/internal/scoring"
)

const moelFeedURL = "https://www.moel.go.kr/rss/lawinfo.do"

// Labor-adjacent items are kept even when no tracked law matches; the feed
// announces decrees the registry keywords alone would miss.
var laborPattern = regexp.MustCompile(`직업안정|채용절차|근로기준|고용|노동|고용보험|산업안전|최저임금|퇴직연금`)

// MoelCollector parses the labor ministry's legislative-notice RSS feed.
type MoelCollector struct {
	deps    Deps
	feedURL string
	window  time.Duration
}

// NewMoelCollector builds the RSS adapter; window bounds item age.
func NewMoelCollector(deps Deps, window time.Duration) *MoelCollector {
	if window <= 0 {
		window = 48 * time.Hour
	}
	return &MoelCollector{deps: deps, feedURL: moelFeedURL, window: window}
}

func (c *MoelCollector) Source() domain.Source { return domain.SourceMoel }

type moelFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Items   []moelItem `xml:"channel>item"`
}

type moelItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	DCDate      string `xml:"date"` // dc:date, "2006-01-02 15:04:05"
	PubDate     string `xml:"pubDate"`
}

func (c *MoelCollector) Collect(ctx context.Context) ([]domain.LegalUpdateItem, error) {
	log := c.deps.logger()

	body, err := httpx.Get(ctx, c.deps.Client, c.feedURL, "application/rss+xml, application/xml, text/xml")
	if err != nil {
		return nil, &domain.AdapterError{Source: c.Source(), Kind: domain.KindFetch, Detail: err.Error()}
	}

	var feed moelFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, &domain.AdapterError{Source: c.Source(), Kind: domain.KindFetch, Detail: "feed malformed: " + err.Error()}
	}

	now := c.deps.now()
	var items []domain.LegalUpdateItem
	for _, entry := range feed.Items {
		title := cleanCDATA(entry.Title)
		if title == "" || c.deps.Registry.Excluded(title) {
			continue
		}

		dateStr := entry.DCDate
		if dateStr == "" {
			dateStr = entry.PubDate
		}
		pubDate, ok := c.itemDate(dateStr)
		if ok && now.Sub(pubDate) > c.window {
			continue
		}

		match := c.deps.Registry.Classify(title)
		if !match.Matched && !laborPattern.MatchString(title) {
			continue
		}

		law := "노동관계법령"
		if match.Matched {
			law = match.Law.Name
		}

		item := domain.LegalUpdateItem{
			Source:  domain.SourceMoel,
			Type:    "입법·행정예고",
			Title:   title,
			Law:     law,
			Link:    strings.TrimSpace(entry.Link),
			Content: cleanCDATA(entry.Description),
		}
		if ok {
			item.PubDate = formatDate(pubDate)
		}
		item.Importance = scoring.Score(item)
		items = append(items, item)
	}

	log.Debug("feed parsed", "entries", len(feed.Items), "kept", len(items))
	return items, nil
}

func (c *MoelCollector) itemDate(s string) (time.Time, bool) {
	if t, ok := parseDate(s); ok {
		return t, true
	}
	// RFC 822 style pubDate fallback
	if t, err := time.Parse(time.RFC1123Z, strings.TrimSpace(s)); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// cleanCDATA strips CDATA markers feeds occasionally leak into text nodes.
func cleanCDATA(s string) string {
	s = strings.ReplaceAll(s, "[[CDATA[", "")
	s = strings.ReplaceAll(s, "]]", "")
	return strings.TrimSpace(s)
}
