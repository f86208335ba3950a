// Package source contains one collector per external system: the statute
// registry API, the legislature open-data API, the labor-ministry RSS feed,
// and four agency bulletin boards.
package source

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/graf262-max/legal-update-monitor/internal/infrastructure/httpx"
	"github.com/graf262-max/legal-update-monitor/internal/laws"
)

// Deps carries the collaborators every collector needs. Now is overridable
// so tests can pin the recency window.
type Deps struct {
	Client   *http.Client
	Registry *laws.Registry
	Logger   *slog.Logger
	Now      func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

var dateRe = regexp.MustCompile(`(\d{4})[.\-/]\s?(\d{1,2})[.\-/](\d{1,2})`)
var compactDateRe = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})$`)

// parseDate understands YYYY-MM-DD, YYYY.MM.DD, YYYY/MM/DD and compact
// YYYYMMDD strings anywhere in the input. Returns ok=false when no date is
// found; callers keep such rows rather than guessing.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	m := dateRe.FindStringSubmatch(s)
	if m == nil {
		m = compactDateRe.FindStringSubmatch(s)
	}
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-1-2", m[1]+"-"+m[2]+"-"+m[3])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// withinWindow keeps undated rows and anything newer than now-window. A
// small forward allowance covers timezone skew on freshly posted notices.
func withinWindow(dateStr string, now time.Time, window time.Duration) bool {
	t, ok := parseDate(dateStr)
	if !ok {
		return true
	}
	if t.After(now.Add(24 * time.Hour)) {
		return false
	}
	return now.Sub(t) <= window
}

// fetchDocument loads a listing page into a goquery tree.
func fetchDocument(ctx context.Context, client *http.Client, url string) (*goquery.Document, error) {
	body, err := httpx.Get(ctx, client, url, "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

func absoluteURL(base, href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		return base + "/" + href
	}
	return base + href
}
