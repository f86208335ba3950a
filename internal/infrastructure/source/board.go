package source

import (
	"context"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/graf262-max/legal-update-monitor/internal/domain"
	"github.com/graf262-max/legal-update-monitor/internal/scoring"
)

const minBoardTitleLen = 5

// boardPage is one bulletin-board listing to scrape. view, when set, builds
// the canonical detail URL from the row's document id (boards that only
// expose the id through an inline onclick handler).
type boardPage struct {
	url       string
	typeLabel string
	view      func(id string) string
}

// rowData is what a per-agency row parser extracts from one listing row.
// id is a stable per-document identifier used for within-fetch dedup; when
// the markup yields none, the parser falls back to the link or title.
type rowData struct {
	id    string
	title string
	link  string
	date  string
}

// boardCollector is the shared scraping loop behind the four agency-board
// adapters. Board markup is vendor-specific and unstable, so each agency
// supplies its own row selector and row parser; a row the parser cannot
// make sense of is skipped silently and never fails the page.
type boardCollector struct {
	deps        Deps
	source      domain.Source
	baseURL     string
	pages       []boardPage
	rowSelector string
	parseRow    func(base string, row *goquery.Selection) (rowData, bool)
	topical     *regexp.Regexp
	fallbackLaw string
	window      time.Duration
}

func (b *boardCollector) Source() domain.Source { return b.source }

// Collect scrapes every configured page. Pages fail independently; the
// adapter only reports an error when every page failed and nothing at all
// was parsed, so a single broken board cannot mask its sibling's rows.
func (b *boardCollector) Collect(ctx context.Context) ([]domain.LegalUpdateItem, error) {
	log := b.deps.logger()
	now := b.deps.now()

	seen := make(map[string]struct{})
	var items []domain.LegalUpdateItem
	var lastErr error
	failedPages := 0

	for _, page := range b.pages {
		doc, err := fetchDocument(ctx, b.deps.Client, page.url)
		if err != nil {
			log.Warn("board page failed", "source", b.source, "url", page.url, "error", err)
			failedPages++
			lastErr = err
			continue
		}

		doc.Find(b.rowSelector).Each(func(_ int, row *goquery.Selection) {
			if row.Find("th").Length() > 0 || row.HasClass("notice") {
				return
			}

			rd, ok := b.parseRow(b.baseURL, row)
			if !ok {
				return
			}
			if utf8.RuneCountInString(rd.title) < minBoardTitleLen {
				return
			}
			if b.deps.Registry.Excluded(rd.title) {
				return
			}
			if !withinWindow(rd.date, now, b.window) {
				return
			}

			key := rd.id
			if key == "" {
				key = rd.link
			}
			if key == "" {
				key = rd.title
			}
			if _, dup := seen[key]; dup {
				return
			}
			seen[key] = struct{}{}

			match := b.deps.Registry.Classify(rd.title)
			if !match.Matched && !b.topical.MatchString(rd.title) {
				return
			}

			law := b.fallbackLaw
			if match.Matched {
				law = match.Law.Name
			}

			link := rd.link
			if page.view != nil && rd.id != "" {
				link = page.view(rd.id)
			}
			if link == "" {
				link = page.url
			}

			item := domain.LegalUpdateItem{
				Source:  b.source,
				Type:    page.typeLabel,
				Title:   rd.title,
				Law:     law,
				PubDate: normalizeDate(rd.date),
				Link:    link,
			}
			item.Importance = scoring.Score(item)
			items = append(items, item)
		})
	}

	if len(items) == 0 && failedPages == len(b.pages) && lastErr != nil {
		return nil, &domain.AdapterError{Source: b.source, Kind: domain.KindFetch, Detail: lastErr.Error()}
	}
	return items, nil
}

func normalizeDate(s string) string {
	t, ok := parseDate(s)
	if !ok {
		return ""
	}
	return formatDate(t)
}

// rowDateText scans the row's cells for the first thing that looks like a
// date; boards disagree on which column carries it.
func rowDateText(row *goquery.Selection) string {
	var found string
	row.Find("td, span, .date, .reg_date").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		text := cell.Text()
		if dateRe.MatchString(text) {
			found = dateRe.FindString(text)
			return false
		}
		return true
	})
	return found
}
