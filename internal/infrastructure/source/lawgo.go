package source

import (
	"context"
	"encoding/xml"
	"net/url"
	"strings"

	"github.com/graf262-max/legal-update-monitor/internal/domain"
	"github.com/graf262-max/legal-update-monitor/internal/infrastructure/httpx"
	"github.com/graf262-max/legal-update-monitor/internal/scoring"
)

const lawGoBaseURL = "https://www.law.go.kr"

// LawGoCollector queries the national statute registry's search API once per
// tracked law and keeps promulgations inside a trailing window.
type LawGoCollector struct {
	deps         Deps
	apiKey       string
	baseURL      string
	windowMonths int
}

// NewLawGoCollector requires the registry API identifier (OC). Callers check
// the credential before wiring; an empty key here is a programming error, not
// a runtime skip.
func NewLawGoCollector(deps Deps, apiKey string, windowMonths int) *LawGoCollector {
	if windowMonths <= 0 {
		windowMonths = 6
	}
	return &LawGoCollector{
		deps:         deps,
		apiKey:       apiKey,
		baseURL:      lawGoBaseURL,
		windowMonths: windowMonths,
	}
}

func (c *LawGoCollector) Source() domain.Source { return domain.SourceLawGoKr }

type lawSearchResponse struct {
	XMLName xml.Name         `xml:"LawSearch"`
	Laws    []lawSearchEntry `xml:"law"`
}

type lawSearchEntry struct {
	Name             string `xml:"법령명한글"`
	PromulgationDate string `xml:"공포일자"`
	RevisionType     string `xml:"제개정구분명"`
	DetailLink       string `xml:"법령상세링크"`
}

// Collect issues one search per tracked law. A failed query only loses that
// law's slice of the result; siblings keep collecting.
func (c *LawGoCollector) Collect(ctx context.Context) ([]domain.LegalUpdateItem, error) {
	log := c.deps.logger()
	cutoff := c.deps.now().AddDate(0, -c.windowMonths, 0)

	var items []domain.LegalUpdateItem
	for _, target := range c.deps.Registry.Laws() {
		query := target.Keywords[0]
		endpoint := c.baseURL + "/DRF/lawSearch.do?OC=" + url.QueryEscape(c.apiKey) +
			"&target=law&type=XML&display=10&query=" + url.QueryEscape(query)

		body, err := httpx.Get(ctx, c.deps.Client, endpoint, "application/xml, text/xml")
		if err != nil {
			log.Warn("law search failed", "law", target.Name, "error", err)
			continue
		}

		var parsed lawSearchResponse
		if err := xml.Unmarshal(body, &parsed); err != nil {
			log.Warn("law search payload malformed", "law", target.Name, "error", err)
			continue
		}

		for _, entry := range parsed.Laws {
			name := strings.TrimSpace(entry.Name)
			if name == "" || c.deps.Registry.Excluded(name) {
				continue
			}
			pubDate, ok := parseDate(entry.PromulgationDate)
			if !ok || pubDate.Before(cutoff) {
				continue
			}

			kind := strings.TrimSpace(entry.RevisionType)
			if kind == "" {
				kind = "법령"
			}

			item := domain.LegalUpdateItem{
				Source:  domain.SourceLawGoKr,
				Type:    kind,
				Title:   name,
				Law:     target.Name,
				PubDate: formatDate(pubDate),
				Link:    detailLink(c.baseURL, entry.DetailLink, name),
			}
			item.Importance = scoring.Score(item)
			items = append(items, item)
		}
	}

	return items, nil
}

func detailLink(base, raw, lawName string) string {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, "&amp;", "&"))
	if raw == "" {
		return base + "/법령/" + url.PathEscape(lawName)
	}
	return absoluteURL(base, raw)
}
