// Package briefing renders one aggregation run as HTML, plain text, or a
// JSON envelope. Renderers are purely presentational: they never reorder or
// re-deduplicate the aggregated items.
package briefing

import (
	"encoding/json"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/graf262-max/legal-update-monitor/internal/domain"
	"github.com/graf262-max/legal-update-monitor/internal/scoring"
)

// Format selects the rendering of a briefing.
type Format string

const (
	FormatJSON Format = "json"
	FormatHTML Format = "html"
	FormatText Format = "text"
)

// ParseFormat maps a user-supplied selector to a Format, defaulting to HTML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "html":
		return FormatHTML, nil
	case "json":
		return FormatJSON, nil
	case "text", "txt":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json, html or text)", s)
	}
}

// detailLimit caps how many items get the full card treatment; the rest are
// listed briefly.
const detailLimit = 6

// Envelope is the JSON response shape consumed by the dashboard.
type Envelope struct {
	Success      bool                         `json:"success"`
	BriefingDate string                       `json:"briefingDate"`
	TotalItems   int                          `json:"totalItems"`
	Items        []domain.LegalUpdateItem     `json:"items"`
	Stats        map[string]domain.SourceStat `json:"stats"`
	Errors       []domain.AdapterError        `json:"errors,omitempty"`
}

// RenderJSON marshals the aggregation result into the API envelope.
func RenderJSON(result domain.AggregationResult, briefingDate time.Time) ([]byte, error) {
	items := result.Items
	if items == nil {
		items = []domain.LegalUpdateItem{}
	}
	envelope := Envelope{
		Success:      true,
		BriefingDate: briefingDate.UTC().Format(time.RFC3339),
		TotalItems:   len(items),
		Items:        items,
		Stats:        result.Stats,
		Errors:       result.Errors,
	}
	return json.MarshalIndent(envelope, "", "  ")
}

var htmlTemplate = template.Must(template.New("briefing").Funcs(template.FuncMap{
	"stars": scoring.StarRating,
}).Parse(`<!DOCTYPE html>
<html lang="ko">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>법률·정책 업데이트 브리핑 - {{.DateStr}}</title>
  <style>
    body { font-family: 'Pretendard', -apple-system, sans-serif; line-height: 1.6; color: #333; max-width: 800px; margin: 0 auto; padding: 20px; background: #f5f5f5; }
    .container { background: white; border-radius: 12px; padding: 30px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
    h1 { color: #1a1a2e; border-bottom: 3px solid #e94560; padding-bottom: 15px; font-size: 1.5em; }
    .date { color: #666; font-size: 0.9em; margin-bottom: 20px; }
    .summary { background: #f8f9fa; padding: 15px; border-radius: 8px; margin-bottom: 25px; }
    .item { border-left: 4px solid #e94560; padding: 15px 20px; margin-bottom: 20px; background: #fafafa; border-radius: 0 8px 8px 0; }
    .item-header { display: flex; justify-content: space-between; align-items: center; margin-bottom: 10px; }
    .item-title { font-weight: bold; font-size: 1.1em; color: #1a1a2e; }
    .importance { color: #e94560; font-size: 0.9em; }
    .item-meta { font-size: 0.85em; color: #666; margin-bottom: 8px; }
    .item-meta span { margin-right: 15px; }
    .item-content { font-size: 0.95em; }
    .item-link { display: inline-block; margin-top: 10px; color: #e94560; text-decoration: none; font-size: 0.9em; }
    .no-updates { text-align: center; padding: 40px; color: #666; }
    .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; font-size: 0.8em; color: #888; text-align: center; }
    .badge { display: inline-block; padding: 2px 8px; border-radius: 4px; font-size: 0.75em; margin-right: 5px; }
    .badge-law { background: #e3f2fd; color: #1565c0; }
    .badge-type { background: #fff3e0; color: #ef6c00; }
    .stats { display: flex; gap: 10px; flex-wrap: wrap; margin-bottom: 15px; }
    .stat { background: #f0f0f0; padding: 5px 12px; border-radius: 20px; font-size: 0.8em; }
  </style>
</head>
<body>
  <div class="container">
    <h1>📅 법률·정책 업데이트 브리핑</h1>
    <p class="date">{{.DateStr}} (최근 24~48시간)</p>
{{- if .Stats}}
    <div class="stats">
{{- range .Stats}}
      <span class="stat">{{.Name}}: {{.Count}}건</span>
{{- end}}
    </div>
{{- end}}
{{- if not .Top}}
    <div class="no-updates">
      <p>→ 최근 24~48시간 동안 관리 대상 법률 관련 신규/개정 공고사항 없음</p>
    </div>
{{- else}}
{{- range .Top}}
    <div class="item">
      <div class="item-header">
        <span class="item-title">{{.Title}}</span>
        <span class="importance">{{stars .Importance}}</span>
      </div>
      <div class="item-meta">
        <span class="badge badge-law">{{.Law}}</span>
        <span class="badge badge-type">{{.Type}}</span>
        <span>📍 {{.Source}}</span>
        {{- if .PubDate}}<span>📆 {{.PubDate}}</span>{{end}}
      </div>
      {{- if .Content}}<div class="item-content">{{.Content}}</div>{{end}}
      {{- if .Link}}<a href="{{.Link}}" class="item-link" target="_blank">🔗 상세 보기 →</a>{{end}}
    </div>
{{- end}}
{{- if .Rest}}
    <div class="summary">
      <strong>📋 기타 업데이트 ({{len .Rest}}건)</strong>
      <ul style="margin-top: 10px; padding-left: 20px;">
{{- range .Rest}}
        <li>{{.Title}} ({{.Source}})</li>
{{- end}}
      </ul>
    </div>
{{- end}}
{{- end}}
    <div class="footer">
      <p>본 브리핑은 공식 기관 발표 자료만을 바탕으로 작성되었습니다.</p>
      <p>발송 시각: {{.Generated}}</p>
    </div>
  </div>
</body>
</html>
`))

type statEntry struct {
	Name  string
	Count int
}

type htmlData struct {
	DateStr   string
	Generated string
	Stats     []statEntry
	Top       []domain.LegalUpdateItem
	Rest      []domain.LegalUpdateItem
}

// RenderHTML produces the email/browser body. A zero-item run renders the
// "no qualifying updates" body, still as a success page.
func RenderHTML(result domain.AggregationResult, briefingDate time.Time) (string, error) {
	top, rest := splitItems(result.Items)
	data := htmlData{
		DateStr:   koreanDate(briefingDate),
		Generated: time.Now().UTC().Format(time.RFC3339),
		Stats:     nonZeroStats(result.Stats),
		Top:       top,
		Rest:      rest,
	}

	var buf strings.Builder
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render briefing html: %w", err)
	}
	return buf.String(), nil
}

// RenderText produces the plain-text briefing.
func RenderText(result domain.AggregationResult, briefingDate time.Time) string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)

	fmt.Fprintf(&b, "📅 [%s] 법률·정책 업데이트 브리핑 (최근 24~48시간)\n", koreanDate(briefingDate))
	b.WriteString(rule + "\n\n")

	top, rest := splitItems(result.Items)
	if len(top) == 0 {
		b.WriteString("→ 최근 24~48시간 동안 관리 대상 법률 관련 신규/개정 공고사항 없음\n")
	} else {
		for i, item := range top {
			fmt.Fprintf(&b, "%d. 중요도 %s\n", i+1, scoring.StarRating(item.Importance))
			fmt.Fprintf(&b, "   법률명: %s\n", item.Law)
			fmt.Fprintf(&b, "   변경사항 요약: %s\n", item.Title)
			fmt.Fprintf(&b, "   유형: %s\n", item.Type)
			fmt.Fprintf(&b, "   출처: %s\n", item.Source)
			if item.PubDate != "" {
				fmt.Fprintf(&b, "   일자: %s\n", item.PubDate)
			}
			if item.Link != "" {
				fmt.Fprintf(&b, "   링크: %s\n", item.Link)
			}
			b.WriteString("\n")
		}
		if len(rest) > 0 {
			fmt.Fprintf(&b, "\n📋 기타 업데이트 (%d건):\n", len(rest))
			for _, item := range rest {
				fmt.Fprintf(&b, "   • %s (%s)\n", item.Title, item.Source)
			}
		}
	}

	b.WriteString("\n" + rule + "\n")
	b.WriteString("본 브리핑은 공식 기관 발표 자료만을 바탕으로 작성되었습니다.\n")
	fmt.Fprintf(&b, "발송 시각: %s\n", time.Now().UTC().Format(time.RFC3339))
	return b.String()
}

// Subject is the delivery subject line for one briefing date.
func Subject(briefingDate time.Time) string {
	return fmt.Sprintf("📅 [%s] 법률·정책 업데이트 브리핑", koreanDate(briefingDate))
}

func splitItems(items []domain.LegalUpdateItem) (top, rest []domain.LegalUpdateItem) {
	if len(items) <= detailLimit {
		return items, nil
	}
	return items[:detailLimit], items[detailLimit:]
}

func nonZeroStats(stats map[string]domain.SourceStat) []statEntry {
	names := make([]string, 0, len(stats))
	for name, stat := range stats {
		if !stat.Skipped && stat.Count > 0 {
			names = append(names, name)
		}
	}
	// deterministic order for rendering and tests
	sort.Strings(names)
	entries := make([]statEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, statEntry{Name: name, Count: stats[name].Count})
	}
	return entries
}

func koreanDate(t time.Time) string {
	return fmt.Sprintf("%d년 %d월 %d일", t.Year(), int(t.Month()), t.Day())
}
