package source

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/graf262-max/legal-update-monitor/internal/domain"
)

const fscBaseURL = "https://www.fsc.go.kr"

var (
	fscTopical = regexp.MustCompile(`전자금융|금융|은행|보험|증권|자본시장|여신|신용|핀테크`)
	fscViewRe  = regexp.MustCompile(`/(?:po|no)\d+/(\d+)`)
)

// NewFscCollector scrapes the financial-services commission's
// legislative-notice and press-release boards.
func NewFscCollector(deps Deps, window time.Duration) *boardCollector {
	if window <= 0 {
		window = 48 * time.Hour
	}
	return &boardCollector{
		deps:    deps,
		source:  domain.SourceFsc,
		baseURL: fscBaseURL,
		pages: []boardPage{
			{url: fscBaseURL + "/po040101", typeLabel: "입법예고"},
			{url: fscBaseURL + "/no010101", typeLabel: "보도자료"},
		},
		rowSelector: "table tbody tr, .board_list li, .list_wrap .item",
		parseRow:    parseFscRow,
		topical:     fscTopical,
		fallbackLaw: "금융관계법령",
		window:      window,
	}
}

func parseFscRow(base string, row *goquery.Selection) (rowData, bool) {
	link := row.Find("td.title a, .subject a, a.txt_link").First()
	title := strings.TrimSpace(link.Text())
	if title == "" {
		title = strings.TrimSpace(link.AttrOr("title", ""))
	}
	if title == "" {
		title = strings.TrimSpace(row.Find("td").Eq(1).Text())
	}
	if title == "" {
		return rowData{}, false
	}

	href := link.AttrOr("href", "")
	var id string
	if m := fscViewRe.FindStringSubmatch(href); m != nil {
		id = m[1]
	}

	return rowData{
		id:    id,
		title: title,
		link:  absoluteURL(base, href),
		date:  rowDateText(row),
	}, true
}
