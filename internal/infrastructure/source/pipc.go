package source

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/graf262-max/legal-update-monitor/internal/domain"
)

const pipcBaseURL = "https://www.pipc.go.kr"

var (
	pipcTopical = regexp.MustCompile(`개인정보|정보보호|정보통신망|데이터|보호법|기업정보|유출`)
	nttIDRe     = regexp.MustCompile(`nttId=(\d+)`)
)

// NewPipcCollector scrapes the personal-data-protection commission's
// legislative-notice and press-release boards.
func NewPipcCollector(deps Deps, window time.Duration) *boardCollector {
	if window <= 0 {
		window = 48 * time.Hour
	}
	return &boardCollector{
		deps:    deps,
		source:  domain.SourcePipc,
		baseURL: pipcBaseURL,
		pages: []boardPage{
			{url: pipcBaseURL + "/np/cop/bbs/selectBoardList.do?bbsId=BS074&mCode=C020010000", typeLabel: "입법예고"},
			{url: pipcBaseURL + "/np/cop/bbs/selectBoardList.do?bbsId=BS013&mCode=C010010000", typeLabel: "보도자료"},
		},
		rowSelector: "table tbody tr, .bbs_list li, .list_wrap .list_item",
		parseRow:    parsePipcRow,
		topical:     pipcTopical,
		fallbackLaw: "개인정보 보호법",
		window:      window,
	}
}

func parsePipcRow(base string, row *goquery.Selection) (rowData, bool) {
	link := row.Find(`a[href*="nttId="], a.subject, td.subject a, .title a`).First()
	if link.Length() == 0 {
		return rowData{}, false
	}

	title := strings.TrimSpace(link.Text())
	if title == "" {
		title = strings.TrimSpace(link.AttrOr("title", ""))
	}
	if title == "" {
		return rowData{}, false
	}

	href := link.AttrOr("href", "")
	var id string
	if m := nttIDRe.FindStringSubmatch(href); m != nil {
		id = m[1]
	}

	return rowData{
		id:    id,
		title: title,
		link:  absoluteURL(base, href),
		date:  rowDateText(row),
	}, true
}
