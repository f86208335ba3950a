package source

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/graf262-max/legal-update-monitor/internal/domain"
)

const msitBaseURL = "https://www.msit.go.kr"

var (
	msitTopical = regexp.MustCompile(`정보통신|전자금융|저작권|통신|인터넷|ICT|정보보호|개인정보`)
	// fn_detail(12345) — the listing hides the document id in inline script
	msitDetailRe = regexp.MustCompile(`fn_detail\((\d+)\)`)
	msitNttRe    = regexp.MustCompile(`nttSeqNo=(\d+)`)
)

// NewMsitCollector scrapes the ICT ministry's legislative-notice and
// policy boards.
func NewMsitCollector(deps Deps, window time.Duration) *boardCollector {
	if window <= 0 {
		window = 48 * time.Hour
	}
	return &boardCollector{
		deps:    deps,
		source:  domain.SourceMsit,
		baseURL: msitBaseURL,
		pages: []boardPage{
			{url: msitBaseURL + "/bbs/list.do?sCode=user&mId=113&mPid=112", typeLabel: "입법예고"},
			{url: msitBaseURL + "/bbs/list.do?sCode=user&mId=99&mPid=74", typeLabel: "정책자료"},
		},
		rowSelector: "table.bbs_list tbody tr, .board_list tbody tr, .list_area li",
		parseRow:    parseMsitRow,
		topical:     msitTopical,
		fallbackLaw: "정보통신 관련 법령",
		window:      window,
	}
}

func parseMsitRow(base string, row *goquery.Selection) (rowData, bool) {
	link := row.Find("td.title a, .subject a, a.title").First()
	title := strings.TrimSpace(link.Text())
	if title == "" {
		title = strings.TrimSpace(row.Find("td").Eq(1).Text())
	}
	if title == "" {
		return rowData{}, false
	}

	href := link.AttrOr("href", "")
	var id string
	if m := msitDetailRe.FindStringSubmatch(link.AttrOr("onclick", "")); m != nil {
		id = m[1]
	} else if m := msitNttRe.FindStringSubmatch(href); m != nil {
		id = m[1]
	}

	return rowData{
		id:    id,
		title: title,
		link:  absoluteURL(base, href),
		date:  rowDateText(row),
	}, true
}
