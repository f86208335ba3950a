package source

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/graf262-max/legal-update-monitor/internal/domain"
)

const ftcBaseURL = "https://www.ftc.go.kr"

var (
	ftcTopical = regexp.MustCompile(`공정거래|독점규제|약관|하도급|가맹|표시광고|대규모유통|소비자|방문판매|전자상거래|담합`)
	nttSnRe    = regexp.MustCompile(`nttSn=(\d+)`)
	// fn_egov_inqire_notice('46764', '105')
	ftcOnclickRe = regexp.MustCompile(`fn_egov_inqire_notice\(['"]?(\d+)['"]?\s*,\s*['"]?(\d+)['"]?\)`)
)

// NewFtcCollector scrapes the fair-trade commission's legislative-notice and
// press-release boards. Detail links are rebuilt from the row's nttSn id
// because the listing only exposes it through an onclick handler on some
// skins.
func NewFtcCollector(deps Deps, window time.Duration) *boardCollector {
	if window <= 0 {
		window = 48 * time.Hour
	}
	view := func(bordCd, key string) func(id string) string {
		return func(id string) string {
			return fmt.Sprintf("%s/www/selectBbsNttView.do?key=%s&bordCd=%s&nttSn=%s", ftcBaseURL, key, bordCd, id)
		}
	}
	return &boardCollector{
		deps:    deps,
		source:  domain.SourceFtc,
		baseURL: ftcBaseURL,
		pages: []boardPage{
			{
				url:       ftcBaseURL + "/www/selectBbsNttList.do?bordCd=105&key=193",
				typeLabel: "입법·행정예고",
				view:      view("105", "193"),
			},
			{
				url:       ftcBaseURL + "/www/selectBbsNttList.do?bordCd=3&key=12&searchCtgry=01,02",
				typeLabel: "보도자료",
				view:      view("3", "12"),
			},
		},
		rowSelector: "table tbody tr",
		parseRow:    parseFtcRow,
		topical:     ftcTopical,
		fallbackLaw: "공정거래 관련 법령",
		window:      window,
	}
}

func parseFtcRow(base string, row *goquery.Selection) (rowData, bool) {
	cell := row.Find("td").Eq(1)
	link := cell.Find("a").First()
	title := strings.TrimSpace(link.Text())
	if title == "" {
		title = strings.TrimSpace(cell.Find("span.p-table__text").First().Text())
	}
	if title == "" {
		title = strings.TrimSpace(cell.Text())
	}
	if title == "" {
		return rowData{}, false
	}

	href := link.AttrOr("href", "")
	var id string
	if m := nttSnRe.FindStringSubmatch(href); m != nil {
		id = m[1]
	} else if m := ftcOnclickRe.FindStringSubmatch(link.AttrOr("onclick", "")); m != nil {
		id = m[1]
	}

	return rowData{
		id:    id,
		title: title,
		link:  absoluteURL(base, href),
		date:  rowDateText(row),
	}, true
}
