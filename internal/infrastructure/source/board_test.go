package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/graf262-max/legal-update-monitor/internal/domain"
)

const pipcBoardFixture = `<!DOCTYPE html>
<html><body>
<table>
<thead><tr><th>번호</th><th>제목</th><th>등록일</th></tr></thead>
<tbody>
<tr class="notice"><td>공지</td><td><a href="/np/cop/bbs/selectBoardArticle.do?nttId=900">이용 안내</a></td><td>2025.08.30</td></tr>
<tr>
  <td>41</td>
  <td><a href="/np/cop/bbs/selectBoardArticle.do?nttId=101">개인정보 보호법 시행령 일부개정령안 입법예고</a></td>
  <td>2025.08.30</td>
</tr>
<tr>
  <td>40</td>
  <td><a href="/np/cop/bbs/selectBoardArticle.do?nttId=101">개인정보 보호법 시행령 일부개정령안 입법예고</a></td>
  <td>2025.08.30</td>
</tr>
<tr>
  <td>39</td>
  <td><a href="/np/cop/bbs/selectBoardArticle.do?nttId=102">가명정보 결합 전문기관 데이터 처리 지침 개정</a></td>
  <td>2025.08.30</td>
</tr>
<tr>
  <td>38</td>
  <td><a href="/np/cop/bbs/selectBoardArticle.do?nttId=103">위원회 청사 이전 안내</a></td>
  <td>2025.08.30</td>
</tr>
<tr>
  <td>37</td>
  <td><a href="/np/cop/bbs/selectBoardArticle.do?nttId=104">개인정보 유출 사고 대응 결과 발표</a></td>
  <td>2025.08.10</td>
</tr>
</tbody>
</table>
</body></html>`

func newPipcFixture(t *testing.T, handler http.Handler) (*boardCollector, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewPipcCollector(testDeps(srv.Client()), 48*time.Hour)
	c.baseURL = srv.URL
	c.pages = []boardPage{{url: srv.URL + "/board", typeLabel: "입법예고"}}
	return c, srv
}

func TestBoardCollect(t *testing.T) {
	t.Parallel()

	c, srv := newPipcFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(pipcBoardFixture))
	}))

	items, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	// kept: the decree notice (classified) and the pseudonymized-data notice
	// (topical). Dropped: the notice row, the duplicate nttId, the relocation
	// announcement, the stale row.
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2: %+v", len(items), items)
	}

	first := items[0]
	if first.Source != domain.SourcePipc || first.Type != "입법예고" {
		t.Errorf("source/type = %s/%s", first.Source, first.Type)
	}
	if first.Law != "개인정보 보호법" {
		t.Errorf("law = %q", first.Law)
	}
	if first.PubDate != "2025-08-30" {
		t.Errorf("pubDate = %q", first.PubDate)
	}
	if !strings.HasPrefix(first.Link, srv.URL+"/np/cop/bbs/selectBoardArticle.do") {
		t.Errorf("link not absolutized: %q", first.Link)
	}

	// unclassified but topical rows fall back to the agency's default law
	if items[1].Law != "개인정보 보호법" {
		t.Errorf("fallback law = %q", items[1].Law)
	}
}

func TestBoardCollectSinglePageFailureIsPartial(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "broken") {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		w.Write([]byte(pipcBoardFixture))
	}))
	t.Cleanup(srv.Close)

	c := NewPipcCollector(testDeps(srv.Client()), 48*time.Hour)
	c.baseURL = srv.URL
	c.pages = []boardPage{
		{url: srv.URL + "/broken", typeLabel: "입법예고"},
		{url: srv.URL + "/board", typeLabel: "보도자료"},
	}

	items, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("one healthy page must carry the run: %v", err)
	}
	if len(items) == 0 {
		t.Fatal("healthy page's rows were lost")
	}
}

func TestBoardCollectAllPagesFailed(t *testing.T) {
	t.Parallel()

	c, _ := newPipcFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))

	_, err := c.Collect(context.Background())
	var ae *domain.AdapterError
	if !errors.As(err, &ae) || ae.Kind != domain.KindFetch {
		t.Fatalf("got %v, want fetch AdapterError when every page failed", err)
	}
	if ae.Source != domain.SourcePipc {
		t.Errorf("error source = %s", ae.Source)
	}
}

func parseRowFixture(t *testing.T, html string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("fixture html: %v", err)
	}
	return doc.Find("tr").First()
}

func TestParseFtcRowOnclickID(t *testing.T) {
	t.Parallel()

	row := parseRowFixture(t, `<table><tbody><tr>
		<td>12</td>
		<td><a href="#none" onclick="fn_egov_inqire_notice('46764', '105'); return false;">독점규제 및 공정거래에 관한 법률 시행령 개정안 행정예고</a></td>
		<td>2025-08-30</td>
	</tr></tbody></table>`)

	rd, ok := parseFtcRow(ftcBaseURL, row)
	if !ok {
		t.Fatal("row not parsed")
	}
	if rd.id != "46764" {
		t.Errorf("id = %q, want onclick capture", rd.id)
	}
	if rd.date != "2025-08-30" {
		t.Errorf("date = %q", rd.date)
	}

	// the view builder turns the captured id into a canonical detail URL
	c := NewFtcCollector(testDeps(nil), 0)
	link := c.pages[0].view(rd.id)
	if link != ftcBaseURL+"/www/selectBbsNttView.do?key=193&bordCd=105&nttSn=46764" {
		t.Errorf("view link = %q", link)
	}
}

func TestParseMsitRowDetailID(t *testing.T) {
	t.Parallel()

	row := parseRowFixture(t, `<table><tbody><tr>
		<td>5</td>
		<td class="title"><a href="#" onclick="fn_detail(3471); return false;">정보통신망 이용촉진 및 정보보호 등에 관한 법률 시행령 개정안</a></td>
		<td>2025.08.30</td>
	</tr></tbody></table>`)

	rd, ok := parseMsitRow(msitBaseURL, row)
	if !ok {
		t.Fatal("row not parsed")
	}
	if rd.id != "3471" {
		t.Errorf("id = %q", rd.id)
	}
	if !strings.Contains(rd.title, "정보통신망") {
		t.Errorf("title = %q", rd.title)
	}
}

func TestParseFscRowPathID(t *testing.T) {
	t.Parallel()

	row := parseRowFixture(t, `<table><tbody><tr>
		<td>3</td>
		<td class="title"><a href="/po040101/83012?srchCtgry=1">전자금융거래법 시행령 일부개정령안 입법예고</a></td>
		<td><span class="date">2025-08-30</span></td>
	</tr></tbody></table>`)

	rd, ok := parseFscRow(fscBaseURL, row)
	if !ok {
		t.Fatal("row not parsed")
	}
	if rd.id != "83012" {
		t.Errorf("id = %q", rd.id)
	}
	if rd.link != fscBaseURL+"/po040101/83012?srchCtgry=1" {
		t.Errorf("link = %q", rd.link)
	}
}
