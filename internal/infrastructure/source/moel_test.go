package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/graf262-max/legal-update-monitor/internal/domain"
)

const moelFeedFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
<channel>
  <title>고용노동부 입법·행정예고</title>
  <item>
    <title>채용절차의 공정화에 관한 법률 시행령 일부개정령안 입법예고</title>
    <link>https://www.moel.go.kr/info/lawinfo/instruction/view.do?seq=101</link>
    <description>채용 서류 반환 절차를 정비</description>
    <dc:date>2025-08-30 10:00:00</dc:date>
  </item>
  <item>
    <title>산업안전보건기준에 관한 규칙 일부개정령안 행정예고</title>
    <link>https://www.moel.go.kr/info/lawinfo/instruction/view.do?seq=102</link>
    <description></description>
    <dc:date>2025-08-30 09:00:00</dc:date>
  </item>
  <item>
    <title>여권법 시행령 일부개정령안</title>
    <link>https://www.moel.go.kr/info/lawinfo/instruction/view.do?seq=103</link>
    <dc:date>2025-08-30 08:00:00</dc:date>
  </item>
  <item>
    <title>고용보험법 시행규칙 일부개정령안</title>
    <link>https://www.moel.go.kr/info/lawinfo/instruction/view.do?seq=104</link>
    <dc:date>2025-08-20 10:00:00</dc:date>
  </item>
</channel>
</rss>`

func TestMoelCollect(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(moelFeedFixture))
	}))
	defer srv.Close()

	c := NewMoelCollector(testDeps(srv.Client()), 48*time.Hour)
	c.feedURL = srv.URL

	items, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	// passport decree neither classifies nor looks labor-related; the
	// employment-insurance rule is outside the window
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2: %+v", len(items), items)
	}

	first := items[0]
	if first.Source != domain.SourceMoel || first.Type != "입법·행정예고" {
		t.Errorf("source/type = %s/%s", first.Source, first.Type)
	}
	if first.Law != "채용절차의 공정화에 관한 법률" {
		t.Errorf("classified law = %q", first.Law)
	}
	if first.PubDate != "2025-08-30" {
		t.Errorf("pubDate = %q", first.PubDate)
	}
	if first.Content != "채용 서류 반환 절차를 정비" {
		t.Errorf("content = %q", first.Content)
	}

	// labor-adjacent but unclassified rows get the fallback law
	if items[1].Law != "노동관계법령" {
		t.Errorf("fallback law = %q", items[1].Law)
	}
}

func TestMoelCollectFeedUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewMoelCollector(testDeps(srv.Client()), 0)
	c.feedURL = srv.URL

	_, err := c.Collect(context.Background())
	var ae *domain.AdapterError
	if !errors.As(err, &ae) || ae.Kind != domain.KindFetch {
		t.Fatalf("got %v, want fetch AdapterError", err)
	}
}

func TestCleanCDATA(t *testing.T) {
	t.Parallel()

	if got := cleanCDATA("[[CDATA[민법 개정]] "); got != "민법 개정" {
		t.Errorf("cleanCDATA = %q", got)
	}
}
