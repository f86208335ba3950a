package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/graf262-max/legal-update-monitor/internal/domain"
	"github.com/graf262-max/legal-update-monitor/internal/laws"
)

const lawSearchFixture = `<?xml version="1.0" encoding="UTF-8"?>
<LawSearch>
  <totalCnt>4</totalCnt>
  <law>
    <법령명한글>상법</법령명한글>
    <공포일자>20250815</공포일자>
    <제개정구분명>일부개정</제개정구분명>
    <법령상세링크>/DRF/lawService.do?OC=test&amp;target=law&amp;ID=001706</법령상세링크>
  </law>
  <law>
    <법령명한글>상법 시행령</법령명한글>
    <공포일자>20240101</공포일자>
    <제개정구분명>일부개정</제개정구분명>
    <법령상세링크></법령상세링크>
  </law>
  <law>
    <법령명한글>손실보상에 관한 법률</법령명한글>
    <공포일자>20250820</공포일자>
    <제개정구분명>제정</제개정구분명>
    <법령상세링크></법령상세링크>
  </law>
  <law>
    <법령명한글></법령명한글>
    <공포일자>20250820</공포일자>
  </law>
</LawSearch>`

func TestLawGoCollect(t *testing.T) {
	t.Parallel()

	var gotQueries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/DRF/lawSearch.do" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("OC") != "test-oc" {
			t.Errorf("OC = %q, want test-oc", r.URL.Query().Get("OC"))
		}
		gotQueries = append(gotQueries, r.URL.Query().Get("query"))
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(lawSearchFixture))
	}))
	defer srv.Close()

	deps := testDeps(srv.Client())
	deps.Registry = laws.NewRegistry([]laws.TargetLaw{
		{Name: "상법", Keywords: []string{"상법"}},
	}, laws.DefaultExcludeKeywords())

	c := NewLawGoCollector(deps, "test-oc", 6)
	c.baseURL = srv.URL

	items, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if len(gotQueries) != 1 || gotQueries[0] != "상법" {
		t.Errorf("queries = %v, want one query per tracked law", gotQueries)
	}

	// the decree is outside the 6-month window, the compensation act is
	// excluded, the nameless entry is dropped
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1: %+v", len(items), items)
	}

	got := items[0]
	if got.Source != domain.SourceLawGoKr {
		t.Errorf("source = %s", got.Source)
	}
	if got.Title != "상법" || got.Law != "상법" {
		t.Errorf("title/law = %q/%q", got.Title, got.Law)
	}
	if got.Type != "일부개정" {
		t.Errorf("type = %q", got.Type)
	}
	if got.PubDate != "2025-08-15" {
		t.Errorf("pubDate = %q", got.PubDate)
	}
	if !strings.Contains(got.Link, "ID=001706") || strings.Contains(got.Link, "&amp;") {
		t.Errorf("link not unescaped and absolutized: %q", got.Link)
	}
	if got.Importance < 1 || got.Importance > 5 {
		t.Errorf("importance = %d", got.Importance)
	}
}

func TestLawGoCollectToleratesFailedQueries(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.RawQuery, "%EC%83%81%EB%B2%95") { // 상법
			http.Error(w, "upstream busy", http.StatusBadGateway)
			return
		}
		w.Write([]byte(lawSearchFixture))
	}))
	defer srv.Close()

	deps := testDeps(srv.Client())
	deps.Registry = laws.NewRegistry([]laws.TargetLaw{
		{Name: "상법", Keywords: []string{"상법"}},
		{Name: "민법", Keywords: []string{"민법"}},
	}, nil)

	c := NewLawGoCollector(deps, "test-oc", 6)
	c.baseURL = srv.URL

	items, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("per-law failure must not fail the collector: %v", err)
	}
	if len(items) == 0 {
		t.Fatal("surviving query's items were lost")
	}
}

func TestLawGoDetailLinkFallback(t *testing.T) {
	t.Parallel()

	got := detailLink("https://www.law.go.kr", "", "상법 시행령")
	if !strings.HasPrefix(got, "https://www.law.go.kr/") || got == "https://www.law.go.kr/" {
		t.Errorf("empty raw link fallback = %q", got)
	}
}
