package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/graf262-max/legal-update-monitor/internal/domain"
	"github.com/graf262-max/legal-update-monitor/internal/infrastructure/httpx"
	"github.com/graf262-max/legal-update-monitor/internal/scoring"
)

const (
	assemblyBaseURL   = "https://open.assembly.go.kr/portal/openapi"
	assemblyResultOK  = "INFO-000"
	billDetailBaseURL = "https://likms.assembly.go.kr/bill/billDetail.do?billId="
)

// AssemblyCollector fetches recent bill proposals for one legislative session
// from the parliamentary open-data API.
type AssemblyCollector struct {
	deps    Deps
	apiKey  string
	baseURL string
	age     int
}

// NewAssemblyCollector takes the API key and the assembly session number
// (AGE parameter).
func NewAssemblyCollector(deps Deps, apiKey string, age int) *AssemblyCollector {
	if age <= 0 {
		age = 22
	}
	return &AssemblyCollector{deps: deps, apiKey: apiKey, baseURL: assemblyBaseURL, age: age}
}

func (c *AssemblyCollector) Source() domain.Source { return domain.SourceAssembly }

// The API nests its payload as [{head: [...]}, {row: [...]}] and reports its
// own status in head[1].RESULT. An error response can also arrive as a bare
// top-level RESULT object.
type assemblyEnvelope struct {
	Blocks []assemblyBlock `json:"nzmimeepazxkubdpn"`
	Result *assemblyResult `json:"RESULT"`
}

type assemblyBlock struct {
	Head []assemblyHead `json:"head"`
	Rows []assemblyBill `json:"row"`
}

type assemblyHead struct {
	Total  int             `json:"list_total_count"`
	Result *assemblyResult `json:"RESULT"`
}

type assemblyResult struct {
	Code    string `json:"CODE"`
	Message string `json:"MESSAGE"`
}

type assemblyBill struct {
	BillID     string `json:"BILL_ID"`
	BillName   string `json:"BILL_NAME"`
	Proposer   string `json:"PROPOSER"`
	ProposeDT  string `json:"PROPOSE_DT"`
	DetailLink string `json:"DETAIL_LINK"`
}

// Collect surfaces the API's embedded error code as an adapter error so the
// briefing can tell "API failed" apart from "no matching bills today".
func (c *AssemblyCollector) Collect(ctx context.Context) ([]domain.LegalUpdateItem, error) {
	endpoint := fmt.Sprintf("%s/nzmimeepazxkubdpn?KEY=%s&Type=json&pIndex=1&pSize=100&AGE=%d",
		c.baseURL, url.QueryEscape(c.apiKey), c.age)

	body, err := httpx.Get(ctx, c.deps.Client, endpoint, "application/json")
	if err != nil {
		return nil, &domain.AdapterError{Source: c.Source(), Kind: domain.KindFetch, Detail: err.Error()}
	}

	var envelope assemblyEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &domain.AdapterError{
			Source: c.Source(),
			Kind:   domain.KindUpstream,
			Detail: "unparseable payload: " + truncate(string(body), 100),
		}
	}

	if err := c.upstreamError(envelope); err != nil {
		return nil, err
	}

	var items []domain.LegalUpdateItem
	for _, block := range envelope.Blocks {
		for _, bill := range block.Rows {
			name := strings.TrimSpace(bill.BillName)
			if name == "" || c.deps.Registry.Excluded(name) {
				continue
			}
			match := c.deps.Registry.Classify(name)
			if !match.Matched {
				continue
			}

			link := bill.DetailLink
			if link == "" && bill.BillID != "" {
				link = billDetailBaseURL + bill.BillID
			}

			item := domain.LegalUpdateItem{
				Source:  domain.SourceAssembly,
				Type:    "발의법률안",
				Title:   name,
				Law:     match.Law.Name,
				PubDate: bill.ProposeDT,
				Link:    link,
				Content: bill.Proposer,
			}
			item.Importance = scoring.Score(item)
			items = append(items, item)
		}
	}

	return items, nil
}

func (c *AssemblyCollector) upstreamError(envelope assemblyEnvelope) error {
	check := func(r *assemblyResult) error {
		if r == nil || r.Code == "" || r.Code == assemblyResultOK {
			return nil
		}
		return &domain.AdapterError{
			Source: c.Source(),
			Kind:   domain.KindUpstream,
			Detail: r.Code + ": " + r.Message,
		}
	}

	if err := check(envelope.Result); err != nil {
		return err
	}
	for _, block := range envelope.Blocks {
		for _, head := range block.Head {
			if err := check(head.Result); err != nil {
				return err
			}
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
