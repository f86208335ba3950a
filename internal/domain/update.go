package domain

import (
	"encoding/json"
	"strings"
	"unicode"
)

// Source identifies the origin system of a legal update.
type Source string

const (
	SourceLawGoKr  Source = "law.go.kr"
	SourceAssembly Source = "assembly.go.kr"
	SourceMoel     Source = "moel.go.kr"
	SourcePipc     Source = "pipc.go.kr"
	SourceMsit     Source = "msit.go.kr"
	SourceFsc      Source = "fsc.go.kr"
	SourceFtc      Source = "ftc.go.kr"
)

// LegalUpdateItem is the normalized record every adapter emits. Importance is
// computed once, after all other fields are set, before the item leaves its
// adapter.
type LegalUpdateItem struct {
	Source     Source `json:"source"`
	Type       string `json:"type"`
	Title      string `json:"title"`
	Law        string `json:"law"`
	PubDate    string `json:"pubDate,omitempty"`
	Link       string `json:"link,omitempty"`
	Content    string `json:"content,omitempty"`
	Importance int    `json:"importance"`
}

// DedupKey folds case and strips all whitespace so that titles differing only
// in spacing collapse to the same key.
func (i LegalUpdateItem) DedupKey() string {
	var b strings.Builder
	b.Grow(len(i.Title))
	for _, r := range strings.ToLower(i.Title) {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ErrorKind categorizes adapter failures so the aggregator can pattern-match
// instead of probing shapes.
type ErrorKind string

const (
	KindFetch    ErrorKind = "fetch"
	KindUpstream ErrorKind = "upstream"
	KindPanic    ErrorKind = "panic"
	KindTimeout  ErrorKind = "timeout"
)

// AdapterError is the one error shape adapters surface past their boundary.
type AdapterError struct {
	Source Source    `json:"source"`
	Kind   ErrorKind `json:"kind"`
	Detail string    `json:"error"`
}

func (e *AdapterError) Error() string {
	return string(e.Source) + ": " + string(e.Kind) + ": " + e.Detail
}

// StatSkipped is the stats sentinel recorded for adapters that were not run
// because their credential is missing. It is reported in stats, never in
// errors.
const StatSkipped = "API key required"

// SourceStat is either an item count or the skip sentinel. It marshals the
// way downstream dashboards expect: a number for counts, a string when the
// source was skipped.
type SourceStat struct {
	Count   int
	Skipped bool
}

func (s SourceStat) MarshalJSON() ([]byte, error) {
	if s.Skipped {
		return json.Marshal(StatSkipped)
	}
	return json.Marshal(s.Count)
}

func (s *SourceStat) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*s = SourceStat{Count: n}
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = SourceStat{Skipped: true}
	return nil
}

// AggregationResult is created fresh per aggregation run and never mutated
// after return. Items are fully sorted and deduplicated.
type AggregationResult struct {
	Items  []LegalUpdateItem     `json:"items"`
	Stats  map[string]SourceStat `json:"stats"`
	Errors []AdapterError        `json:"errors,omitempty"`
}
