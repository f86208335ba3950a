package laws

import (
	"strings"
	"unicode"
)

// TargetLaw is one statute on the watch list. Loaded once at startup and
// never mutated afterwards, so it is safe for concurrent reads.
type TargetLaw struct {
	Name      string   `yaml:"name"`
	ShortName string   `yaml:"shortName,omitempty"`
	Keywords  []string `yaml:"keywords"`
	Category  string   `yaml:"category,omitempty"`
}

// Registry classifies free-text titles against the watch list.
type Registry struct {
	laws     []TargetLaw
	excluded []string
}

// Match is the classification outcome. Law is nil when Matched is false.
type Match struct {
	Matched bool
	Law     *TargetLaw
}

// DefaultTargetLaws is the curated watch list: core statutes plus their
// enforcement decrees and rules via keywords.
func DefaultTargetLaws() []TargetLaw {
	return []TargetLaw{
		{Name: "상법", Keywords: []string{"상법", "상법 시행령", "상법 시행규칙"}, Category: "상거래"},
		{Name: "민법", Keywords: []string{"민법", "민법 시행령", "민법 시행규칙"}, Category: "일반"},
		{Name: "개인정보 보호법", Keywords: []string{"개인정보 보호법", "개인정보보호법", "개인정보 보호법 시행령", "개인정보 보호법 시행규칙"}, Category: "개인정보"},
		{Name: "직업안정법", Keywords: []string{"직업안정법", "직업안정법 시행령", "직업안정법 시행규칙"}, Category: "노동"},
		{Name: "정보통신망 이용촉진 및 정보보호 등에 관한 법률", ShortName: "정보통신망법", Keywords: []string{"정보통신망", "정보통신망법", "정보통신망 이용촉진"}, Category: "IT/정보보호"},
		{Name: "전자금융거래법", Keywords: []string{"전자금융거래법", "전자금융거래법 시행령", "전자금융거래법 시행규칙"}, Category: "금융"},
		{Name: "채용절차의 공정화에 관한 법률", ShortName: "채용절차법", Keywords: []string{"채용절차", "채용절차의 공정화", "채용절차법"}, Category: "노동"},
		{Name: "약관의 규제에 관한 법률", ShortName: "약관규제법", Keywords: []string{"약관의 규제", "약관규제법", "약관 규제"}, Category: "공정거래"},
		{Name: "독점규제 및 공정거래에 관한 법률", ShortName: "공정거래법", Keywords: []string{"독점규제", "공정거래", "공정거래법"}, Category: "공정거래"},
		{Name: "저작권법", Keywords: []string{"저작권법", "저작권법 시행령", "저작권법 시행규칙"}, Category: "지식재산"},
	}
}

// DefaultExcludeKeywords filters statutes that share substrings with tracked
// laws but are unrelated (compensation, refugee-resettlement acts).
func DefaultExcludeKeywords() []string {
	return []string{"보상", "난민", "이탈주민", "북한이탈"}
}

// NewRegistry builds a registry around the given law list. Declaration order
// matters: the first law whose any keyword matches wins, so more specific
// laws must be declared before general ones sharing substrings.
func NewRegistry(targetLaws []TargetLaw, excludeKeywords []string) *Registry {
	return &Registry{laws: targetLaws, excluded: excludeKeywords}
}

// NewDefaultRegistry uses the built-in watch list and exclusion set.
func NewDefaultRegistry() *Registry {
	return NewRegistry(DefaultTargetLaws(), DefaultExcludeKeywords())
}

// Classify returns the first law whose any keyword is a whitespace-insensitive
// substring of the title. It never fails; an unmatched title yields
// {Matched: false, Law: nil}.
func (r *Registry) Classify(title string) Match {
	normalized := foldSpace(title)
	for i := range r.laws {
		for _, kw := range r.laws[i].Keywords {
			if strings.Contains(normalized, foldSpace(kw)) {
				return Match{Matched: true, Law: &r.laws[i]}
			}
		}
	}
	return Match{}
}

// Excluded reports whether the title hits the exclusion list and should be
// dropped even when it classifies.
func (r *Registry) Excluded(title string) bool {
	for _, kw := range r.excluded {
		if strings.Contains(title, kw) {
			return true
		}
	}
	return false
}

// Laws exposes the watch list for adapters that query per tracked law.
func (r *Registry) Laws() []TargetLaw {
	return r.laws
}

func foldSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
