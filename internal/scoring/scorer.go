package scoring

import (
	"math"
	"strings"

	"github.com/graf262-max/legal-update-monitor/internal/domain"
)

type keywordWeight struct {
	keyword string
	weight  int
}

// Positive signal weights applied when the keyword occurs anywhere in
// title+content.
var keywordWeights = []keywordWeight{
	{"공포", 3},
	{"시행일", 3}, // deliberately not bare "시행", which would catch 시행규칙
	{"본회의 통과", 3},
	{"상임위 통과", 2},
	{"입법예고", 1},
	{"개정", 2},
	{"제정", 3},
	{"폐지", 3},
	{"긴급", 3},
}

var negativeWeights = []keywordWeight{
	{"시행규칙", -2},
	{"직제", -5}, // ministry reorganizations are noise for the watch list
}

// Per-source bonus, matched by substring in declaration order, first match
// wins. Sources with no entry get defaultSourceBonus when non-empty, so a
// newly added agency is not under-weighted relative to the known ones.
var sourceBonuses = []keywordWeight{
	{"law.go.kr", 2},
	{"assembly.go.kr", 2},
	{"pipc.go.kr", 1},
	{"moel.go.kr", 1},
	{"msit.go.kr", 1},
	{"fsc.go.kr", 1},
	{"ftc.go.kr", 1},
}

const defaultSourceBonus = 1

// Score maps an item to an importance in [1,5]. The order is load-bearing:
// weighted sum, halve, round half up, clamp.
func Score(item domain.LegalUpdateItem) int {
	raw := 1
	text := item.Title + " " + item.Content

	for _, kw := range keywordWeights {
		if strings.Contains(text, kw.keyword) {
			raw += kw.weight
		}
	}
	for _, kw := range negativeWeights {
		if strings.Contains(text, kw.keyword) {
			raw += kw.weight
		}
	}

	raw += sourceBonus(string(item.Source))

	return clamp(roundHalfUp(float64(raw)/2), 1, 5)
}

func sourceBonus(source string) int {
	if source == "" {
		return 0
	}
	for _, b := range sourceBonuses {
		if strings.Contains(source, b.keyword) {
			return b.weight
		}
	}
	return defaultSourceBonus
}

// roundHalfUp rounds halves toward positive infinity, matching the reference
// outputs (math.Round would send -0.5 to -1).
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// StarRating renders an importance as a five-star string for briefings.
func StarRating(importance int) string {
	if importance < 0 {
		importance = 0
	}
	if importance > 5 {
		importance = 5
	}
	return strings.Repeat("★", importance) + strings.Repeat("☆", 5-importance)
}
