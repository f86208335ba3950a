package laws

import "testing"

func TestClassifyMatchesDefaultLaws(t *testing.T) {
	t.Parallel()

	r := NewDefaultRegistry()

	cases := []struct {
		title string
		law   string
	}{
		{"상법 일부개정법률안", "상법"},
		{"민법 시행령 개정안 입법예고", "민법"},
		{"개인정보 보호법 시행령 일부개정령안", "개인정보 보호법"},
		{"정보통신망 이용촉진 및 정보보호 등에 관한 법률", "정보통신망 이용촉진 및 정보보호 등에 관한 법률"},
		{"전자금융거래법 개정안 공포", "전자금융거래법"},
		{"채용절차의 공정화에 관한 법률 위반 제재", "채용절차의 공정화에 관한 법률"},
		{"저작권법 전부개정", "저작권법"},
	}
	for _, tc := range cases {
		m := r.Classify(tc.title)
		if !m.Matched {
			t.Errorf("Classify(%q) did not match", tc.title)
			continue
		}
		if m.Law.Name != tc.law {
			t.Errorf("Classify(%q) = %q, want %q", tc.title, m.Law.Name, tc.law)
		}
	}
}

func TestClassifyIgnoresWhitespace(t *testing.T) {
	t.Parallel()

	r := NewDefaultRegistry()

	// keyword with spaces against a title without, and vice versa
	for _, title := range []string{
		"개인정보보호법시행령 일부개정",
		"개인정보 보호법 시행령 일부개정",
		"개인 정보 보호법 개정안",
	} {
		m := r.Classify(title)
		if !m.Matched || m.Law.Name != "개인정보 보호법" {
			t.Errorf("Classify(%q): matched=%v law=%+v, want 개인정보 보호법", title, m.Matched, m.Law)
		}
	}
}

func TestClassifyFirstDeclarationWins(t *testing.T) {
	t.Parallel()

	r := NewRegistry([]TargetLaw{
		{Name: "전자금융거래법", Keywords: []string{"전자금융거래법"}},
		{Name: "금융포괄법", Keywords: []string{"금융"}},
	}, nil)

	m := r.Classify("전자금융거래법 개정")
	if !m.Matched || m.Law.Name != "전자금융거래법" {
		t.Fatalf("got %+v, want first declared law", m.Law)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	t.Parallel()

	r := NewDefaultRegistry()
	title := "독점규제 및 공정거래에 관한 법률 시행령 개정"

	first := r.Classify(title)
	for i := 0; i < 50; i++ {
		m := r.Classify(title)
		if m.Matched != first.Matched || m.Law != first.Law {
			t.Fatalf("iteration %d: classification changed: %+v vs %+v", i, m, first)
		}
	}
}

func TestClassifyUnmatched(t *testing.T) {
	t.Parallel()

	r := NewDefaultRegistry()
	m := r.Classify("도로교통법 일부개정")
	if m.Matched || m.Law != nil {
		t.Fatalf("unrelated title classified: %+v", m)
	}
}

func TestExcluded(t *testing.T) {
	t.Parallel()

	r := NewDefaultRegistry()

	if !r.Excluded("북한이탈주민의 보호 및 정착지원에 관한 법률") {
		t.Error("resettlement act not excluded")
	}
	if !r.Excluded("손실보상 기준 고시") {
		t.Error("compensation notice not excluded")
	}
	if r.Excluded("상법 일부개정법률안") {
		t.Error("tracked statute wrongly excluded")
	}
}
