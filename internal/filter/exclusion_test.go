package filter

import "testing"

func TestMatchesCaseInsensitive(t *testing.T) {
	f := NewExclusionFilter([]string{"Senior", "clearance"})

	cases := []struct {
		text string
		want bool
	}{
		{"Senior Backend Engineer", true},
		{"SENIOR backend engineer", true},
		{"Backend Engineer (Clearance Required)", true},
		{"Backend Engineer", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := f.Matches(tc.text); got != tc.want {
			t.Errorf("Matches(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestEmptyExclusionListNeverMatches(t *testing.T) {
	f := NewExclusionFilter(nil)
	if f.Matches("Senior Staff Principal Everything") {
		t.Error("empty exclusion list must never match")
	}
}

func TestBlankKeywordIgnored(t *testing.T) {
	f := NewExclusionFilter([]string{""})
	if f.Matches("any title") {
		t.Error("blank keyword must not match everything")
	}
}
