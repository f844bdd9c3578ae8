// Package filter implements the exclusion-keyword test applied to job titles
// before any evaluator call.
package filter

import "strings"

// ExclusionFilter rejects text containing any of a user's exclusion keywords.
type ExclusionFilter struct {
	keywords []string
}

// NewExclusionFilter builds a filter from the user's exclusion list. An empty
// list never matches.
func NewExclusionFilter(keywords []string) *ExclusionFilter {
	return &ExclusionFilter{keywords: keywords}
}

// Matches reports whether text contains any exclusion keyword,
// case-insensitive substring.
func (f *ExclusionFilter) Matches(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, kw := range f.keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
