package ai

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/jobscout-dev/jobscout/internal/model"
)

// rawVerdict is the JSON shape the prompt asks for.
type rawVerdict struct {
	Eligible            bool     `json:"eligible"`
	Reasoning           string   `json:"reasoning"`
	MissingRequirements []string `json:"missing_requirements"`
}

var (
	fenceRe     = regexp.MustCompile("(?s)^```(?:json)?\n|\n```$")
	eligibleRe  = regexp.MustCompile(`(?i)"eligible"\s*:\s*(true|false)`)
	reasoningRe = regexp.MustCompile(`(?i)"reasoning"\s*:\s*"((?:[^"\\]|\\.)*)"`)
)

// ParseVerdict turns a model reply into a Verdict. Stage one is a strict JSON
// parse; stage two strips code fences and isolates the first JSON object;
// stage three scavenges the eligible/reasoning fields with regexes. When
// everything fails the verdict is not-eligible with a diagnostic reasoning —
// eligibility is never fabricated. The second return value reports whether
// salvage was needed.
func ParseVerdict(raw string) (model.Verdict, bool) {
	var rv rawVerdict
	if err := json.Unmarshal([]byte(raw), &rv); err == nil {
		return verdictFrom(rv), false
	}

	cleaned := strings.TrimSpace(fenceRe.ReplaceAllString(strings.TrimSpace(raw), ""))
	if err := json.Unmarshal([]byte(cleaned), &rv); err == nil {
		return verdictFrom(rv), true
	}
	if obj := firstJSONObject(cleaned); obj != "" {
		if err := json.Unmarshal([]byte(obj), &rv); err == nil {
			return verdictFrom(rv), true
		}
	}

	// Field scavenging: eligible=true only on an explicit literal match.
	if m := eligibleRe.FindStringSubmatch(cleaned); m != nil {
		v := model.Verdict{Eligible: strings.EqualFold(m[1], "true")}
		if rm := reasoningRe.FindStringSubmatch(cleaned); rm != nil {
			var s string
			if err := json.Unmarshal([]byte(`"`+rm[1]+`"`), &s); err == nil {
				v.Reasoning = s
			}
		}
		if v.Reasoning == "" {
			v.Reasoning = "Recovered from a malformed evaluator reply; no reasoning text found."
		}
		return v, true
	}

	return model.Verdict{
		Eligible:  false,
		Reasoning: "Evaluator reply could not be parsed; treated as not eligible.",
	}, true
}

func verdictFrom(rv rawVerdict) model.Verdict {
	reasoning := strings.TrimSpace(rv.Reasoning)
	if reasoning == "" {
		reasoning = "No reasoning provided."
	}
	if len(rv.MissingRequirements) > 0 {
		reasoning += " Missing: " + strings.Join(rv.MissingRequirements, "; ")
	}
	return model.Verdict{Eligible: rv.Eligible, Reasoning: reasoning}
}

// firstJSONObject returns the first balanced {...} span in s, respecting
// string literals, or "" when none exists.
func firstJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
