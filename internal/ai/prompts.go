package ai

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/job_eligibility.md
var eligibilityPromptRaw string

// EligibilityTemplate is the parsed prompt template for eligibility scoring.
// Parsed once at package init; reused on every Evaluate call.
var EligibilityTemplate = template.Must(template.New("job_eligibility").Parse(eligibilityPromptRaw))
