package agents

import (
	"regexp"
	"strconv"
)

// confidencePatterns are tried in order against the fact-check report.
// First in-range match wins; no averaging across multiple matches.
var confidencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d{1,3})\s*/\s*100`),
	regexp.MustCompile(`(?i)(\d{1,3})\s*%`),
	regexp.MustCompile(`(?i)confidence\s*score\s*[:\-]?\s*(\d{1,3})`),
	regexp.MustCompile(`(?i)confidence\s*[:\-]?\s*(\d{1,3})`),
	regexp.MustCompile(`(?i)===\s*confidence\s*===\s*(\d{1,3})`),
}

// ExtractConfidence parses a free-text fact-check report for the self-reported
// confidence score. Returns nil when the text is empty, nothing matches, or
// every matched value falls outside [0,100]. Pure function.
func ExtractConfidence(text string) *int {
	if text == "" {
		return nil
	}

	for _, p := range confidencePatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		val, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if val >= 0 && val <= 100 {
			return &val
		}
	}
	return nil
}
