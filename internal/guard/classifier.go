package guard

import "strings"

// followupMarkers are substrings that mark a query as a continuation of the
// preceding conversation. Matched case-insensitively against the whole query.
var followupMarkers = []string{
	"elaborate", "explain more", "more details", "tell me more",
	"what do you mean", "expand", "continue",
	"why", "how so", "give example", "examples",
	"it", "that", "this", "above",
}

// riskKeywords flag topics whose answers warrant a fact-check pass:
// medical, legal, financial, political, and security-exploit terms.
var riskKeywords = []string{
	"medical", "medicine", "diagnos", "treat", "symptom", "dose",
	"legal", "law", "contract", "lawsuit",
	"invest", "stock", "crypto", "trading",
	"politic", "election",
	"hack", "exploit", "bypass", "malware", "ddos",
}

// IsFollowup reports whether a query reads as a follow-up to prior turns:
// four or fewer whitespace-separated tokens, or any follow-up marker present.
// Very short novel topics therefore classify as follow-ups too; the
// orchestrator only acts on this when history is non-empty.
func IsFollowup(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if len(strings.Fields(q)) <= 4 {
		return true
	}
	for _, m := range followupMarkers {
		if strings.Contains(q, m) {
			return true
		}
	}
	return false
}

// NeedsFactCheck reports whether the topic contains a risk keyword.
// Suppressed entirely for follow-up requests by the orchestrator.
func NeedsFactCheck(topic string) bool {
	t := strings.ToLower(topic)
	for _, k := range riskKeywords {
		if strings.Contains(t, k) {
			return true
		}
	}
	return false
}
