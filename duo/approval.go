package duo

import "strings"

// ApprovalFunc decides whether a reviewer reply approves the code.
type ApprovalFunc func(review string) bool

// PhraseApproval matches reviewer replies against phrase lists.
// Reject phrases win over approve phrases. Matching is case-insensitive and
// ignores anything inside fenced code blocks.
type PhraseApproval struct {
	Approve []string
	Reject  []string
}

var defaultPhrases = PhraseApproval{
	Approve: []string{
		"looks good", "no further changes", "satisfied", "lgtm",
		"well done", "excellent", "perfect", "solid implementation",
		"great job", "this is good", "good work", "nicely done", "well implemented",
	},
	Reject: []string{
		"not satisfied", "unsatisfied", "dissatisfied", "doesn't look good", "does not look good",
		"major issue", "significant problem", "needs improvement", "several issues",
		"should be fixed", "must be addressed", "critical problem",
	},
}

// DefaultApproval is the phrase matcher used when a Session has no predicate.
var DefaultApproval ApprovalFunc = defaultPhrases.Match

func (p PhraseApproval) Match(review string) bool {
	text := strings.ToLower(stripFences(review))
	for _, phrase := range p.Reject {
		if strings.Contains(text, phrase) {
			return false
		}
	}
	for _, phrase := range p.Approve {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

func stripFences(s string) string {
	return fenceRe.ReplaceAllString(s, "")
}
