package transcript

import "strings"

// TriggerFunc decides whether a finished reply should fetch product
// recommendations, given the reply text and the user message it answered.
type TriggerFunc func(reply, userInput string) bool

// KeywordTrigger fires when either text contains one of keywords, ignoring case.
func KeywordTrigger(keywords ...string) TriggerFunc {
	normalized := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			normalized = append(normalized, k)
		}
	}
	return func(reply, userInput string) bool {
		reply = strings.ToLower(reply)
		userInput = strings.ToLower(userInput)
		for _, k := range normalized {
			if strings.Contains(reply, k) || strings.Contains(userInput, k) {
				return true
			}
		}
		return false
	}
}

// Never disables recommendation fetches.
func Never(string, string) bool { return false }
