package suggest

import "strings"

// Match returns the suggestions whose matcher is a case-insensitive substring
// of blockText, in suggestion-set order. Pure read-side query, recomputed per
// render: the set is bounded by model output and documents are short, so
// caching would buy nothing.
func Match(blockText string, set []Suggestion) []Suggestion {
	if len(set) == 0 || blockText == "" {
		return nil
	}
	lowered := strings.ToLower(blockText)
	var out []Suggestion
	for _, s := range set {
		if s.Matcher == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(s.Matcher)) {
			out = append(out, s)
		}
	}
	return out
}
