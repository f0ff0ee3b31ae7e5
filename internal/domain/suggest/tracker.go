package suggest

import "strings"

// ShouldAttempt reports whether a refresh is worth attempting for the current
// content. False when the content is empty or whitespace-only, or when it is
// byte-identical to the content of the last attempted request. Pure function,
// no side effects.
func ShouldAttempt(current, lastProcessed string) bool {
	if strings.TrimSpace(current) == "" {
		return false
	}
	return current != lastProcessed
}
