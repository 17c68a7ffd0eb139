package utils

// Truncate shortens s to at most maxLen runes, marking the cut with "...".
// Multi-byte text such as emoji headlines is never split mid-rune.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
