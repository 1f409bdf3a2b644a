package dispatch

import "strings"

func toLower(s string) string { return strings.ToLower(s) }

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
