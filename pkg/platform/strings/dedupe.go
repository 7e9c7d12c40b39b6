// Package strings holds small slice helpers for configuration values.
package strings

import "strings"

// DedupeAndTrim trims each element, drops empties, and removes duplicates
// while preserving first-seen order. Used when parsing comma-separated
// environment values like broker lists, where a stray space or a repeated
// entry should not produce a second connection.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
