// Package listutil provides helpers for ordered string lists.
package listutil

// Unique returns the distinct values of in, in order of first appearance.
// A nil or empty input yields an empty, non-nil slice.
func Unique(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Concat joins lists into one new slice without deduplicating.
func Concat(lists ...[]string) []string {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	out := make([]string, 0, n)
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
