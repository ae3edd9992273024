// Package strings parses the list-valued settings read from the environment.
package strings

import "strings"

// SplitList splits a comma separated value into its trimmed, non-empty,
// first-seen entries. An empty input yields nil.
func SplitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// SplitOrigins is SplitList for CORS origins. A trailing slash is dropped
// because browsers never send one in the Origin header.
func SplitOrigins(raw string) []string {
	origins := SplitList(raw)
	for i, o := range origins {
		origins[i] = strings.TrimRight(o, "/")
	}
	return SplitList(strings.Join(origins, ","))
}
