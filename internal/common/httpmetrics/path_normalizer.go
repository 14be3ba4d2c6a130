package httpmetrics

import "strings"

// NormalizePath collapses numeric segments and anything outside the known
// routes so label cardinality stays bounded.
func NormalizePath(path string) string {
	if path == "" {
		return "/"
	}

	parts := strings.Split(path, "/")
	for i, part := range parts {
		if isNumeric(part) {
			parts[i] = "{param}"
		}
	}
	normalized := strings.Join(parts, "/")

	if _, ok := knownRoutes[normalized]; !ok {
		return "other"
	}
	return normalized
}

var knownRoutes = map[string]struct{}{
	"/":                      {},
	"/douyin/user/":          {},
	"/douyin/user/register/": {},
	"/douyin/user/login/":    {},
	"/health_check":          {},
	"/metrics":               {},
}

func isNumeric(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
