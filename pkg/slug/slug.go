package slug

import (
	"regexp"
	"strings"
)

var (
	nonWordRegexp   = regexp.MustCompile(`[^a-z0-9\s_-]+`)
	separatorRegexp = regexp.MustCompile(`[\s_-]+`)
)

// Generate creates a URL-friendly slug from the given name: lowercase,
// non-word characters stripped, whitespace and underscores collapsed into
// single hyphens, leading and trailing hyphens trimmed.
//
// Examples:
//   - "Home & Garden" → "home-garden"
//   - "electronics_and_gadgets" → "electronics-and-gadgets"
//   - "  Office   Supplies  " → "office-supplies"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = nonWordRegexp.ReplaceAllString(s, "")
	s = separatorRegexp.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
