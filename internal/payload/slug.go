package payload

import (
	"regexp"
	"strings"
)

const maxSlugRunes = 60

var (
	slugStripRe = regexp.MustCompile(`[^\w\s\x{4e00}-\x{9fff}-]`)
	slugSpaceRe = regexp.MustCompile(`[\s_]+`)
)

// Slugify derives a URL slug from a title. CJK ideographs are kept, runs of
// whitespace and underscores become one hyphen, and the result is capped at
// 60 runes. Slugify(Slugify(s)) == Slugify(s).
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugStripRe.ReplaceAllString(s, "")
	s = slugSpaceRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if r := []rune(s); len(r) > maxSlugRunes {
		s = strings.TrimRight(string(r[:maxSlugRunes]), "-")
	}
	return s
}
