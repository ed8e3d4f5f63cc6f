package parser

import (
	"regexp"
	"strings"
)

// inlineRule rewrites one kind of span. Rules run in slice order and each sees
// the output of the previous one.
type inlineRule struct {
	re   *regexp.Regexp
	repl string
}

var inlineRules = []inlineRule{
	{regexp.MustCompile(`\*\*(.+?)\*\*`), "<strong>$1</strong>"},
	{regexp.MustCompile(`__(.+?)__`), "<strong>$1</strong>"},
	{regexp.MustCompile(`\*(.+?)\*`), "<em>$1</em>"},
	{regexp.MustCompile(`_(.+?)_`), "<em>$1</em>"},
	{regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`), `<a href="$2">$1</a>`},
	{regexp.MustCompile("`([^`]+)`"), "<code>$1</code>"},
}

// FormatInline converts bold, italic, link and inline-code spans in a single
// line of prose to HTML. Text outside spans is passed through unchanged.
func FormatInline(line string) string {
	for _, rule := range inlineRules {
		line = rule.re.ReplaceAllString(line, rule.repl)
	}
	return line
}

// EscapeHTML neutralizes &, <, > and double quotes.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
