// Package assets finds local image references in Markdown text, names their
// placeholders and swaps references for uploaded URLs.
package assets

import (
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// Syntax is the notation a reference was written in.
type Syntax int

const (
	// SyntaxStandard is ![alt](path).
	SyntaxStandard Syntax = iota
	// SyntaxEmbed is ![[path]] or ![[path|alias]].
	SyntaxEmbed
)

func (s Syntax) String() string {
	if s == SyntaxEmbed {
		return "embed"
	}
	return "standard"
}

// Reference is a local asset found in a document.
type Reference struct {
	Original string // matched text
	Target   string // path as written
	Path     string // absolute, cleaned
	Alt      string
	Syntax   Syntax
}

// refRe matches either syntax in one pass so references come back in
// document order. Groups: 1 embed target, 2 standard alt, 3 standard target.
var refRe = regexp.MustCompile(`!\[\[([^\]]+)\]\]|!\[([^\]]*)\]\(([^)]+)\)`)

// match is one syntactic occurrence, local or not.
type match struct {
	start, end int
	target     string
	alt        string
	syntax     Syntax
}

func scan(content string) []match {
	var out []match
	for _, idx := range refRe.FindAllStringSubmatchIndex(content, -1) {
		m := match{start: idx[0], end: idx[1]}
		if idx[2] >= 0 {
			m.syntax = SyntaxEmbed
			m.target = content[idx[2]:idx[3]]
			if i := strings.Index(m.target, "|"); i >= 0 {
				m.target = m.target[:i]
			}
		} else {
			m.syntax = SyntaxStandard
			m.alt = content[idx[4]:idx[5]]
			m.target = content[idx[6]:idx[7]]
		}
		m.target = strings.TrimSpace(m.target)
		out = append(out, m)
	}
	return out
}

// IsRemote reports whether target is already an http(s) URL.
func IsRemote(target string) bool {
	lower := strings.ToLower(target)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Resolve returns the absolute path of a local target relative to baseDir.
// Remote and empty targets yield "".
func Resolve(target, baseDir string) string {
	target = strings.TrimSpace(target)
	if target == "" || IsRemote(target) {
		return ""
	}
	p := target
	if !filepath.IsAbs(p) {
		p = filepath.Join(baseDir, p)
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// Extract returns the local references in content, first occurrence per path,
// in document order.
func Extract(content, baseDir string) []Reference {
	seen := make(map[string]bool)
	var refs []Reference
	for _, m := range scan(content) {
		p := Resolve(m.target, baseDir)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		refs = append(refs, Reference{
			Original: content[m.start:m.end],
			Target:   m.target,
			Path:     p,
			Alt:      m.alt,
			Syntax:   m.syntax,
		})
	}
	return refs
}

// TargetOf unwraps a metadata value that may be a bare path, ![[path]] or
// ![alt](path).
func TargetOf(value string) string {
	value = strings.TrimSpace(value)
	ms := scan(value)
	if len(ms) == 1 && ms[0].start == 0 && ms[0].end == len(value) {
		return ms[0].target
	}
	return value
}

// Placeholder names the slot where an image must be inserted by hand:
// 【file name】, taken from the URL or file path without its query string.
func Placeholder(target string) string {
	return "【" + FileName(target) + "】"
}

// FileName returns the base name of target, "image" if there is none.
func FileName(target string) string {
	target = strings.TrimSpace(target)
	var name string
	if u, err := url.Parse(target); err == nil && u.Scheme != "" && u.Host != "" {
		name = path.Base(u.Path)
	} else {
		if i := strings.IndexAny(target, "?#"); i >= 0 {
			target = target[:i]
		}
		name = filepath.Base(filepath.FromSlash(target))
	}
	if name == "" || name == "." || name == "/" || name == string(filepath.Separator) {
		return "image"
	}
	return name
}

// Rewrite replaces every local reference whose resolved path has an entry in
// urls. Standard references keep their alt text; embeds become ![](url).
// Everything else is left byte-identical.
func Rewrite(content, baseDir string, urls map[string]string) string {
	ms := scan(content)
	if len(ms) == 0 || len(urls) == 0 {
		return content
	}

	var b strings.Builder
	last := 0
	for _, m := range ms {
		p := Resolve(m.target, baseDir)
		u, ok := urls[p]
		if p == "" || !ok {
			continue
		}
		b.WriteString(content[last:m.start])
		if m.syntax == SyntaxEmbed {
			b.WriteString("![](" + u + ")")
		} else {
			b.WriteString("![" + m.alt + "](" + u + ")")
		}
		last = m.end
	}
	b.WriteString(content[last:])
	return b.String()
}
