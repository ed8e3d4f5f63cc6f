// Package frontmatter splits a document into its metadata block and body.
//
// Only the small YAML subset authors actually write is understood: flat
// `key: value` pairs, `[]`, and block lists of `- item` lines. Anything else
// in the block is ignored rather than rejected.
package frontmatter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/spf13/cast"
)

// Frontmatter holds document metadata. Values are string, bool, int or []string.
type Frontmatter map[string]any

var (
	keyRe  = regexp.MustCompile(`^([a-zA-Z_][a-zA-Z0-9_]*):\s*(.*)$`)
	itemRe = regexp.MustCompile(`^\s*-\s+(.+)$`)
	intRe  = regexp.MustCompile(`^-?[0-9]+$`)
)

// Extract returns the metadata and the body of raw. A document without a
// well-formed leading block yields empty metadata and the full text as body.
func Extract(raw string) (Frontmatter, string) {
	var (
		meta  Frontmatter
		found bool
	)
	format := frontmatter.NewFormat("---", "---", func(data []byte, v any) error {
		*v.(*Frontmatter) = Parse(string(data))
		found = true
		return nil
	})

	body, err := frontmatter.Parse(strings.NewReader(raw), &meta, format)
	if err != nil || !found {
		return Frontmatter{}, raw
	}
	return meta, string(body)
}

// Parse reads the inside of a metadata block (without the --- fences).
func Parse(block string) Frontmatter {
	fm := Frontmatter{}

	var (
		listKey string
		list    []string
		open    bool
	)
	closeList := func() {
		if open {
			fm[listKey] = list
		}
		open, listKey, list = false, "", nil
	}

	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimRight(line, "\r \t")
		if strings.TrimSpace(line) == "" {
			closeList()
			continue
		}

		if open {
			if m := itemRe.FindStringSubmatch(line); m != nil {
				list = append(list, unquote(strings.TrimSpace(m[1])))
				continue
			}
			closeList()
		}

		m := keyRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		key, value := m[1], strings.TrimSpace(m[2])

		switch value {
		case "":
			open, listKey, list = true, key, []string{}
		case "[]":
			fm[key] = []string{}
		default:
			if v, ok := scalar(value); ok {
				fm[key] = v
			}
		}
	}
	closeList()

	return fm
}

// scalar converts a raw value. ok is false for template references such as
// "[[00-Index.base]]", which are dropped.
func scalar(raw string) (any, bool) {
	value := unquote(raw)
	quoted := value != raw

	if strings.HasPrefix(value, "[[") && strings.HasSuffix(value, "]]") {
		return nil, false
	}
	if quoted {
		return value, true
	}

	switch value {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	if intRe.MatchString(value) {
		if n, err := strconv.Atoi(value); err == nil {
			return n, true
		}
	}
	return value, true
}

// unquote strips one pair of matching surrounding quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// Has reports whether key is present.
func (fm Frontmatter) Has(key string) bool {
	_, ok := fm[key]
	return ok
}

// String returns the value of key as a string. Lists and missing keys yield "".
func (fm Frontmatter) String(key string) string {
	switch v := fm[key].(type) {
	case nil, []string:
		return ""
	default:
		return cast.ToString(v)
	}
}

// First returns the first non-blank string value among keys.
func (fm Frontmatter) First(keys ...string) string {
	for _, key := range keys {
		if s := strings.TrimSpace(fm.String(key)); s != "" {
			return s
		}
	}
	return ""
}

// Bool returns the boolean value of key. ok is false unless the key holds a bool.
func (fm Frontmatter) Bool(key string) (value, ok bool) {
	b, ok := fm[key].(bool)
	return b, ok
}

// Strings returns the list value of key. ok is false unless the key holds a
// list, so an explicit empty list is distinguishable from a missing key.
func (fm Frontmatter) Strings(key string) ([]string, bool) {
	list, ok := fm[key].([]string)
	return list, ok
}
