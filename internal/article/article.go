// Package article loads Markdown documents from disk.
package article

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gubarz/postmd/internal/frontmatter"
)

// Document is a parsed source file.
type Document struct {
	Path     string // absolute
	FileName string
	Meta     frontmatter.Frontmatter
	Body     string // trimmed
	Title    string
}

// Dir returns the directory relative references resolve against.
func (d Document) Dir() string {
	return filepath.Dir(d.Path)
}

var h1Re = regexp.MustCompile(`(?m)^#[ \t]+(.+)$`)

// Load reads and parses the document at path.
func Load(path string) (Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Document{}, fmt.Errorf("resolve %s: %w", path, err)
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return Document{}, fmt.Errorf("read article: %w", err)
	}
	return Parse(abs, string(raw)), nil
}

// Parse builds a Document from raw text without touching the filesystem.
func Parse(path, raw string) Document {
	meta, body := frontmatter.Extract(raw)
	return Document{
		Path:     path,
		FileName: filepath.Base(path),
		Meta:     meta,
		Body:     strings.TrimSpace(body),
		Title:    ResolveTitle(meta, body, path),
	}
}

// ResolveTitle picks the title key, then the first level-one heading, then
// the file name without its .md extension.
func ResolveTitle(meta frontmatter.Frontmatter, body, path string) string {
	if title := strings.TrimSpace(meta.String("title")); title != "" {
		return title
	}
	if m := h1Re.FindStringSubmatch(body); m != nil {
		if title := strings.TrimSpace(strings.TrimRight(m[1], "\r")); title != "" {
			return title
		}
	}
	return strings.TrimSuffix(filepath.Base(path), ".md")
}
