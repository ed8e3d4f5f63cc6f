// Package payload turns a loaded article into the platform-neutral record a
// publisher sends. Build is pure: the same document and options always give
// the same payload.
package payload

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/gubarz/postmd/internal/article"
)

// ContentType is the kind of remote object.
type ContentType string

const (
	TypePost ContentType = "post"
	TypePage ContentType = "page"
)

// Status values accepted by the publisher.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

const (
	maxExcerptRunes = 300
	visibilityTiers = "tiers"
)

// Defaults are site-wide values used when a document leaves a field out.
type Defaults struct {
	Status     string
	Visibility string
	Type       string
	Featured   bool
	Category   string
	Tags       []string
	Tiers      []string
}

// Options configure Build.
type Options struct {
	Defaults            Defaults
	DefaultFeatureImage string
	// AssetDomainFrom and AssetDomainTo rewrite https://From to https://To in the body.
	AssetDomainFrom string
	AssetDomainTo   string
	// Status, when set, replaces the document's status.
	Status string
	// KnownTags and KnownCategories, when non-empty, list the accepted names.
	// Others are still published but produce a warning.
	KnownTags       []string
	KnownCategories []string
}

// Payload is the record sent to the publisher.
type Payload struct {
	Title        string      `json:"title" yaml:"title"`
	Slug         string      `json:"slug" yaml:"slug"`
	Body         string      `json:"-" yaml:"-"`
	Status       string      `json:"status" yaml:"status"`
	Featured     bool        `json:"featured" yaml:"featured"`
	Tags         []string    `json:"tags" yaml:"tags"`
	Visibility   string      `json:"visibility" yaml:"visibility"`
	PublishedAt  *time.Time  `json:"published_at,omitempty" yaml:"published_at,omitempty"`
	FeatureImage string      `json:"feature_image,omitempty" yaml:"feature_image,omitempty"`
	Excerpt      string      `json:"custom_excerpt,omitempty" yaml:"excerpt,omitempty"`
	Tiers        []string    `json:"tiers,omitempty" yaml:"tiers,omitempty"`
	Type         ContentType `json:"type" yaml:"type"`

	// Source is the file the payload was built from.
	Source string `json:"-" yaml:"source"`
	// Warnings collects recoverable problems found while building.
	Warnings []string `json:"-" yaml:"warnings,omitempty"`
}

// Build maps doc onto a Payload.
func Build(doc article.Document, opts Options) Payload {
	meta := doc.Meta
	d := opts.Defaults

	p := Payload{
		Title:  doc.Title,
		Body:   doc.Body,
		Source: doc.Path,
	}

	p.Slug = strings.TrimSpace(meta.String("slug"))
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
	if p.Slug == "" {
		p.Slug = Slugify(strings.TrimSuffix(filepath.Base(doc.Path), filepath.Ext(doc.Path)))
	}

	status := opts.Status
	if status == "" {
		status = firstNonEmpty(meta.String("status"), d.Status)
	}
	p.Status = NormalizeStatus(status)

	p.Featured = d.Featured
	if v, ok := meta.Bool("featured"); ok {
		p.Featured = v
	}

	tags, ok := meta.Strings("tags")
	if !ok {
		tags = d.Tags
	}
	category := firstNonEmpty(meta.String("category"), d.Category)
	p.Tags = CombineTags(tags, category)
	for _, t := range Unknown(clean(tags), opts.KnownTags) {
		p.Warnings = append(p.Warnings, "unknown tag "+t)
	}
	for _, c := range Unknown(clean([]string{category}), opts.KnownCategories) {
		p.Warnings = append(p.Warnings, "unknown category "+c)
	}

	if tiers, ok := meta.Strings("tiers"); ok && len(clean(tiers)) > 0 {
		p.Tiers = clean(tiers)
	} else {
		p.Tiers = clean(d.Tiers)
	}
	if len(p.Tiers) > 0 {
		p.Visibility = visibilityTiers
	} else {
		p.Visibility = firstNonEmpty(meta.String("visibility"), d.Visibility, "public")
	}

	p.FeatureImage = firstNonEmpty(meta.String("cover_image"), meta.String("cover"), opts.DefaultFeatureImage)
	p.Excerpt = Excerpt(meta.String("summary"))

	if raw := strings.TrimSpace(meta.String("date")); raw != "" {
		if t, err := ParseDate(raw); err == nil {
			p.PublishedAt = &t
		} else {
			p.Warnings = append(p.Warnings, "ignoring unparseable date "+raw)
		}
	}

	p.Type = TypePost
	if strings.EqualFold(firstNonEmpty(meta.String("type"), d.Type), string(TypePage)) {
		p.Type = TypePage
	}

	p.Body = StripWikilinks(p.Body)
	p.Body = ReplaceAssetDomain(p.Body, opts.AssetDomainFrom, opts.AssetDomainTo)

	return p
}

// NormalizeStatus lower-cases s; anything other than "published" is a draft.
func NormalizeStatus(s string) string {
	if strings.ToLower(strings.TrimSpace(s)) == StatusPublished {
		return StatusPublished
	}
	return StatusDraft
}

// CombineTags appends category when it is not already a tag, dropping blank
// and repeated names.
func CombineTags(tags []string, category string) []string {
	out := make([]string, 0, len(tags)+1)
	seen := make(map[string]bool)
	add := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			return
		}
		seen[t] = true
		out = append(out, t)
	}
	for _, t := range tags {
		add(t)
	}
	add(category)
	return out
}

// Unknown returns the names not in known, compared case-insensitively. An
// empty known list accepts everything.
func Unknown(names, known []string) []string {
	if len(known) == 0 {
		return nil
	}
	ok := make(map[string]bool, len(known))
	for _, k := range known {
		ok[strings.ToLower(strings.TrimSpace(k))] = true
	}
	var out []string
	for _, n := range names {
		if !ok[strings.ToLower(n)] {
			out = append(out, n)
		}
	}
	return out
}

// Excerpt trims s and caps it at 300 runes, marking a cut with "...".
func Excerpt(s string) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) > maxExcerptRunes {
		return string(r[:maxExcerptRunes-3]) + "..."
	}
	return s
}

// ParseDate reads the formats authors put in a date key. Values without a
// zone are taken as UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := cast.ToTimeInDefaultLocationE(s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// ReplaceAssetDomain rewrites https://from to https://to. Either side empty
// disables the rewrite.
func ReplaceAssetDomain(body, from, to string) string {
	if from == "" || to == "" || from == to {
		return body
	}
	return strings.ReplaceAll(body, "https://"+from, "https://"+to)
}

var wikilinkRe = regexp.MustCompile(`(!?)\[\[([^\]|]+)(?:\|([^\]]+))?\]\]`)

// StripWikilinks turns [[target|alias]] into alias and [[target]] into
// target. Embeds (![[...]]) are left alone.
func StripWikilinks(body string) string {
	return wikilinkRe.ReplaceAllStringFunc(body, func(m string) string {
		sub := wikilinkRe.FindStringSubmatch(m)
		if sub[1] == "!" {
			return m
		}
		if sub[3] != "" {
			return sub[3]
		}
		return sub[2]
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func clean(list []string) []string {
	var out []string
	for _, v := range list {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
