package frontmatter

import (
	"reflect"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantMeta Frontmatter
		wantBody string
	}{
		{
			name:     "no block",
			raw:      "# Title\n\nbody",
			wantMeta: Frontmatter{},
			wantBody: "# Title\n\nbody",
		},
		{
			name:     "scalars and list",
			raw:      "---\ntitle: \"Hello\"\ntags:\n  - a\n  - b\nfeatured: true\n---\nBody",
			wantMeta: Frontmatter{"title": "Hello", "tags": []string{"a", "b"}, "featured": true},
			wantBody: "Body",
		},
		{
			name:     "crlf line endings",
			raw:      "---\r\ntitle: Hi\r\n---\r\nText",
			wantMeta: Frontmatter{"title": "Hi"},
			wantBody: "Text",
		},
		{
			name:     "unterminated block",
			raw:      "---\ntitle: Hi\nno closing fence",
			wantMeta: Frontmatter{},
			wantBody: "---\ntitle: Hi\nno closing fence",
		},
		{
			name:     "later rules stay in body",
			raw:      "---\ntitle: A\n---\nText\n---\nmore",
			wantMeta: Frontmatter{"title": "A"},
			wantBody: "Text\n---\nmore",
		},
		{
			name:     "fence after prose is not metadata",
			raw:      "intro\n---\ntitle: A\n---\nText",
			wantMeta: Frontmatter{},
			wantBody: "intro\n---\ntitle: A\n---\nText",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, body := Extract(tt.raw)
			if !reflect.DeepEqual(meta, tt.wantMeta) {
				t.Errorf("meta = %#v, want %#v", meta, tt.wantMeta)
			}
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		block string
		want  Frontmatter
	}{
		{
			name:  "empty brackets is empty list",
			block: "tags: []",
			want:  Frontmatter{"tags": []string{}},
		},
		{
			name:  "quoted booleans stay strings",
			block: "a: \"true\"\nb: false\nc: 'false'",
			want:  Frontmatter{"a": "true", "b": false, "c": "false"},
		},
		{
			name:  "integers",
			block: "order: 12\nversion: \"3\"",
			want:  Frontmatter{"order": 12, "version": "3"},
		},
		{
			name:  "template reference skipped",
			block: "base: \"[[00-Index.base]]\"\ntitle: x",
			want:  Frontmatter{"title": "x"},
		},
		{
			name:  "list items are trimmed and unquoted",
			block: "tiers:\n  - \"gold\"\n  -   'silver'  \n- bronze",
			want:  Frontmatter{"tiers": []string{"gold", "silver", "bronze"}},
		},
		{
			name:  "blank line closes pending list",
			block: "tags:\n  - a\n\n  - b\ntitle: t",
			want:  Frontmatter{"tags": []string{"a"}, "title": "t"},
		},
		{
			name:  "pending list without items",
			block: "cover:\ntitle: t",
			want:  Frontmatter{"cover": []string{}, "title": "t"},
		},
		{
			name:  "stray item without open list ignored",
			block: "title: t\n  - orphan",
			want:  Frontmatter{"title": "t"},
		},
		{
			name:  "unknown keys preserved",
			block: "custom_key: value: with colon",
			want:  Frontmatter{"custom_key": "value: with colon"},
		},
		{
			name:  "non key lines ignored",
			block: "# comment\n9bad: x\nok: y",
			want:  Frontmatter{"ok": "y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.block)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestAccessors(t *testing.T) {
	fm := Frontmatter{
		"title":    "Hello",
		"order":    7,
		"featured": true,
		"tags":     []string{"go"},
		"empty":    []string{},
	}

	if got := fm.String("title"); got != "Hello" {
		t.Errorf("String(title) = %q", got)
	}
	if got := fm.String("order"); got != "7" {
		t.Errorf("String(order) = %q", got)
	}
	if got := fm.String("tags"); got != "" {
		t.Errorf("String(tags) = %q, want empty", got)
	}
	if got := fm.First("missing", "empty", "title"); got != "Hello" {
		t.Errorf("First() = %q", got)
	}
	if v, ok := fm.Bool("featured"); !ok || !v {
		t.Errorf("Bool(featured) = %v, %v", v, ok)
	}
	if _, ok := fm.Bool("title"); ok {
		t.Error("Bool(title) should not be ok")
	}
	if list, ok := fm.Strings("empty"); !ok || len(list) != 0 {
		t.Errorf("Strings(empty) = %v, %v", list, ok)
	}
	if _, ok := fm.Strings("missing"); ok {
		t.Error("Strings(missing) should not be ok")
	}
	if !fm.Has("empty") || fm.Has("missing") {
		t.Error("Has() mismatch")
	}
}
