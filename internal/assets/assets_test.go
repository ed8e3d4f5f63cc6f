package assets

import (
	"path/filepath"
	"testing"
)

func TestExtract(t *testing.T) {
	base := t.TempDir()
	content := "![A](./img/a.png)\n" +
		"text ![[b.png|300]] more\n" +
		"![remote](https://cdn.example.com/c.png)\n" +
		"![again](img/a.png)\n" +
		"![[img/a.png]]\n"

	refs := Extract(content, base)
	if len(refs) != 2 {
		t.Fatalf("got %d refs, want 2: %+v", len(refs), refs)
	}

	tests := []struct {
		idx    int
		path   string
		alt    string
		syntax Syntax
		orig   string
	}{
		{0, filepath.Join(base, "img", "a.png"), "A", SyntaxStandard, "![A](./img/a.png)"},
		{1, filepath.Join(base, "b.png"), "", SyntaxEmbed, "![[b.png|300]]"},
	}
	for _, tt := range tests {
		t.Run(tt.orig, func(t *testing.T) {
			r := refs[tt.idx]
			if r.Path != tt.path {
				t.Errorf("Path = %q, want %q", r.Path, tt.path)
			}
			if r.Alt != tt.alt {
				t.Errorf("Alt = %q, want %q", r.Alt, tt.alt)
			}
			if r.Syntax != tt.syntax {
				t.Errorf("Syntax = %v, want %v", r.Syntax, tt.syntax)
			}
			if r.Original != tt.orig {
				t.Errorf("Original = %q, want %q", r.Original, tt.orig)
			}
		})
	}
}

func TestExtractAbsolutePath(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "x.png")
	refs := Extract("![x]("+abs+")", "/somewhere/else")
	if len(refs) != 1 || refs[0].Path != abs {
		t.Fatalf("refs = %+v, want path %q", refs, abs)
	}
}

func TestPlaceholder(t *testing.T) {
	tests := []struct {
		target string
		want   string
	}{
		{"./img/a.png", "【a.png】"},
		{"https://cdn.example.com/p/photo.jpg?w=600", "【photo.jpg】"},
		{"pic.webp?v=2", "【pic.webp】"},
		{"https://cdn.example.com/", "【image】"},
		{"", "【image】"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			if got := Placeholder(tt.target); got != tt.want {
				t.Errorf("Placeholder(%q) = %q, want %q", tt.target, got, tt.want)
			}
			if Placeholder(tt.target) != Placeholder(tt.target) {
				t.Error("placeholder is not deterministic")
			}
		})
	}
}

func TestTargetOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"cover.png", "cover.png"},
		{"![[cover.png]]", "cover.png"},
		{"![[cover.png|200]]", "cover.png"},
		{"![c](./c.png)", "./c.png"},
		{"https://x.io/c.png", "https://x.io/c.png"},
		{"see ![[a.png]] here", "see ![[a.png]] here"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := TargetOf(tt.in); got != tt.want {
				t.Errorf("TargetOf(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRewrite(t *testing.T) {
	base := t.TempDir()
	content := "Intro ![A](./img/a.png) and ![[b.png|wide]].\n" +
		"![missing](./none.png) ![r](https://cdn/x.png)"
	urls := map[string]string{
		filepath.Join(base, "img", "a.png"): "https://cdn/a.png",
		filepath.Join(base, "b.png"):        "https://cdn/b.png",
	}

	got := Rewrite(content, base, urls)
	want := "Intro ![A](https://cdn/a.png) and ![](https://cdn/b.png).\n" +
		"![missing](./none.png) ![r](https://cdn/x.png)"
	if got != want {
		t.Fatalf("Rewrite() =\n%s\nwant\n%s", got, want)
	}

	if again := Rewrite(got, base, urls); again != got {
		t.Errorf("second rewrite changed text:\n%s", again)
	}
	if left := Extract(got, base); len(left) != 1 || left[0].Target != "./none.png" {
		t.Errorf("remaining refs = %+v, want only the missing one", left)
	}
}

func TestRewriteEmptyMap(t *testing.T) {
	content := "![a](a.png)"
	if got := Rewrite(content, "/tmp", nil); got != content {
		t.Errorf("Rewrite() = %q, want unchanged", got)
	}
}
