package xarticle

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/gubarz/postmd/internal/article"
)

func TestConvertPromotesFirstLocalImage(t *testing.T) {
	dir := t.TempDir()
	raw := "# Title\n\n![remote](https://cdn.example.com/r.png)\n\n![A](./img/a.png)\n\ntext\n\n![B](./img/b.png)\n"
	doc := article.Parse(filepath.Join(dir, "post.md"), raw)

	res := Convert(doc, Options{})

	if want := filepath.Join(dir, "img", "a.png"); res.Cover != want {
		t.Errorf("Cover = %q, want %q", res.Cover, want)
	}
	if strings.Contains(res.HTML, "【a.png】") {
		t.Errorf("cover placeholder still present:\n%s", res.HTML)
	}
	if len(res.Images) != 2 {
		t.Fatalf("Images = %+v, want remote and b.png", res.Images)
	}
	if res.Images[0].Placeholder != "【r.png】" || res.Images[0].Path != "" {
		t.Errorf("first image = %+v", res.Images[0])
	}
	if res.Images[1].Placeholder != "【b.png】" || res.Images[1].BlockIndex != 2 {
		t.Errorf("second image = %+v", res.Images[1])
	}
	if res.Title != "Title" {
		t.Errorf("Title = %q", res.Title)
	}
	if res.TotalBlocks != 3 {
		t.Errorf("TotalBlocks = %d, want 3", res.TotalBlocks)
	}
}

func TestConvertExplicitCover(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		raw  string
		opts Options
		want string
	}{
		{
			name: "metadata embed",
			raw:  "---\ncoverImage: \"![[cover.png]]\"\n---\n![A](a.png)",
			want: filepath.Join(dir, "cover.png"),
		},
		{
			name: "metadata url",
			raw:  "---\nimage: https://cdn.example.com/c.jpg\n---\n![A](a.png)",
			want: "https://cdn.example.com/c.jpg",
		},
		{
			name: "option beats metadata",
			raw:  "---\ncover: meta.png\n---\n![A](a.png)",
			opts: Options{Cover: "flag.png", Title: "Override"},
			want: filepath.Join(dir, "flag.png"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := article.Parse(filepath.Join(dir, "p.md"), tt.raw)
			res := Convert(doc, tt.opts)
			if res.Cover != tt.want {
				t.Errorf("Cover = %q, want %q", res.Cover, tt.want)
			}
			if len(res.Images) != 1 || !strings.Contains(res.HTML, "<p>【a.png】</p>") {
				t.Errorf("content image removed with explicit cover: %s", res.HTML)
			}
			if tt.opts.Title != "" && res.Title != tt.opts.Title {
				t.Errorf("Title = %q, want %q", res.Title, tt.opts.Title)
			}
		})
	}
}

func TestConvertNoImages(t *testing.T) {
	doc := article.Parse("/tmp/p.md", "Just **text**.")
	res := Convert(doc, Options{})
	if res.Cover != "" || len(res.Images) != 0 {
		t.Errorf("unexpected cover/images: %+v", res)
	}
	if res.HTML != "<p>Just <strong>text</strong>.</p>" {
		t.Errorf("HTML = %q", res.HTML)
	}
}
