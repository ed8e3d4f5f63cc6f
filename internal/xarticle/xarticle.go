// Package xarticle prepares a document for the X article editor: restricted
// HTML with a placeholder wherever an image has to be inserted by hand, plus
// the image chosen as cover.
package xarticle

import (
	"github.com/gubarz/postmd/internal/article"
	"github.com/gubarz/postmd/internal/assets"
	"github.com/gubarz/postmd/internal/parser"
)

// CoverKeys are the metadata keys consulted for an explicit cover, in order.
var CoverKeys = []string{"cover_image", "coverImage", "cover", "image", "featureImage", "feature_image"}

// Options override values taken from the document.
type Options struct {
	Title string
	Cover string
}

// Image is a content image the author must insert at its placeholder.
type Image struct {
	Placeholder string `json:"placeholder" yaml:"placeholder"`
	Target      string `json:"target" yaml:"target"`
	Path        string `json:"localPath,omitempty" yaml:"local_path,omitempty"`
	BlockIndex  int    `json:"blockIndex" yaml:"block_index"`
}

// Result is the converted article.
type Result struct {
	Title       string         `json:"title" yaml:"title"`
	Cover       string         `json:"coverImage,omitempty" yaml:"cover_image,omitempty"`
	Images      []Image        `json:"contentImages" yaml:"content_images"`
	HTML        string         `json:"html" yaml:"html"`
	TotalBlocks int            `json:"totalBlocks" yaml:"total_blocks"`
	Blocks      []parser.Block `json:"-" yaml:"-"`
}

// Convert parses doc and promotes a cover. Without an explicit cover the
// first local image-only line becomes the cover and every block showing that
// image is dropped.
func Convert(doc article.Document, opts Options) Result {
	dir := doc.Dir()
	blocks := parser.Parse(doc.Body, func(src, _ string) string {
		return assets.Placeholder(src)
	})

	cover := explicitCover(doc, opts, dir)
	if cover == "" {
		for _, b := range blocks {
			if b.Kind != parser.BlockImage {
				continue
			}
			if p := assets.Resolve(b.Src, dir); p != "" {
				cover = p
				break
			}
		}
		blocks = dropImage(blocks, cover, dir)
	}

	title := opts.Title
	if title == "" {
		title = doc.Title
	}

	return Result{
		Title:       title,
		Cover:       cover,
		Images:      contentImages(blocks, dir),
		HTML:        parser.RenderHTML(blocks),
		TotalBlocks: len(blocks),
		Blocks:      blocks,
	}
}

// explicitCover returns the resolved path (or URL) of a cover given on the
// command line or in metadata.
func explicitCover(doc article.Document, opts Options, dir string) string {
	value := opts.Cover
	if value == "" {
		value = doc.Meta.First(CoverKeys...)
	}
	if value == "" {
		return ""
	}
	target := assets.TargetOf(value)
	if assets.IsRemote(target) {
		return target
	}
	return assets.Resolve(target, dir)
}

func dropImage(blocks []parser.Block, path, dir string) []parser.Block {
	if path == "" {
		return blocks
	}
	out := blocks[:0:0]
	for _, b := range blocks {
		if b.Kind == parser.BlockImage && assets.Resolve(b.Src, dir) == path {
			continue
		}
		out = append(out, b)
	}
	return out
}

func contentImages(blocks []parser.Block, dir string) []Image {
	var images []Image
	for i, b := range blocks {
		if b.Kind != parser.BlockImage {
			continue
		}
		images = append(images, Image{
			Placeholder: b.Text,
			Target:      b.Src,
			Path:        assets.Resolve(b.Src, dir),
			BlockIndex:  i,
		})
	}
	return images
}
