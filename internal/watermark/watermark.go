// Package watermark tiles rotated text across an image.
package watermark

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

const (
	minFontSize = 24
	defaultText = "postmd"
)

// Ink is the text colour before opacity is applied.
var Ink = color.NRGBA{R: 120, G: 120, B: 120}

// Options controls the watermark.
type Options struct {
	Text      string
	Angle     float64 // degrees, counter-clockwise
	Opacity   uint8
	FontPaths []string // first one that loads wins
}

// DefaultOptions returns the stock watermark settings.
func DefaultOptions() Options {
	return Options{Text: defaultText, Angle: 30, Opacity: 25}
}

// ApplyFile watermarks the image at in and writes a PNG to out.
func ApplyFile(in, out string, opts Options) error {
	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	dst := Apply(src, opts)

	w, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := png.Encode(w, dst); err != nil {
		w.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return w.Close()
}

// Apply returns a copy of src with the text tiled diagonally over it.
func Apply(src image.Image, opts Options) *image.NRGBA {
	if opts.Text == "" {
		opts.Text = defaultText
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), src, b.Min, draw.Src)
	if w == 0 || h == 0 {
		return out
	}

	face := loadFace(opts.FontPaths, float64(max(minFontSize, w/30)))
	defer face.Close()

	diag := int(math.Ceil(math.Hypot(float64(w), float64(h))))
	side := 2 * diag

	tiles := tile(face, opts.Text, side, color.NRGBA{R: Ink.R, G: Ink.G, B: Ink.B, A: opts.Opacity})
	rotated := rotate(tiles, opts.Angle)

	off := image.Pt((side-w)/2, (side-h)/2)
	draw.Draw(out, out.Bounds(), rotated, off, draw.Over)
	return out
}

// tile fills a transparent square canvas with rows of text.
func tile(face font.Face, text string, side int, ink color.Color) *image.NRGBA {
	canvas := image.NewNRGBA(image.Rect(0, 0, side, side))

	textW := font.MeasureString(face, text).Ceil()
	textH := face.Metrics().Height.Ceil()
	stepX := max(1, int(1.2*float64(textW)))
	stepY := max(1, 5*textH)
	ascent := face.Metrics().Ascent.Ceil()

	d := &font.Drawer{Dst: canvas, Src: image.NewUniform(ink), Face: face}
	for y := 0; y < side; y += stepY {
		for x := 0; x < side; x += stepX {
			d.Dot = fixed.P(x, y+ascent)
			d.DrawString(text)
		}
	}
	return canvas
}

// rotate turns a square image about its centre.
func rotate(src *image.NRGBA, degrees float64) *image.NRGBA {
	dst := image.NewNRGBA(src.Bounds())
	if degrees == 0 {
		draw.Draw(dst, dst.Bounds(), src, image.Point{}, draw.Src)
		return dst
	}
	rad := degrees * math.Pi / 180
	sin, cos := math.Sincos(rad)
	c := float64(src.Bounds().Dx()) / 2

	// Screen y grows downward, so a visual counter-clockwise turn uses +sin on x.
	m := f64.Aff3{
		cos, sin, c - cos*c - sin*c,
		-sin, cos, c + sin*c - cos*c,
	}
	draw.BiLinear.Transform(dst, m, src, src.Bounds(), draw.Src, nil)
	return dst
}

// loadFace opens the first usable font file, falling back to the built-in
// bitmap face.
func loadFace(paths []string, size float64) font.Face {
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		f, err := opentype.Parse(data)
		if err != nil {
			continue
		}
		face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			continue
		}
		return face
	}
	return basicfont.Face7x13
}
