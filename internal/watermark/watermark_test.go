package watermark

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func white(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	return img
}

func changed(a, b *image.NRGBA) int {
	n := 0
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			n++
		}
	}
	return n
}

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		changes bool
	}{
		{"flat", Options{Text: "mark", Angle: 0, Opacity: 255}, true},
		{"rotated", Options{Text: "mark", Angle: 30, Opacity: 200}, true},
		{"invisible", Options{Text: "mark", Angle: 30, Opacity: 0}, false},
		{"default text", Options{Opacity: 255}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := white(200, 100)
			got := Apply(src, tt.opts)
			if got.Bounds() != src.Bounds() {
				t.Fatalf("bounds = %v, want %v", got.Bounds(), src.Bounds())
			}
			if n := changed(src, got); (n > 0) != tt.changes {
				t.Errorf("changed bytes = %d, want changes %v", n, tt.changes)
			}
		})
	}
}

func TestApplyKeepsSource(t *testing.T) {
	src := white(64, 64)
	Apply(src, Options{Text: "x", Opacity: 255})
	if changed(src, white(64, 64)) != 0 {
		t.Error("source image was modified")
	}
}

func TestApplyFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.png")

	f, err := os.Create(in)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, white(120, 80)); err != nil {
		t.Fatal(err)
	}
	f.Close()

	if err := ApplyFile(in, out, DefaultOptions()); err != nil {
		t.Fatalf("ApplyFile() error = %v", err)
	}

	r, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	img, err := png.Decode(r)
	if err != nil {
		t.Fatalf("output is not a png: %v", err)
	}
	if img.Bounds().Dx() != 120 || img.Bounds().Dy() != 80 {
		t.Errorf("size = %v", img.Bounds())
	}

	if err := ApplyFile(filepath.Join(dir, "missing.png"), out, DefaultOptions()); err == nil {
		t.Error("expected error for missing input")
	}
}

func TestLoadFaceFallback(t *testing.T) {
	face := loadFace([]string{"/no/such/font.ttf"}, 24)
	if face.Metrics().Height.Ceil() != 13 {
		t.Errorf("expected the 7x13 fallback, height = %d", face.Metrics().Height.Ceil())
	}
}
