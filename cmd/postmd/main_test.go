package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gubarz/postmd/internal/output"
	"github.com/gubarz/postmd/internal/payload"
	"github.com/gubarz/postmd/internal/upload"
)

func TestWriteReport(t *testing.T) {
	v := struct {
		Name string `json:"name" yaml:"name"`
	}{"a&b"}

	tests := []struct {
		format  string
		want    string
		wantErr bool
	}{
		{"json", "{\n  \"name\": \"a&b\"\n}\n", false},
		{"yaml", "name: a&b\n", false},
		{"text", "plain\n", false},
		{"", "plain\n", false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			err := writeReport(&buf, tt.format, v, func(w io.Writer) error {
				_, err := io.WriteString(w, "plain\n")
				return err
			})
			if (err != nil) != tt.wantErr {
				t.Fatalf("writeReport() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("writeReport() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestNewLimiter(t *testing.T) {
	if l := newLimiter(0); l.Allow() != true || l.Allow() != true {
		t.Error("zero interval should not limit")
	}
	l := newLimiter(time.Hour)
	if !l.Allow() || l.Allow() {
		t.Error("hourly limiter should allow exactly one burst event")
	}
}

func TestPrepare(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "post.md")
	md := "---\ntitle: Hello\n---\nBody [[Note|alias]] text\n"
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := prepare(context.Background(), path, payload.Options{Status: "published"}, nil)
	if err != nil {
		t.Fatalf("prepare() error = %v", err)
	}
	if p.Title != "Hello" || p.Slug != "hello" || p.Status != "published" {
		t.Errorf("payload = %+v", p)
	}
	if !strings.Contains(p.Body, "alias") || strings.Contains(p.Body, "[[") {
		t.Errorf("body = %q", p.Body)
	}

	if _, err := prepare(context.Background(), filepath.Join(dir, "missing.md"), payload.Options{}, nil); err == nil {
		t.Error("expected error for missing file")
	}
}

type bucketUploader struct{}

func (bucketUploader) Upload(_ context.Context, path string) (string, error) {
	return "https://bucket.example/" + filepath.Base(path), nil
}

func TestPrepareSwapsUploadedDomain(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "post.md")
	md := "---\ntitle: Hello\ncover: c.png\n---\n![a](a.png)\n"
	for name, data := range map[string]string{"post.md": md, "a.png": "a", "c.png": "c"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	proc := upload.NewProcessor(bucketUploader{}, upload.KindCustom, nil, nil)
	opts := payload.Options{AssetDomainFrom: "bucket.example", AssetDomainTo: "cdn.example"}
	p, err := prepare(context.Background(), path, opts, proc)
	if err != nil {
		t.Fatalf("prepare() error = %v", err)
	}
	if p.Body != "![a](https://cdn.example/a.png)" {
		t.Errorf("body = %q", p.Body)
	}
	if p.FeatureImage != "https://bucket.example/c.png" {
		t.Errorf("feature image = %q", p.FeatureImage)
	}
}

func TestCheckReportPath(t *testing.T) {
	tests := []struct {
		name     string
		mode     output.Mode
		report   string
		saveHTML string
		wantErr  bool
	}{
		{"print ignores report", output.Print, "", "out.html", false},
		{"file without report", output.File, "", "", true},
		{"file with report", output.File, "report.json", "out.html", false},
		{"file clobbers html", output.File, "./out.html", "out.html", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkReportPath(tt.mode, tt.report, tt.saveHTML)
			if (err != nil) != tt.wantErr {
				t.Errorf("checkReportPath() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
