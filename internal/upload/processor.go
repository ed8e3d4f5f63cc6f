package upload

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gubarz/postmd/internal/assets"
	"github.com/gubarz/postmd/internal/logger"
)

// Cache remembers which URL a file's content was uploaded to.
type Cache interface {
	LookupUpload(ctx context.Context, hash, uploader string) (string, bool, error)
	SaveUpload(ctx context.Context, hash, uploader, path, url string) error
}

// Limiter gates uploads.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Status of one image.
type Status string

const (
	StatusUploaded Status = "uploaded"
	StatusCached   Status = "cached"
	StatusFailed   Status = "failed"
	StatusMissing  Status = "missing"
	StatusDryRun   Status = "dry-run"
)

// Result is the fate of one referenced image.
type Result struct {
	Original string `json:"original" yaml:"original"`
	Path     string `json:"path" yaml:"path"`
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`
	Size     int64  `json:"size,omitempty" yaml:"size,omitempty"`
	Status   Status `json:"status" yaml:"status"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Summary counts results by status.
type Summary struct {
	Total    int `json:"total" yaml:"total"`
	Uploaded int `json:"uploaded" yaml:"uploaded"`
	Cached   int `json:"cached" yaml:"cached"`
	Failed   int `json:"failed" yaml:"failed"`
	Missing  int `json:"missing" yaml:"missing"`
}

// Succeeded is the number of images that now have a URL.
func (s Summary) Succeeded() int {
	return s.Uploaded + s.Cached
}

func summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusUploaded:
			s.Uploaded++
		case StatusCached:
			s.Cached++
		case StatusFailed:
			s.Failed++
		case StatusMissing:
			s.Missing++
		}
	}
	return s
}

// Report describes the processing of one Markdown file.
type Report struct {
	File    string   `json:"file" yaml:"file"`
	Results []Result `json:"results" yaml:"results"`
	Summary Summary  `json:"summary" yaml:"summary"`
	Written bool     `json:"written" yaml:"written"`
}

// Processor uploads the images referenced by a document.
type Processor struct {
	uploader Uploader
	scope    string
	cache    Cache
	limiter  Limiter
	DryRun   bool
	Log      *logger.Logger
}

// NewProcessor creates a processor. scope names the upload target for cache
// lookups; cache and limiter may be nil.
func NewProcessor(u Uploader, scope string, cache Cache, limiter Limiter) *Processor {
	return &Processor{uploader: u, scope: scope, cache: cache, limiter: limiter, Log: logger.Discard()}
}

// ProcessFile uploads every local image in a Markdown file and rewrites the
// file in place when at least one upload succeeded.
func (p *Processor) ProcessFile(ctx context.Context, path string) (Report, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Report{}, err
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return Report{}, fmt.Errorf("read markdown: %w", err)
	}
	content := string(raw)
	dir := filepath.Dir(abs)

	refs := assets.Extract(content, dir)
	results, urls := p.uploadRefs(ctx, refs)
	rep := Report{File: abs, Results: results, Summary: summarize(results)}

	if p.DryRun || len(urls) == 0 {
		return rep, nil
	}
	updated := assets.Rewrite(content, dir, urls)
	if updated != content {
		info, err := os.Stat(abs)
		if err != nil {
			return rep, err
		}
		if err := os.WriteFile(abs, []byte(updated), info.Mode().Perm()); err != nil {
			return rep, fmt.Errorf("write markdown: %w", err)
		}
		rep.Written = true
	}
	return rep, nil
}

// Localize uploads the images of an in-memory body plus a cover reference
// and returns both rewritten. Nothing is written to disk.
func (p *Processor) Localize(ctx context.Context, baseDir, body, cover string) (string, string, []Result) {
	refs := assets.Extract(body, baseDir)

	coverPath := ""
	if cover != "" {
		coverPath = assets.Resolve(assets.TargetOf(cover), baseDir)
	}
	if coverPath != "" && !containsPath(refs, coverPath) {
		refs = append(refs, assets.Reference{Original: cover, Target: cover, Path: coverPath})
	}

	results, urls := p.uploadRefs(ctx, refs)
	if p.DryRun {
		return body, cover, results
	}

	if u, ok := urls[coverPath]; ok && coverPath != "" {
		cover = u
	}
	return assets.Rewrite(body, baseDir, urls), cover, results
}

// UploadFile uploads a single image.
func (p *Processor) UploadFile(ctx context.Context, path string) Result {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Result{Original: path, Path: path, Status: StatusFailed, Error: err.Error()}
	}
	results, _ := p.uploadRefs(ctx, []assets.Reference{{Original: path, Target: path, Path: abs}})
	return results[0]
}

func containsPath(refs []assets.Reference, path string) bool {
	for _, r := range refs {
		if r.Path == path {
			return true
		}
	}
	return false
}

// uploadRefs handles references in order and returns the resulting URL per
// resolved path.
func (p *Processor) uploadRefs(ctx context.Context, refs []assets.Reference) ([]Result, map[string]string) {
	results := make([]Result, 0, len(refs))
	urls := make(map[string]string)

	for _, ref := range refs {
		r := p.uploadOne(ctx, ref)
		results = append(results, r)
		if r.URL != "" && (r.Status == StatusUploaded || r.Status == StatusCached) {
			urls[ref.Path] = r.URL
		}
	}
	return results, urls
}

func (p *Processor) uploadOne(ctx context.Context, ref assets.Reference) Result {
	r := Result{Original: ref.Original, Path: ref.Path}

	info, err := os.Stat(ref.Path)
	if err != nil || info.IsDir() {
		p.Log.ImageMissing(ref.Path)
		r.Status = StatusMissing
		r.Error = "file not found"
		return r
	}
	r.Size = info.Size()

	if p.DryRun {
		r.Status = StatusDryRun
		return r
	}

	hash := ""
	if p.cache != nil {
		if hash, err = fileHash(ref.Path); err == nil {
			if u, ok, err := p.cache.LookupUpload(ctx, hash, p.scope); err == nil && ok {
				p.Log.ImageUploaded(ref.Path, u, true)
				r.URL, r.Status = u, StatusCached
				return r
			}
		}
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return failed(r, err)
		}
	}
	u, err := p.uploader.Upload(ctx, ref.Path)
	if err != nil {
		p.Log.ImageFailed(ref.Path, err)
		return failed(r, err)
	}
	u = strings.TrimSpace(u)
	p.Log.ImageUploaded(ref.Path, u, false)
	r.URL, r.Status = u, StatusUploaded

	if p.cache != nil && hash != "" {
		if err := p.cache.SaveUpload(ctx, hash, p.scope, ref.Path, u); err != nil {
			p.Log.Warn("could not cache upload", "file", ref.Path, "error", err)
		}
	}
	return r
}

func failed(r Result, err error) Result {
	r.Status = StatusFailed
	r.Error = err.Error()
	return r
}

func fileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
