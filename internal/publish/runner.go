package publish

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gubarz/postmd/internal/logger"
	"github.com/gubarz/postmd/internal/payload"
)

// Preparer loads a file and builds its payload.
type Preparer func(ctx context.Context, path string) (payload.Payload, error)

// Archiver moves a published file out of the source directory and returns
// its new location.
type Archiver func(path, title string) (string, error)

// Recorder persists outcomes.
type Recorder interface {
	RecordPublish(ctx context.Context, runID string, o Outcome) error
}

// Runner publishes a batch of files one after another.
type Runner struct {
	Reconciler *Reconciler
	Prepare    Preparer
	Archive    Archiver
	Recorder   Recorder
	Log        *logger.Logger
}

// Summary totals a batch.
type Summary struct {
	RunID    string        `json:"run_id" yaml:"run_id"`
	Outcomes []Outcome     `json:"outcomes" yaml:"outcomes"`
	Created  int           `json:"created" yaml:"created"`
	Updated  int           `json:"updated" yaml:"updated"`
	Skipped  int           `json:"skipped" yaml:"skipped"`
	Failed   int           `json:"failed" yaml:"failed"`
	DryRun   int           `json:"dry_run" yaml:"dry_run"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Total is the number of articles processed.
func (s Summary) Total() int {
	return len(s.Outcomes)
}

func (s *Summary) add(o Outcome) {
	s.Outcomes = append(s.Outcomes, o)
	switch o.Action {
	case ActionCreate:
		s.Created++
	case ActionUpdate:
		s.Updated++
	case ActionSkip:
		s.Skipped++
	case ActionFail:
		s.Failed++
	case ActionDryRun:
		s.DryRun++
	}
}

// String renders the summary counts on one line.
func (s Summary) String() string {
	parts := []string{
		fmt.Sprintf("created %d", s.Created),
		fmt.Sprintf("updated %d", s.Updated),
		fmt.Sprintf("skipped %d", s.Skipped),
		fmt.Sprintf("failed %d", s.Failed),
	}
	if s.DryRun > 0 {
		parts = append(parts, fmt.Sprintf("dry-run %d", s.DryRun))
	}
	return fmt.Sprintf("%d articles: %s", s.Total(), strings.Join(parts, ", "))
}

// Run processes paths in order. A failing article is recorded and the batch
// moves on; cancellation stops before the next article.
func (r *Runner) Run(ctx context.Context, paths []string) Summary {
	log := r.Log
	if log == nil {
		log = logger.Discard()
	}

	start := time.Now()
	sum := Summary{RunID: uuid.NewString()}
	log = log.With("run", sum.RunID[:8])

	for _, path := range paths {
		if ctx.Err() != nil {
			log.Warn("batch cancelled", "remaining", len(paths)-sum.Total())
			break
		}
		o := r.one(ctx, path, log)
		log.Outcome(string(o.Action), o.Slug, o.Message)
		if r.Recorder != nil {
			if err := r.Recorder.RecordPublish(ctx, sum.RunID, o); err != nil {
				log.Warn("could not record outcome", "slug", o.Slug, "error", err)
			}
		}
		sum.add(o)
	}

	sum.Duration = time.Since(start)
	log.BatchCompleted(sum.Created, sum.Updated, sum.Skipped, sum.Failed, sum.Duration)
	return sum
}

func (r *Runner) one(ctx context.Context, path string, log *logger.Logger) Outcome {
	p, err := r.Prepare(ctx, path)
	if err != nil {
		return Outcome{File: path, Action: ActionFail, Message: err.Error()}
	}
	for _, w := range p.Warnings {
		log.Warning(path, w)
	}
	log.ArticleLoaded(path, p.Title, p.Slug)

	o := r.Reconciler.Reconcile(ctx, p)
	if o.File == "" {
		o.File = path
	}

	if r.Archive != nil && (o.Action == ActionCreate || o.Action == ActionUpdate) {
		dest, err := r.Archive(path, p.Title)
		if err != nil {
			log.Warn("could not move article", "file", path, "error", err)
		} else {
			log.Info("article moved", "to", dest)
			o.File = dest
		}
	}
	return o
}
