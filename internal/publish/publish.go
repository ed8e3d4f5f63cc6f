// Package publish decides, per article, whether to create, update or leave
// the remote copy alone, and runs that decision over a batch.
package publish

import (
	"context"
	"fmt"

	"github.com/gubarz/postmd/internal/payload"
)

// Remote is the publisher's view of an existing post or page.
type Remote struct {
	ID        string
	Slug      string
	UpdatedAt string
	URL       string
}

// Publisher is the remote publishing API.
type Publisher interface {
	// LookupBySlug returns nil, nil when nothing has the slug.
	LookupBySlug(ctx context.Context, slug string, ct payload.ContentType) (*Remote, error)
	Create(ctx context.Context, p payload.Payload) (*Remote, error)
	Update(ctx context.Context, id string, p payload.Payload, updatedAt string) (*Remote, error)
}

// Action is what happened to one article.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionSkip   Action = "skip"
	ActionFail   Action = "fail"
	ActionDryRun Action = "dry-run"
)

// Outcome reports one reconciliation.
type Outcome struct {
	File    string  `json:"file" yaml:"file"`
	Title   string  `json:"title" yaml:"title"`
	Slug    string  `json:"slug" yaml:"slug"`
	Type    string  `json:"type" yaml:"type"`
	Action  Action  `json:"action" yaml:"action"`
	Message string  `json:"message,omitempty" yaml:"message,omitempty"`
	Remote  *Remote `json:"remote,omitempty" yaml:"remote,omitempty"`
}

// Limiter gates remote-mutating calls.
type Limiter interface {
	Wait(ctx context.Context) error
}

// lookup is the reconciler's knowledge of the remote copy.
type lookup int

const (
	notChecked lookup = iota
	exists
	notExists
)

// Reconciler maps a payload onto Create, Update or Skip.
type Reconciler struct {
	pub     Publisher
	limiter Limiter
	Force   bool
	DryRun  bool
}

// NewReconciler creates a reconciler. limiter may be nil.
func NewReconciler(pub Publisher, limiter Limiter) *Reconciler {
	return &Reconciler{pub: pub, limiter: limiter}
}

// Reconcile publishes p. Errors never escape: they become ActionFail.
func (r *Reconciler) Reconcile(ctx context.Context, p payload.Payload) Outcome {
	out := Outcome{File: p.Source, Title: p.Title, Slug: p.Slug, Type: string(p.Type)}

	if r.DryRun {
		out.Action = ActionDryRun
		out.Message = fmt.Sprintf("would publish %s %q as %s", p.Type, p.Slug, p.Status)
		return out
	}

	state := notChecked
	remote, err := r.pub.LookupBySlug(ctx, p.Slug, p.Type)
	switch {
	case err != nil:
		return fail(out, fmt.Errorf("lookup: %w", err))
	case remote == nil:
		state = notExists
	default:
		state = exists
	}

	switch {
	case state == notExists:
		if err := r.wait(ctx); err != nil {
			return fail(out, err)
		}
		created, err := r.pub.Create(ctx, p)
		if err != nil {
			return fail(out, fmt.Errorf("create: %w", err))
		}
		out.Action, out.Remote = ActionCreate, created
	case state == exists && !r.Force:
		out.Action, out.Remote = ActionSkip, remote
		out.Message = "already exists, use --force to update"
	default:
		if err := r.wait(ctx); err != nil {
			return fail(out, err)
		}
		updated, err := r.pub.Update(ctx, remote.ID, p, remote.UpdatedAt)
		if err != nil {
			return fail(out, fmt.Errorf("update: %w", err))
		}
		out.Action, out.Remote = ActionUpdate, updated
	}

	if out.Remote != nil && out.Message == "" {
		out.Message = out.Remote.URL
	}
	return out
}

func (r *Reconciler) wait(ctx context.Context) error {
	if r.limiter == nil {
		return nil
	}
	return r.limiter.Wait(ctx)
}

func fail(out Outcome, err error) Outcome {
	out.Action = ActionFail
	out.Message = err.Error()
	return out
}
