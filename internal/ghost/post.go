package ghost

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gubarz/postmd/internal/payload"
	"github.com/gubarz/postmd/internal/publish"
)

type tagRef struct {
	Name string `json:"name"`
}

type tierRef struct {
	ID string `json:"id"`
}

// post is the wire shape shared by posts and pages.
type post struct {
	ID            string    `json:"id,omitempty"`
	Title         string    `json:"title,omitempty"`
	Slug          string    `json:"slug,omitempty"`
	Lexical       string    `json:"lexical,omitempty"`
	Status        string    `json:"status,omitempty"`
	Featured      bool      `json:"featured"`
	Tags          []tagRef  `json:"tags,omitempty"`
	Visibility    string    `json:"visibility,omitempty"`
	Tiers         []tierRef `json:"tiers,omitempty"`
	PublishedAt   string    `json:"published_at,omitempty"`
	FeatureImage  string    `json:"feature_image,omitempty"`
	CustomExcerpt string    `json:"custom_excerpt,omitempty"`
	UpdatedAt     string    `json:"updated_at,omitempty"`
	URL           string    `json:"url,omitempty"`
}

func (p post) remote() *publish.Remote {
	return &publish.Remote{ID: p.ID, Slug: p.Slug, UpdatedAt: p.UpdatedAt, URL: p.URL}
}

func (c *Client) toPost(ctx context.Context, p payload.Payload) (post, error) {
	lexical, err := Lexical(p.Body)
	if err != nil {
		return post{}, err
	}

	out := post{
		Title:         p.Title,
		Slug:          p.Slug,
		Lexical:       lexical,
		Status:        p.Status,
		Featured:      p.Featured,
		Visibility:    p.Visibility,
		FeatureImage:  p.FeatureImage,
		CustomExcerpt: p.Excerpt,
	}
	for _, t := range p.Tags {
		out.Tags = append(out.Tags, tagRef{Name: t})
	}
	if p.PublishedAt != nil {
		out.PublishedAt = p.PublishedAt.UTC().Format(time.RFC3339)
	}
	if len(p.Tiers) > 0 {
		out.Tiers = c.resolveTiers(ctx, p.Tiers)
	}
	return out, nil
}

// Lexical wraps a Markdown body in a Lexical document holding a single
// markdown card, which Ghost renders with its own Markdown engine.
func Lexical(markdown string) (string, error) {
	doc := map[string]any{
		"root": map[string]any{
			"children": []any{
				map[string]any{
					"type":     "markdown",
					"cardName": "markdown",
					"markdown": markdown,
				},
			},
			"direction": nil,
			"format":    "",
			"indent":    0,
			"type":      "root",
			"version":   1,
		},
	}
	buf, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}
