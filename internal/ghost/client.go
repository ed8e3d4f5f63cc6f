// Package ghost is a small client for the Ghost Admin API covering what the
// publisher needs: lookups by slug, create, update and tiers.
package ghost

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gubarz/postmd/internal/logger"
	"github.com/gubarz/postmd/internal/payload"
	"github.com/gubarz/postmd/internal/publish"
)

const (
	apiPath        = "/ghost/api/admin"
	acceptVersion  = "v5.0"
	tokenLifetime  = 5 * time.Minute
	tokenAudience  = "/admin/"
	maxErrorBodyKB = 4
)

// ErrInvalidKey is returned for admin keys not shaped like id:hexsecret.
var ErrInvalidKey = errors.New("invalid admin api key, expected id:secret")

// APIError is a non-2xx response.
type APIError struct {
	Op      string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.Status, e.Message)
}

// Client talks to one Ghost site.
type Client struct {
	baseURL string
	keyID   string
	secret  []byte
	http    *http.Client
	now     func() time.Time

	log *logger.Logger

	tiersMu sync.Mutex
	tiers   map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http client (useful for testing)
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets where the client reports recoverable problems
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithTimeout sets the request timeout on the default http client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// NewClient creates a client for siteURL authenticated with an admin key.
func NewClient(siteURL, adminKey string, opts ...Option) (*Client, error) {
	id, secretHex, ok := strings.Cut(strings.TrimSpace(adminKey), ":")
	if !ok || id == "" || secretHex == "" {
		return nil, ErrInvalidKey
	}
	secret, err := hex.DecodeString(secretHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	c := &Client{
		baseURL: strings.TrimRight(siteURL, "/") + apiPath,
		keyID:   id,
		secret:  secret,
		http:    &http.Client{Timeout: 30 * time.Second},
		now:     time.Now,
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// token signs a short-lived admin JWT.
func (c *Client) token() (string, error) {
	now := c.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(tokenLifetime).Unix(),
		"aud": tokenAudience,
	})
	t.Header["kid"] = c.keyID
	return t.SignedString(c.secret)
}

// do sends a request and decodes a JSON response into out. A 404 is
// reported as an *APIError with Status 404.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode: %w", op, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	tok, err := c.token()
	if err != nil {
		return fmt.Errorf("%s: sign token: %w", op, err)
	}
	req.Header.Set("Authorization", "Ghost "+tok)
	req.Header.Set("Accept-Version", acceptVersion)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyKB<<10))
		return &APIError{Op: op, Status: resp.StatusCode, Message: errorMessage(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode: %w", op, err)
	}
	return nil
}

// errorMessage pulls the first message out of Ghost's error envelope.
func errorMessage(raw []byte) string {
	var env struct {
		Errors []struct {
			Message string `json:"message"`
			Context string `json:"context"`
		} `json:"errors"`
	}
	if json.Unmarshal(raw, &env) == nil && len(env.Errors) > 0 {
		e := env.Errors[0]
		if e.Context != "" {
			return e.Message + " (" + e.Context + ")"
		}
		return e.Message
	}
	return strings.TrimSpace(string(raw))
}

// Site is the subset of /site/ used to check connectivity.
type Site struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Version string `json:"version"`
}

// Ping fetches site info, verifying the URL and key.
func (c *Client) Ping(ctx context.Context) (*Site, error) {
	var out struct {
		Site Site `json:"site"`
	}
	if err := c.do(ctx, "site", http.MethodGet, "/site/", nil, &out); err != nil {
		return nil, err
	}
	return &out.Site, nil
}

func collection(ct payload.ContentType) string {
	if ct == payload.TypePage {
		return "pages"
	}
	return "posts"
}

// LookupBySlug implements publish.Publisher.
func (c *Client) LookupBySlug(ctx context.Context, slug string, ct payload.ContentType) (*publish.Remote, error) {
	coll := collection(ct)
	path := "/" + coll + "/slug/" + url.PathEscape(slug) + "/?fields=id,slug,updated_at,url"

	var out map[string][]post
	err := c.do(ctx, "lookup "+slug, http.MethodGet, path, nil, &out)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(out[coll]) == 0 {
		return nil, nil
	}
	return out[coll][0].remote(), nil
}

// Create implements publish.Publisher.
func (c *Client) Create(ctx context.Context, p payload.Payload) (*publish.Remote, error) {
	body, err := c.toPost(ctx, p)
	if err != nil {
		return nil, err
	}
	return c.write(ctx, "create "+p.Slug, http.MethodPost, "/"+collection(p.Type)+"/", p.Type, body)
}

// Update implements publish.Publisher. updatedAt must be the remote's
// current updated_at or Ghost rejects the edit.
func (c *Client) Update(ctx context.Context, id string, p payload.Payload, updatedAt string) (*publish.Remote, error) {
	body, err := c.toPost(ctx, p)
	if err != nil {
		return nil, err
	}
	body.ID = id
	body.UpdatedAt = updatedAt
	return c.write(ctx, "update "+p.Slug, http.MethodPut, "/"+collection(p.Type)+"/"+url.PathEscape(id)+"/", p.Type, body)
}

func (c *Client) write(ctx context.Context, op, method, path string, ct payload.ContentType, body post) (*publish.Remote, error) {
	coll := collection(ct)
	in := map[string][]post{coll: {body}}
	var out map[string][]post
	if err := c.do(ctx, op, method, path, in, &out); err != nil {
		return nil, err
	}
	if len(out[coll]) == 0 {
		return nil, fmt.Errorf("%s: empty response", op)
	}
	return out[coll][0].remote(), nil
}

// Tier is a membership tier.
type Tier struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Tiers lists the site's tiers.
func (c *Client) Tiers(ctx context.Context) ([]Tier, error) {
	var out struct {
		Tiers []Tier `json:"tiers"`
	}
	if err := c.do(ctx, "tiers", http.MethodGet, "/tiers/?limit=all", nil, &out); err != nil {
		return nil, err
	}
	return out.Tiers, nil
}

// resolveTiers maps tier names or slugs to ids. Values that match nothing are
// passed through as ids. Only a successful tier listing is cached; when the
// listing fails every value passes through and the next call tries again.
func (c *Client) resolveTiers(ctx context.Context, names []string) []tierRef {
	if len(names) == 0 {
		return nil
	}
	known := c.tierIndex(ctx)

	refs := make([]tierRef, 0, len(names))
	for _, n := range names {
		id, ok := known[strings.ToLower(n)]
		if !ok {
			id = n
		}
		refs = append(refs, tierRef{ID: id})
	}
	return refs
}

func (c *Client) tierIndex(ctx context.Context) map[string]string {
	c.tiersMu.Lock()
	defer c.tiersMu.Unlock()
	if c.tiers != nil {
		return c.tiers
	}

	tiers, err := c.Tiers(ctx)
	if err != nil {
		c.log.Warn("could not list tiers, using values as ids", "error", err)
		return nil
	}
	c.tiers = make(map[string]string, len(tiers)*2)
	for _, t := range tiers {
		c.tiers[strings.ToLower(t.Name)] = t.ID
		c.tiers[strings.ToLower(t.Slug)] = t.ID
	}
	return c.tiers
}

var _ publish.Publisher = (*Client)(nil)
