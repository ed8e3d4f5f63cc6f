// Package upload sends local images to an image host and rewrites the
// Markdown that references them.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultAPI is where PicGo and PicList listen by default.
const DefaultAPI = "http://127.0.0.1:36677/upload"

// Kinds of uploader.
const (
	KindPicList = "piclist"
	KindPicGo   = "picgo"
	KindCustom  = "custom"
)

// ErrNoURL is returned when a response carries no recognizable URL.
var ErrNoURL = errors.New("no url in upload response")

// Uploader sends one local file and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, path string) (string, error)
}

// New builds the uploader for kind. An empty api uses DefaultAPI.
func New(kind, api string, client *http.Client) (Uploader, error) {
	if api == "" {
		api = DefaultAPI
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	switch strings.ToLower(kind) {
	case KindPicList, KindPicGo, "":
		return &PicGoClient{api: api, http: client}, nil
	case KindCustom:
		return &CustomClient{api: api, http: client, strategies: DefaultStrategies}, nil
	default:
		return nil, fmt.Errorf("unknown uploader %q (picgo, piclist, custom)", kind)
	}
}

// ============================================================================
// PicGo / PicList
// ============================================================================

// PicGoClient speaks the PicGo server protocol, which PicList also serves.
type PicGoClient struct {
	api  string
	http *http.Client
}

type picgoResponse struct {
	Success bool     `json:"success"`
	Result  []string `json:"result"`
	Message string   `json:"message"`
}

// Upload implements Uploader.
func (c *PicGoClient) Upload(ctx context.Context, path string) (string, error) {
	body, err := json.Marshal(map[string][]string{"list": {path}})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.api, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	raw, err := send(c.http, req)
	if err != nil {
		return "", err
	}
	var out picgoResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if !out.Success {
		msg := out.Message
		if msg == "" {
			msg = "unknown error"
		}
		return "", fmt.Errorf("upload failed: %s", msg)
	}
	if len(out.Result) == 0 || out.Result[0] == "" {
		return "", ErrNoURL
	}
	return out.Result[0], nil
}

// ============================================================================
// Custom API
// ============================================================================

// CustomClient posts the file as multipart field "file" and digs the URL out
// of whatever JSON comes back.
type CustomClient struct {
	api        string
	http       *http.Client
	strategies []Strategy
}

// Upload implements Uploader.
func (c *CustomClient) Upload(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.api, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	raw, err := send(c.http, req)
	if err != nil {
		return "", err
	}
	var resp map[string]any
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return ExtractURL(resp, c.strategies...)
}

// send performs req and returns the body of a 2xx response.
func send(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return raw, nil
}
