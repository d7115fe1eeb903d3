// Package github implements the versioned document store over the GitHub
// contents API. A document's blob sha doubles as its version token: writes
// carry the expected sha and the API rejects stale ones, which is the only
// concurrency control the system has.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Rod1202/print-inv/internal/service"
)

type Config struct {
	BaseURL string // defaults to https://api.github.com
	Owner   string
	Repo    string
	Token   string
	Timeout time.Duration
}

// Client talks to one repository. It implements service.DocumentStore.
type Client struct {
	base  string
	owner string
	repo  string
	token string
	http  *http.Client
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.github.com"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		base:  strings.TrimRight(cfg.BaseURL, "/"),
		owner: cfg.Owner,
		repo:  cfg.Repo,
		token: cfg.Token,
		http:  &http.Client{Timeout: cfg.Timeout},
	}
}

type contentsResponse struct {
	Content string `json:"content"`
	SHA     string `json:"sha"`
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
}

type putResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
}

// Fetch retrieves a document and its version token. A missing document is
// service.ErrNotFound; anything else is a transport failure for the caller
// to degrade as it sees fit.
func (c *Client) Fetch(ctx context.Context, path string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	c.authorize(req)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", path, err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, "", fmt.Errorf("fetch %s: %w", path, service.ErrNotFound)
	default:
		return nil, "", fmt.Errorf("fetch %s: status %d", path, res.StatusCode)
	}

	var body contentsResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, "", fmt.Errorf("fetch %s: decode: %w", path, err)
	}
	// The API wraps base64 payloads with newlines.
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(body.Content, "\n", ""))
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: content: %w", path, err)
	}
	return raw, body.SHA, nil
}

// Write replaces a document conditionally on expectedToken. An empty token
// creates the document; a stale one yields service.ErrConflict.
func (c *Client) Write(ctx context.Context, path string, content []byte, expectedToken, message string) (string, error) {
	payload, err := json.Marshal(putRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		SHA:     expectedToken,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.url(path), bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusConflict, http.StatusUnprocessableEntity:
		// 409 is a sha mismatch; 422 is the API's answer to a missing sha
		// for an existing file. Both mean our token went stale.
		return "", fmt.Errorf("write %s: %w", path, service.ErrConflict)
	default:
		return "", fmt.Errorf("write %s: status %d", path, res.StatusCode)
	}

	var body putResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("write %s: decode: %w", path, err)
	}
	return body.Content.SHA, nil
}

func (c *Client) url(path string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.base, c.owner, c.repo, path)
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}
}
