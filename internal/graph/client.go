// Package graph is a thin client for the Instagram Graph API.
//
// Responses are returned as raw JSON so the HTTP layer can pass them through
// unmodified. The client only checks that the call succeeded and that the
// body is well-formed JSON.
package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://graph.instagram.com"
	DefaultTimeout = 15 * time.Second

	// maxBodyBytes caps how much of an upstream response we buffer.
	maxBodyBytes = 4 << 20
)

// Field lists requested from the Graph API.
const (
	MediaFields    = "id,caption,media_type,media_url,thumbnail_url,permalink,timestamp"
	CommentFields  = "id,text,timestamp,username,replies{id,text,timestamp,username}"
	ProfileFields  = "id,username,account_type,media_count"
	IdentityFields = "id"
	LoginFields    = "id,username"
)

// APIError is returned when the Graph API answers with a non-2xx status.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("graph: api returned status %d: %s", e.Status, e.Body)
}

// Client calls graph.instagram.com on behalf of a user. It holds no
// per-user state; the access token is passed on every call.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient builds a client. An empty baseURL selects DefaultBaseURL and a
// nil httpClient gets one with DefaultTimeout.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// Me fetches the token owner's profile with the given comma-separated fields.
func (c *Client) Me(ctx context.Context, token, fields string) (json.RawMessage, error) {
	return c.get(ctx, "/me", token, url.Values{"fields": {fields}})
}

// Media lists the token owner's media.
func (c *Client) Media(ctx context.Context, token string) (json.RawMessage, error) {
	return c.get(ctx, "/me/media", token, url.Values{"fields": {MediaFields}})
}

// Comments lists the comments on mediaID with one level of replies.
func (c *Client) Comments(ctx context.Context, token, mediaID string) (json.RawMessage, error) {
	return c.get(ctx, "/"+url.PathEscape(mediaID)+"/comments", token, url.Values{"fields": {CommentFields}})
}

// PostComment publishes message. A non-empty commentID posts a reply to that
// comment; otherwise a top-level comment is added to mediaID.
func (c *Client) PostComment(ctx context.Context, token, mediaID, commentID, message string) (json.RawMessage, error) {
	path := "/" + url.PathEscape(mediaID) + "/comments"
	if commentID != "" {
		path = "/" + url.PathEscape(commentID) + "/replies"
	}

	form := url.Values{
		"message":      {message},
		"access_token": {token},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("graph: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req, path)
}

func (c *Client) get(ctx context.Context, path, token string, params url.Values) (json.RawMessage, error) {
	params.Set("access_token", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("graph: building request: %w", err)
	}

	return c.do(req, path)
}

// do executes req and returns the body if the status is 2xx and the body is
// valid JSON. path is logged instead of the URL so tokens never reach logs.
func (c *Client) do(req *http.Request, path string) (json.RawMessage, error) {
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// *url.Error prints the full URL, query string and token included
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = c.baseURL + path
		}
		return nil, fmt.Errorf("graph: %s %s: %w", req.Method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("graph: reading %s response: %w", path, err)
	}

	c.logger.Debug("graph api call",
		slog.String("method", req.Method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("graph: %s returned malformed JSON", path)
	}

	return json.RawMessage(body), nil
}
