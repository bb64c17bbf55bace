package graph

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(srv.URL, srv.Client(), logger)
}

func TestMe_SendsFieldsAndToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/me", r.URL.Path)
		assert.Equal(t, "id,username", r.URL.Query().Get("fields"))
		assert.Equal(t, "T1", r.URL.Query().Get("access_token"))
		w.Write([]byte(`{"id":"42","username":"alice"}`))
	})

	body, err := c.Me(context.Background(), "T1", LoginFields)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"42","username":"alice"}`, string(body))
}

func TestMedia(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me/media", r.URL.Path)
		assert.Equal(t, MediaFields, r.URL.Query().Get("fields"))
		w.Write([]byte(`{"data":[{"id":"1","caption":"sunset"}]}`))
	})

	body, err := c.Media(context.Background(), "T1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[{"id":"1","caption":"sunset"}]}`, string(body))
}

func TestComments(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/99/comments", r.URL.Path)
		assert.Equal(t, CommentFields, r.URL.Query().Get("fields"))
		w.Write([]byte(`{"data":[]}`))
	})

	_, err := c.Comments(context.Background(), "T1", "99")
	require.NoError(t, err)
}

func TestPostComment_Routing(t *testing.T) {
	tests := []struct {
		name      string
		mediaID   string
		commentID string
		wantPath  string
	}{
		{"top-level comment", "99", "", "/99/comments"},
		{"reply goes to replies endpoint", "99", "5", "/5/replies"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath, gotMessage, gotToken string
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.NoError(t, r.ParseForm())
				gotPath = r.URL.Path
				gotMessage = r.PostForm.Get("message")
				gotToken = r.PostForm.Get("access_token")
				w.Write([]byte(`{"id":"new-comment"}`))
			})

			body, err := c.PostComment(context.Background(), "T1", tt.mediaID, tt.commentID, "hi")
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, gotPath)
			assert.Equal(t, "hi", gotMessage)
			assert.Equal(t, "T1", gotToken)
			assert.JSONEq(t, `{"id":"new-comment"}`, string(body))
		})
	}
}

func TestDo_NonSuccessStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Invalid OAuth access token."}}`))
	})

	_, err := c.Media(context.Background(), "bad")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Body, "Invalid OAuth access token")
}

func TestDo_MalformedJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>oops</html>`))
	})

	_, err := c.Media(context.Background(), "T1")
	assert.Error(t, err)
}

func TestDo_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := NewClient(srv.URL, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := c.Media(context.Background(), "IGQVJ-secret-token")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "IGQVJ-secret-token")
	assert.NotContains(t, err.Error(), "access_token")
	assert.Contains(t, err.Error(), srv.URL+"/me/media")

	var urlErr *url.Error
	assert.True(t, errors.As(err, &urlErr), "network errors stay inspectable")
}

func TestDo_TimeoutHidesToken(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(block) })

	c := NewClient(srv.URL, &http.Client{Timeout: 50 * time.Millisecond}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := c.Me(context.Background(), "IGQVJ-secret-token", ProfileFields)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "IGQVJ-secret-token")
}
