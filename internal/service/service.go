// Package service contains the business logic between the HTTP handlers and
// the outside world (the Instagram Graph API and the user store).
//
//	Handler (HTTP) → Service → GraphAPI / repository.UserRepository
//
// Services know nothing about HTTP. They take the caller's access token as a
// plain argument and return errors from the apperror taxonomy, which the
// handlers map to status codes. Services never call each other.
package service

import (
	"context"
	"encoding/json"
)

// GraphAPI is the subset of the Instagram Graph API the services use.
// *graph.Client implements it.
type GraphAPI interface {
	Me(ctx context.Context, token, fields string) (json.RawMessage, error)
	Media(ctx context.Context, token string) (json.RawMessage, error)
	Comments(ctx context.Context, token, mediaID string) (json.RawMessage, error)
	PostComment(ctx context.Context, token, mediaID, commentID, message string) (json.RawMessage, error)
}
