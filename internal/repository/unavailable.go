package repository

import (
	"context"
	"fmt"

	"github.com/sakif/commentdesk/internal/model"
)

// Unavailable returns a UserRepository whose every call fails with err.
//
// The server uses it when the store cannot be opened at startup: the process
// keeps serving (OAuth URL, media proxy) and store-backed routes answer 500.
func Unavailable(err error) UserRepository {
	return unavailable{err: err}
}

type unavailable struct {
	err error
}

func (u unavailable) Create(context.Context, *model.User) error {
	return fmt.Errorf("repository: store unavailable: %w", u.err)
}

func (u unavailable) GetByExternalID(context.Context, string) (*model.User, error) {
	return nil, fmt.Errorf("repository: store unavailable: %w", u.err)
}

func (u unavailable) Update(context.Context, *model.User) error {
	return fmt.Errorf("repository: store unavailable: %w", u.err)
}

func (u unavailable) Close() error { return nil }
