package repository

import (
	"context"
	"fmt"

	"github.com/sakif/commentdesk/internal/model"
)

// TokenSealer encrypts and decrypts access tokens. auth.Sealer implements it.
type TokenSealer interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
	IsSealed(v string) bool
}

// Sealed wraps a UserRepository so access tokens are encrypted before they
// reach the backend and decrypted on the way out. Callers always see the
// plaintext token; the caller's struct is never mutated with ciphertext.
//
// Records written before encryption was turned on hold a plain token. Those
// are returned unchanged and get sealed on their next Update, so enabling
// the key on an existing store does not lock anyone out.
func Sealed(inner UserRepository, sealer TokenSealer) UserRepository {
	return &sealedRepo{inner: inner, sealer: sealer}
}

type sealedRepo struct {
	inner  UserRepository
	sealer TokenSealer
}

func (s *sealedRepo) Create(ctx context.Context, user *model.User) error {
	if err := ValidateNew(user); err != nil {
		return err
	}
	stored, err := s.seal(user)
	if err != nil {
		return err
	}
	if err := s.inner.Create(ctx, stored); err != nil {
		return err
	}
	user.ID = stored.ID
	user.CreatedAt = stored.CreatedAt
	user.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *sealedRepo) GetByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	user, err := s.inner.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if !s.sealer.IsSealed(user.AccessToken) {
		return user, nil
	}
	token, err := s.sealer.Open(user.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("repository: opening access token for %s: %w", externalID, err)
	}
	user.AccessToken = token
	return user, nil
}

func (s *sealedRepo) Update(ctx context.Context, user *model.User) error {
	stored, err := s.seal(user)
	if err != nil {
		return err
	}
	if err := s.inner.Update(ctx, stored); err != nil {
		return err
	}
	user.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *sealedRepo) Close() error {
	return s.inner.Close()
}

// seal returns a copy of user carrying the sealed token.
func (s *sealedRepo) seal(user *model.User) (*model.User, error) {
	token, err := s.sealer.Seal(user.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("repository: sealing access token for %s: %w", user.ExternalID, err)
	}
	stored := *user
	stored.AccessToken = token
	return &stored, nil
}
