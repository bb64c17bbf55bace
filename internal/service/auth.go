package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/commentdesk/internal/apperror"
	"github.com/sakif/commentdesk/internal/auth"
	"github.com/sakif/commentdesk/internal/model"
	"github.com/sakif/commentdesk/internal/repository"
)

// OAuthProvider is implemented by *auth.InstagramProvider.
type OAuthProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.InstagramUser, error)
}

// AuthService runs the Instagram login handshake:
//
//	code → access token → profile (id, username) → upsert User
type AuthService struct {
	provider OAuthProvider
	states   *auth.StateSigner // nil disables signed state
	users    repository.UserRepository
	logger   *slog.Logger
}

// NewAuthService wires an AuthService. states may be nil.
func NewAuthService(
	provider OAuthProvider,
	states *auth.StateSigner,
	users repository.UserRepository,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		provider: provider,
		states:   states,
		users:    users,
		logger:   logger,
	}
}

// AuthResult bundles the stored user with the Instagram access token the
// client must send back in the token header.
type AuthResult struct {
	User  *model.User
	Token string
}

// AuthURL builds the consent screen URL, with a signed state when a
// StateSigner is configured.
func (s *AuthService) AuthURL() (string, error) {
	if s.states == nil {
		return s.provider.AuthURL(""), nil
	}

	state, err := s.states.Issue()
	if err != nil {
		return "", fmt.Errorf("service/auth: issuing state: %w", err)
	}
	return s.provider.AuthURL(state), nil
}

// Callback completes the login for an authorization code.
//
// An empty state is accepted even when signing is enabled, so clients that
// never echo the state keep working; a state that is present must verify.
//
// The only mutation is the final upsert, keyed on the Instagram user id:
// first login creates the user, later logins overwrite the access token and
// nothing else. Calling it twice for the same account leaves one record.
func (s *AuthService) Callback(ctx context.Context, code, state string) (*AuthResult, error) {
	if code == "" {
		return nil, apperror.ValidationFailed("code", "code is required")
	}
	if s.states != nil && state != "" {
		if err := s.states.Verify(state); err != nil {
			s.logger.Warn("oauth callback: state rejected", slog.String("error", err.Error()))
			return nil, apperror.ValidationFailed("state", "invalid OAuth state")
		}
	}

	igUser, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	user, err := s.upsert(ctx, igUser)
	if err != nil {
		return nil, fmt.Errorf("service/auth: upserting user (externalID=%s): %w", igUser.ID, err)
	}

	s.logger.Info("user authenticated via Instagram",
		slog.String("userID", user.ID),
		slog.String("externalID", user.ExternalID),
		slog.String("username", user.Username),
	)

	return &AuthResult{User: user, Token: igUser.AccessToken}, nil
}

// upsert creates the user if absent, else refreshes its token. A concurrent
// login that wins the insert race turns our Create into a conflict; we then
// take the update path once.
func (s *AuthService) upsert(ctx context.Context, igUser *auth.InstagramUser) (*model.User, error) {
	user, err := s.users.GetByExternalID(ctx, igUser.ID)
	if err == nil {
		return s.refreshToken(ctx, user, igUser.AccessToken)
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	user = &model.User{
		ExternalID:  igUser.ID,
		Username:    igUser.Username,
		AccessToken: igUser.AccessToken,
	}
	err = s.users.Create(ctx, user)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperror.ErrConflict) {
		return nil, err
	}

	existing, err := s.users.GetByExternalID(ctx, igUser.ID)
	if err != nil {
		return nil, err
	}
	return s.refreshToken(ctx, existing, igUser.AccessToken)
}

func (s *AuthService) refreshToken(ctx context.Context, user *model.User, token string) (*model.User, error) {
	user.AccessToken = token
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
