package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/commentdesk/internal/apperror"
	"github.com/sakif/commentdesk/internal/graph"
	"github.com/sakif/commentdesk/internal/model"
	"github.com/sakif/commentdesk/internal/repository"
)

// ProfileService merges the Instagram profile with the locally stored
// overrides (picture, full name, bio) and edits those overrides.
//
// The caller is identified by asking the Graph API who owns the token; the
// local record is then looked up by that external id.
type ProfileService struct {
	graph  GraphAPI
	users  repository.UserRepository
	logger *slog.Logger
}

func NewProfileService(graph GraphAPI, users repository.UserRepository, logger *slog.Logger) *ProfileService {
	return &ProfileService{graph: graph, users: users, logger: logger}
}

// Profile is the Instagram profile object with the local overrides merged
// in. Upstream fields are kept as raw JSON so they pass through unchanged.
type Profile map[string]json.RawMessage

// ProfileUpdate carries the editable fields. nil means "not sent".
type ProfileUpdate struct {
	FullName *string `json:"fullName"`
	Bio      *string `json:"bio"`
}

// Get returns the caller's Instagram profile merged with local overrides.
// Overrides that are empty locally are left out of the result.
func (s *ProfileService) Get(ctx context.Context, token string) (Profile, error) {
	if token == "" {
		return nil, apperror.Unauthorized("No token provided")
	}

	raw, err := s.graph.Me(ctx, token, graph.ProfileFields)
	if err != nil {
		return nil, fmt.Errorf("service/profile: fetching profile: %w", err)
	}

	var profile Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("service/profile: decoding profile: %w", err)
	}
	externalID, err := profile.id()
	if err != nil {
		return nil, err
	}

	user, err := s.lookup(ctx, externalID)
	if err != nil {
		return nil, err
	}

	profile.setString("profilePicture", user.ProfilePicture)
	profile.setString("fullName", user.FullName)
	profile.setString("bio", user.Bio)
	return profile, nil
}

// Update applies the fields of upd that are present and non-empty, then
// persists the user. An empty string is treated like an omitted field, so a
// value can be replaced but not cleared through this call.
func (s *ProfileService) Update(ctx context.Context, token string, upd ProfileUpdate) (*model.User, error) {
	if token == "" {
		return nil, apperror.Unauthorized("No token provided")
	}

	raw, err := s.graph.Me(ctx, token, graph.IdentityFields)
	if err != nil {
		return nil, fmt.Errorf("service/profile: identifying caller: %w", err)
	}

	var identity Profile
	if err := json.Unmarshal(raw, &identity); err != nil {
		return nil, fmt.Errorf("service/profile: decoding identity: %w", err)
	}
	externalID, err := identity.id()
	if err != nil {
		return nil, err
	}

	user, err := s.lookup(ctx, externalID)
	if err != nil {
		return nil, err
	}

	if upd.FullName != nil && *upd.FullName != "" {
		user.FullName = *upd.FullName
	}
	if upd.Bio != nil && *upd.Bio != "" {
		user.Bio = *upd.Bio
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("service/profile: saving user %s: %w", externalID, err)
	}

	s.logger.Info("profile updated", slog.String("externalID", externalID))
	return user, nil
}

// lookup loads the caller's record. A miss is reported as "User not found",
// the body the front end shows as is.
func (s *ProfileService) lookup(ctx context.Context, externalID string) (*model.User, error) {
	user, err := s.users.GetByExternalID(ctx, externalID)
	if errors.Is(err, apperror.ErrNotFound) {
		s.logger.Debug("profile lookup miss", slog.String("externalID", externalID))
		return nil, &apperror.AppError{Err: apperror.ErrNotFound, Message: "User not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("service/profile: %w", err)
	}
	return user, nil
}

// id extracts the "id" field, which the Graph API sends as a string.
func (p Profile) id() (string, error) {
	var id string
	if raw, ok := p["id"]; ok {
		if err := json.Unmarshal(raw, &id); err != nil {
			return "", fmt.Errorf("service/profile: profile id is not a string: %w", err)
		}
	}
	if id == "" {
		return "", fmt.Errorf("service/profile: profile has no id")
	}
	return id, nil
}

func (p Profile) setString(key, value string) {
	if value == "" {
		return
	}
	b, _ := json.Marshal(value)
	p[key] = b
}
