package repository

import (
	"github.com/sakif/commentdesk/internal/apperror"
	"github.com/sakif/commentdesk/internal/model"
)

// ValidateNew checks the required fields of a user about to be inserted.
// Both backends call it at the top of Create.
func ValidateNew(user *model.User) error {
	switch {
	case user == nil:
		return apperror.ValidationFailed("user", "user must not be nil")
	case user.ExternalID == "":
		return apperror.ValidationFailed("externalId", "externalId is required")
	case user.Username == "":
		return apperror.ValidationFailed("username", "username is required")
	case user.AccessToken == "":
		return apperror.ValidationFailed("accessToken", "accessToken is required")
	}
	return nil
}
