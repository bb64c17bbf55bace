package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sakif/commentdesk/internal/apperror"
	"github.com/sakif/commentdesk/internal/model"
	"github.com/sakif/commentdesk/internal/repository"
)

var _ repository.UserRepository = (*Store)(nil)

// userDocument is the stored shape of a model.User.
type userDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	ExternalID     string             `bson:"externalId"`
	Username       string             `bson:"username"`
	AccessToken    string             `bson:"accessToken"`
	ProfilePicture string             `bson:"profilePicture,omitempty"`
	FullName       string             `bson:"fullName,omitempty"`
	Bio            string             `bson:"bio,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
}

func toDocument(u *model.User) userDocument {
	return userDocument{
		ExternalID:     u.ExternalID,
		Username:       u.Username,
		AccessToken:    u.AccessToken,
		ProfilePicture: u.ProfilePicture,
		FullName:       u.FullName,
		Bio:            u.Bio,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func (d userDocument) toModel() *model.User {
	return &model.User{
		ID:             d.ID.Hex(),
		ExternalID:     d.ExternalID,
		Username:       d.Username,
		AccessToken:    d.AccessToken,
		ProfilePicture: d.ProfilePicture,
		FullName:       d.FullName,
		Bio:            d.Bio,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// Create inserts a new user document. A duplicate externalId is reported as
// apperror.ErrConflict whether it is caught by the pre-check or by the
// unique index.
func (s *Store) Create(ctx context.Context, user *model.User) error {
	if err := repository.ValidateNew(user); err != nil {
		return err
	}

	n, err := s.users.CountDocuments(ctx, bson.M{"externalId": user.ExternalID})
	if err != nil {
		return fmt.Errorf("mongo: checking externalId %s: %w", user.ExternalID, err)
	}
	if n > 0 {
		return apperror.Conflict("user", "externalId", user.ExternalID)
	}

	// BSON dates have millisecond precision.
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := toDocument(user)
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.Conflict("user", "externalId", user.ExternalID)
		}
		return fmt.Errorf("mongo: inserting user (externalID=%s): %w", user.ExternalID, err)
	}

	user.ID = doc.ID.Hex()
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (s *Store) GetByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	var doc userDocument
	err := s.users.FindOne(ctx, bson.M{"externalId": externalID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("user", "externalId", externalID)
		}
		return nil, fmt.Errorf("mongo: getting user %s: %w", externalID, err)
	}
	return doc.toModel(), nil
}

func (s *Store) Update(ctx context.Context, user *model.User) error {
	updatedAt := time.Now().UTC().Truncate(time.Millisecond)

	res, err := s.users.UpdateOne(ctx,
		bson.M{"externalId": user.ExternalID},
		bson.M{"$set": bson.M{
			"username":       user.Username,
			"accessToken":    user.AccessToken,
			"profilePicture": user.ProfilePicture,
			"fullName":       user.FullName,
			"bio":            user.Bio,
			"updatedAt":      updatedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("mongo: updating user %s: %w", user.ExternalID, err)
	}
	if res.MatchedCount == 0 {
		return apperror.NotFound("user", "externalId", user.ExternalID)
	}

	user.UpdatedAt = updatedAt
	return nil
}
