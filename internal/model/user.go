// Package model defines the data structures used throughout the application.
package model

import "time"

// User is the only persisted entity: one record per Instagram account.
//
// ExternalID is Instagram's user id and the key every lookup uses. ID is our
// own identifier (an xid in SQLite, an ObjectID hex string in MongoDB) and is
// only ever echoed back to clients.
//
// AccessToken is overwritten on every successful login. It is never written
// to API responses.
type User struct {
	ID             string    `json:"id"                       db:"id"`
	ExternalID     string    `json:"externalId"               db:"external_id"`
	Username       string    `json:"username"                 db:"username"`
	AccessToken    string    `json:"-"                        db:"access_token"`
	ProfilePicture string    `json:"profilePicture,omitempty" db:"profile_picture"`
	FullName       string    `json:"fullName,omitempty"       db:"full_name"`
	Bio            string    `json:"bio,omitempty"            db:"bio"`
	CreatedAt      time.Time `json:"createdAt"                db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt"                db:"updated_at"`
}
