// Package auth handles the Instagram OAuth handshake and the credentials that
// flow through the API.
//
// The access token Instagram issues is handed back to the client and sent on
// every later request in the "token" header; RequireToken extracts it. The
// OAuth "state" round trip is protected with a short-lived HS256 JWT so the
// server needs no session storage to verify it.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

const (
	stateIssuer   = "commentdesk"
	stateAudience = "instagram-oauth"
	StateLifetime = 10 * time.Minute
)

// StateSigner issues and verifies OAuth state values.
type StateSigner struct {
	secret []byte
}

// NewStateSigner requires a secret of at least 16 characters.
func NewStateSigner(secret string) (*StateSigner, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: state secret must be at least 16 characters")
	}
	return &StateSigner{secret: []byte(secret)}, nil
}

// Issue returns a signed state valid for StateLifetime.
func (s *StateSigner) Issue() (string, error) {
	return s.issueWithDuration(StateLifetime)
}

func (s *StateSigner) issueWithDuration(d time.Duration) (string, error) {
	now := time.Now()

	c := jwt.RegisteredClaims{
		ID:        xid.New().String(),
		Issuer:    stateIssuer,
		Audience:  jwt.ClaimStrings{stateAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(d)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing state: %w", err)
	}
	return signed, nil
}

// Verify checks signature, issuer, audience and expiry.
func (s *StateSigner) Verify(state string) error {
	_, err := jwt.ParseWithClaims(
		state,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(stateIssuer),
		jwt.WithAudience(stateAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return fmt.Errorf("auth: state expired")
		}
		return fmt.Errorf("auth: invalid state: %w", err)
	}
	return nil
}
