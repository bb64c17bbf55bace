package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"

	"github.com/sakif/commentdesk/internal/graph"
)

// Instagram OAuth endpoints.
const (
	InstagramAuthURL  = "https://api.instagram.com/oauth/authorize"
	InstagramTokenURL = "https://api.instagram.com/oauth/access_token"
)

// InstagramScope is sent as a single comma-separated value, the form the
// Instagram consent screen expects.
const InstagramScope = "user_profile,user_media"

// InstagramUser is what a successful code exchange yields: the long-lived
// identity plus the freshly issued access token.
type InstagramUser struct {
	ID          string
	Username    string
	AccessToken string
}

// ProviderConfig configures an InstagramProvider. AuthURL and TokenURL
// default to the production endpoints.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
	HTTPClient   *http.Client
}

// InstagramProvider wraps golang.org/x/oauth2 for Instagram's Authorization
// Code flow:
//
//  1. the client is sent to AuthURL with our app id and scopes;
//  2. Instagram redirects back to the front end with a single-use code;
//  3. the front end posts the code to us and Exchange trades it for a token
//     (server-to-server, using the app secret);
//  4. the token is used to read the minimal profile from the Graph API.
type InstagramProvider struct {
	config     *oauth2.Config
	httpClient *http.Client
	graph      *graph.Client
}

func NewInstagramProvider(cfg ProviderConfig, graphClient *graph.Client) *InstagramProvider {
	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = InstagramAuthURL
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = InstagramTokenURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: graph.DefaultTimeout}
	}

	return &InstagramProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{InstagramScope},
			Endpoint: oauth2.Endpoint{
				AuthURL:  authURL,
				TokenURL: tokenURL,
				// Instagram only reads client credentials from the form body.
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: httpClient,
		graph:      graphClient,
	}
}

// AuthURL returns the consent screen URL. An empty state is omitted.
func (p *InstagramProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// Exchange trades code for an access token and reads the account's id and
// username. The code is single-use, so there is no retry.
//
// The token response carries user_id as a JSON number, which loses
// precision for Instagram's 17-digit ids once decoded as float64. The id
// string from the Graph profile is therefore preferred; user_id is only a
// fallback when the profile omits it.
func (p *InstagramProvider) Exchange(ctx context.Context, code string) (*InstagramUser, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	tok, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("auth: token response has no access_token")
	}

	raw, err := p.graph.Me(ctx, tok.AccessToken, graph.LoginFields)
	if err != nil {
		return nil, fmt.Errorf("auth: fetching Instagram profile: %w", err)
	}

	var profile struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("auth: decoding Instagram profile: %w", err)
	}

	id := profile.ID
	if id == "" {
		id = extraString(tok.Extra("user_id"))
	}
	if id == "" {
		return nil, fmt.Errorf("auth: Instagram returned no user id")
	}
	if profile.Username == "" {
		return nil, fmt.Errorf("auth: Instagram returned no username for user %s", id)
	}

	return &InstagramUser{
		ID:          id,
		Username:    profile.Username,
		AccessToken: tok.AccessToken,
	}, nil
}

// extraString renders a token response field as a string. Floats beyond
// 2^53 are not exact and are rejected.
func extraString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		if v != math.Trunc(v) || math.Abs(v) > 1<<53 {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
