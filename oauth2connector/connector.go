// Package oauth2connector implements the generic OAuth2 "user-info"
// bootstrap described in spec §2(f): build an authorization URL for a
// relying party, then exchange an authorization code for an access token
// and the provider's user-info response. It is a thin client over
// [storage.HTTPClient] — no provider SDK, no golang.org/x/oauth2 — since
// neither the teacher nor any other example repo in the pack depends on
// one.
package oauth2connector

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// ErrMissingAuthorizationCode is returned by Authenticate when code is empty.
var ErrMissingAuthorizationCode = errors.New("oauth2connector: authorization code is missing")

// ErrTokenExchangeFailed wraps a non-2xx or malformed response from the
// provider's token endpoint.
var ErrTokenExchangeFailed = errors.New("oauth2connector: token exchange failed")

// Endpoints names the three URLs a provider needs: where to send the
// user to authorize, where to exchange the code for a token, and where
// to fetch the authenticated user's profile.
type Endpoints struct {
	AuthURL     string
	TokenURL    string
	UserInfoURL string
}

// Config carries the relying-party credentials, mirroring
// authcore.OAuth2Config so callers can pass that struct's fields directly.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
}

// HTTPClient is the outbound collaborator Authenticate uses to reach the
// provider's token and user-info endpoints; package storage's
// DefaultHTTPClient and RedisStore-adjacent test doubles both satisfy it.
type HTTPClient interface {
	Get(ctx context.Context, url string, headers map[string]string, out any) error
	Post(ctx context.Context, url string, headers map[string]string, body, out any) error
}

// UserInfo is the provider-agnostic subset of a user-info response this
// package cares about; AdditionalClaims carries whatever else the
// provider returned.
type UserInfo struct {
	Subject          string
	Email            string
	EmailVerified    bool
	Name             string
	AdditionalClaims map[string]any
}

// Connector generates authorization URLs and performs the code→token→
// user-info exchange for one provider.
type Connector struct {
	endpoints Endpoints
	config    Config
	client    HTTPClient
}

// New builds a Connector for endpoints and config, reaching the provider
// through client.
func New(endpoints Endpoints, config Config, client HTTPClient) *Connector {
	return &Connector{endpoints: endpoints, config: config, client: client}
}

// GenerateAuthURL builds the authorization-request URL the caller
// redirects the end user to, embedding state for CSRF correlation.
func (c *Connector) GenerateAuthURL(state string) string {
	values := url.Values{}
	values.Set("client_id", c.config.ClientID)
	values.Set("redirect_uri", c.config.RedirectURI)
	values.Set("response_type", "code")
	values.Set("state", state)
	if len(c.config.Scopes) > 0 {
		values.Set("scope", strings.Join(c.config.Scopes, " "))
	}

	separator := "?"
	if strings.Contains(c.endpoints.AuthURL, "?") {
		separator = "&"
	}
	return c.endpoints.AuthURL + separator + values.Encode()
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope"`
}

// Authenticate exchanges an authorization code for an access token and
// then fetches the provider's user-info, returning both so the caller can
// mint a local session from UserInfo.Subject (typically via
// Guard.GenerateSession).
func (c *Connector) Authenticate(ctx context.Context, code string) (UserInfo, string, error) {
	if code == "" {
		return UserInfo{}, "", ErrMissingAuthorizationCode
	}

	var token tokenResponse
	body := map[string]string{
		"client_id":     c.config.ClientID,
		"client_secret": c.config.ClientSecret,
		"redirect_uri":  c.config.RedirectURI,
		"code":          code,
		"grant_type":    "authorization_code",
	}
	if err := c.client.Post(ctx, c.endpoints.TokenURL, nil, body, &token); err != nil {
		return UserInfo{}, "", errors.Join(ErrTokenExchangeFailed, err)
	}
	if token.AccessToken == "" {
		return UserInfo{}, "", ErrTokenExchangeFailed
	}

	var raw map[string]any
	headers := map[string]string{"Authorization": "Bearer " + token.AccessToken}
	if err := c.client.Get(ctx, c.endpoints.UserInfoURL, headers, &raw); err != nil {
		return UserInfo{}, token.AccessToken, err
	}

	return userInfoFromClaims(raw), token.AccessToken, nil
}

func userInfoFromClaims(raw map[string]any) UserInfo {
	info := UserInfo{AdditionalClaims: raw}

	if v, ok := raw["sub"].(string); ok {
		info.Subject = v
	}
	if v, ok := raw["email"].(string); ok {
		info.Email = v
	}
	if v, ok := raw["email_verified"].(bool); ok {
		info.EmailVerified = v
	}
	if v, ok := raw["name"].(string); ok {
		info.Name = v
	}

	return info
}

// GoogleEndpoints is the well-known endpoint triple for
// GOOGLE_OAUTH2_CLIENT_ID/SECRET/REDIRECT_URI (spec §6), provided as a
// convenience since Google is the only provider named in configuration.
var GoogleEndpoints = Endpoints{
	AuthURL:     "https://accounts.google.com/o/oauth2/v2/auth",
	TokenURL:    "https://oauth2.googleapis.com/token",
	UserInfoURL: "https://openidconnect.googleapis.com/v1/userinfo",
}
