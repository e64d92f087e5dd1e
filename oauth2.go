package authcore

import "github.com/zanix-dev/auth-core/oauth2connector"

// OAuth2Connector builds an [*oauth2connector.Connector] for endpoints
// using the Guard's configured client credentials and HTTP collaborator.
// Google is the only provider spec §6 names configuration for, so callers
// that need another provider pass its Endpoints explicitly.
func (g *Guard) OAuth2Connector(endpoints oauth2connector.Endpoints, scopes ...string) *oauth2connector.Connector {
	return oauth2connector.New(endpoints, oauth2connector.Config{
		ClientID:     g.config.OAuth2.ClientID,
		ClientSecret: g.config.OAuth2.ClientSecret,
		RedirectURI:  g.config.OAuth2.RedirectURI,
		Scopes:       scopes,
	}, g.httpClient)
}

// GoogleOAuth2Connector is a convenience wrapper around OAuth2Connector
// using oauth2connector.GoogleEndpoints.
func (g *Guard) GoogleOAuth2Connector(scopes ...string) *oauth2connector.Connector {
	return g.OAuth2Connector(oauth2connector.GoogleEndpoints, scopes...)
}
