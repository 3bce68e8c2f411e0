// Package google implements the authorization-provider collaborator
// for Google accounts on top of golang.org/x/oauth2.
package google

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"

	"github.com/attachehq/attache/internal/authflow"
	"github.com/attachehq/attache/internal/config"
)

// ProviderName is the identifier under which all Google credentials
// are stored.
const ProviderName = "google"

// exchangeTimeout bounds every exchange and refresh call; a slow
// provider surfaces as a provider error, never an open-ended wait.
const exchangeTimeout = 30 * time.Second

// Provider implements authflow.Provider for Google OAuth.
type Provider struct {
	conf *oauth2.Config
}

var _ authflow.Provider = (*Provider)(nil)

// NewProvider builds a Provider from settings. It fails with
// authflow.ErrNotConfigured when client credentials or the redirect
// URI are missing, so the serve path can degrade gracefully.
func NewProvider(settings config.Settings) (*Provider, error) {
	if err := settings.ValidateGoogle(); err != nil {
		return nil, fmt.Errorf("%w: %v", authflow.ErrNotConfigured, err)
	}
	return &Provider{
		conf: &oauth2.Config{
			ClientID:     settings.GoogleClientID,
			ClientSecret: settings.GoogleClientSecret,
			RedirectURL:  settings.GoogleRedirectURI,
			Endpoint:     googleoauth.Endpoint,
			Scopes:       settings.GoogleScopes,
		},
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return ProviderName
}

// Scopes returns the scopes requested during authorization.
func (p *Provider) Scopes() []string {
	return p.conf.Scopes
}

// AuthorizationURL builds the consent URL with the state token as the
// CSRF binder. Offline access is requested so a refresh token is
// issued, and consent is forced so re-authorization always yields one.
func (p *Provider) AuthorizationURL(state string) string {
	return p.conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)
}

// Exchange trades an authorization code for a credential.
func (p *Provider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()
	token, err := p.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}
	return token, nil
}

// Refresh obtains a fresh credential using the stored refresh token.
func (p *Provider) Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()
	refreshed, err := p.conf.TokenSource(ctx, token).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	return refreshed, nil
}

// HTTPClient returns an HTTP client that authenticates requests with
// the given credential. The credential must already be live; clients
// built here do not refresh on their own, so the stored copy can never
// drift from what is persisted.
func (p *Provider) HTTPClient(ctx context.Context, token *oauth2.Token) *http.Client {
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
}
