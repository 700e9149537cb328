package identity

import (
	"context"
	"errors"
	"fmt"

	"carebook/internal/config"

	"golang.org/x/oauth2"
)

// OAuthFlow runs the authorization-code leg of federated login.
type OAuthFlow struct {
	config *oauth2.Config
}

func NewOAuthFlow(cfg config.FederatedConfig) *OAuthFlow {
	return &OAuthFlow{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
	}
}

// AuthCodeURL returns the consent page URL carrying state.
func (f *OAuthFlow) AuthCodeURL(state string) string {
	return f.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// RedirectURL is the callback registered with the provider.
func (f *OAuthFlow) RedirectURL() string {
	return f.config.RedirectURL
}

// Exchange trades the authorization code for the provider access token.
func (f *OAuthFlow) Exchange(ctx context.Context, code string) (string, error) {
	token, err := f.config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%w: code exchange: %w", ErrProvider, err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("%w: %w", ErrProvider, errors.New("empty access token"))
	}
	return token.AccessToken, nil
}
