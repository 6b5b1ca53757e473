package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"client-vault/internal/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

var googleScopes = []string{"openid", "email", "profile"}

// GoogleProfile is the subset of the userinfo document used to find or
// create an account.
type GoogleProfile struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

type GoogleProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

func NewGoogleProvider(cfg *config.OAuthConfig) *GoogleProvider {
	return NewGoogleProviderWithConfig(&oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Endpoint:     endpoints.Google,
		Scopes:       googleScopes,
	}, googleUserInfoURL)
}

func NewGoogleProviderWithConfig(cfg *oauth2.Config, userInfoURL string) *GoogleProvider {
	return &GoogleProvider{config: cfg, userInfoURL: userInfoURL}
}

func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades an authorization code for the caller's Google profile.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*GoogleProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, userInfoTimeout)
	defer cancel()

	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf(msgFailedExchangeCodeFmt, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf(msgFailedFetchUserInfoFmt, err)
	}

	resp, err := p.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf(msgFailedFetchUserInfoFmt, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(msgUserInfoStatusFmt, resp.StatusCode)
	}

	var profile GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf(msgFailedFetchUserInfoFmt, err)
	}

	if profile.Subject == "" || profile.Email == "" {
		return nil, fmt.Errorf(msgUserInfoIncomplete)
	}
	if !profile.EmailVerified {
		return nil, fmt.Errorf(msgEmailNotVerified)
	}

	return &profile, nil
}
