package handler

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"client-vault/internal/domain/identity"
	"client-vault/internal/domain/user"
	"client-vault/pkg/logger"

	"github.com/labstack/echo/v4"
)

var usernameUnsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// OAuthHandler runs the Google sign-in round-trip and hands the resulting
// credential to the frontend through the landing URL.
type OAuthHandler struct {
	provider    OAuthProvider
	states      StateStore
	users       GoogleUserResolver
	tokens      TokenGenerator
	frontendURL string
	stateTTL    time.Duration
}

func NewOAuthHandler(
	provider OAuthProvider,
	states StateStore,
	users GoogleUserResolver,
	tokens TokenGenerator,
	frontendURL string,
	stateTTL time.Duration,
) *OAuthHandler {
	return &OAuthHandler{
		provider:    provider,
		states:      states,
		users:       users,
		tokens:      tokens,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		stateTTL:    stateTTL,
	}
}

// Start redirects to the provider. The state query parameter selects the
// role whose landing page receives the credential.
func (h *OAuthHandler) Start(c echo.Context) error {
	if h.provider == nil {
		return respondError(c, http.StatusNotFound, msgOAuthDisabled)
	}

	role := identity.Role(c.QueryParam(queryState))
	if role == "" {
		role = identity.RoleClient
	}
	if !role.Valid() {
		return respondError(c, http.StatusBadRequest, msgInvalidRole)
	}

	nonce, err := h.states.Issue(c.Request().Context(), role, h.stateTTL)
	if err != nil {
		c.Logger().Errorf("Failed to issue oauth state: %v", err)
		return respondError(c, http.StatusInternalServerError, msgOAuthStartFail)
	}

	return c.Redirect(http.StatusFound, h.provider.AuthCodeURL(nonce))
}

func (h *OAuthHandler) Callback(c echo.Context) error {
	if h.provider == nil {
		return respondError(c, http.StatusNotFound, msgOAuthDisabled)
	}

	ctx := c.Request().Context()
	role, err := h.states.Consume(ctx, c.QueryParam(queryState))
	if err != nil {
		c.Logger().Warnf("Rejected oauth callback %s: %v", logger.SanitizeURL(c.Request().URL.String()), err)
		return h.redirectLoginError(c, identity.RoleClient, oauthErrInvalidState)
	}

	if c.QueryParam(queryError) != "" {
		return h.redirectLoginError(c, role, oauthErrDenied)
	}

	profile, err := h.provider.Exchange(ctx, c.QueryParam(queryCode))
	if err != nil {
		c.Logger().Warnf("Google exchange failed: %v", err)
		return h.redirectLoginError(c, role, oauthErrExchange)
	}

	u, err := h.users.FindOrCreateGoogleUser(ctx, user.CreateUserInput{
		Username: googleUsername(profile.Email, profile.Subject),
		Email:    strings.ToLower(profile.Email),
		GoogleID: profile.Subject,
	})
	if err != nil {
		c.Logger().Errorf("Failed to resolve google user: %v", err)
		return h.redirectLoginError(c, role, oauthErrAccount)
	}

	if role == identity.RoleAdmin && !u.IsAdmin {
		return h.redirectLoginError(c, role, oauthErrForbidden)
	}

	token, err := h.tokens.Generate(u)
	if err != nil {
		return h.redirectLoginError(c, role, oauthErrAccount)
	}

	q := url.Values{}
	q.Set(queryLogin, loginSuccess)
	q.Set(queryToken, token)
	return c.Redirect(http.StatusFound, h.frontendURL+landingPath(role)+"?"+q.Encode())
}

func (h *OAuthHandler) redirectLoginError(c echo.Context, role identity.Role, code string) error {
	q := url.Values{}
	q.Set(queryError, code)
	return c.Redirect(http.StatusFound, h.frontendURL+loginPath(role)+"?"+q.Encode())
}

func landingPath(role identity.Role) string {
	if role == identity.RoleAdmin {
		return pathAdminVault
	}
	return pathClientVault
}

func loginPath(role identity.Role) string {
	if role == identity.RoleAdmin {
		return pathAdminLogin
	}
	return pathClientLogin
}

// googleUsername derives a stable username from the email local part and the
// Google subject so that two accounts sharing a local part do not collide.
func googleUsername(email, subject string) string {
	local := email
	if at := strings.IndexByte(email, '@'); at >= 0 {
		local = email[:at]
	}
	local = strings.Trim(usernameUnsafeChars.ReplaceAllString(local, "-"), "-")
	if local == "" {
		local = "user"
	}
	if len(local) > googleUsernameLocalMaxLen {
		local = local[:googleUsernameLocalMaxLen]
	}

	suffix := subject
	if len(suffix) > googleUsernameSuffixLen {
		suffix = suffix[len(suffix)-googleUsernameSuffixLen:]
	}
	return strings.ToLower(local + "-" + suffix)
}
