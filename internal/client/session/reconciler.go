// Package session resolves the signed-in identity for a page load and owns
// the password login flows. It is the only writer of credential records
// besides logout.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"client-vault/internal/client/api"
	"client-vault/internal/client/credential"
	"client-vault/internal/client/nav"
	"client-vault/internal/domain/identity"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrAuthExchange is a rejected login, registration or token exchange.
	ErrAuthExchange = errors.New("authentication failed")
	ErrNotAdmin     = errors.New("account is not an administrator")
)

type IdentityAPI interface {
	CurrentUser(ctx context.Context, token string) (*identity.ClientIdentity, error)
	Login(ctx context.Context, req api.LoginRequest) (*identity.ClientIdentity, error)
	Register(ctx context.Context, req api.RegisterRequest) (*identity.ClientIdentity, error)
}

type Reconciler struct {
	role   identity.Role
	api    IdentityAPI
	store  credential.Store
	nav    nav.Navigator
	logger *slog.Logger
}

func NewReconciler(role identity.Role, identityAPI IdentityAPI, store credential.Store, navigator nav.Navigator, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		role:   role,
		api:    identityAPI,
		store:  store,
		nav:    navigator,
		logger: logger.With("role", role),
	}
}

// Reconcile returns the identity for this page load. On ErrUnauthenticated
// the navigator has already been sent to the login surface.
func (r *Reconciler) Reconcile(ctx context.Context, page *url.URL) (*identity.ClientIdentity, error) {
	persisted, err := r.store.Get(ctx, r.role)
	if err != nil {
		r.logger.Error("read credential", "err", err)
		persisted = nil
	}

	switch src := DetectSource(page, persisted).(type) {
	case SourceURLToken:
		return r.exchange(ctx, page, src.Token)
	case SourcePersisted:
		return &src.Identity, nil
	default:
		r.nav.RedirectToLogin(r.role)
		return nil, ErrUnauthenticated
	}
}

func (r *Reconciler) exchange(ctx context.Context, page *url.URL, token string) (*identity.ClientIdentity, error) {
	current, err := r.api.CurrentUser(ctx, token)
	if err == nil && r.role == identity.RoleAdmin && !current.IsAdmin {
		err = ErrNotAdmin
	}

	var id identity.ClientIdentity
	if err == nil {
		id = current.WithToken(token)
		err = r.store.Set(ctx, r.role, id)
	}

	if err != nil {
		r.logger.Warn("token exchange failed", "err", err)
		if clearErr := r.store.Clear(ctx, r.role); clearErr != nil {
			r.logger.Error("clear credential", "err", clearErr)
		}
		r.nav.RedirectToLogin(r.role)
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	r.nav.ReplaceURL(nav.StripCredentials(page))
	r.logger.Info("signed in from redirect", "user_id", id.ID)
	return &id, nil
}

// Login accepts a username or an email address as login.
func (r *Reconciler) Login(ctx context.Context, login, password string) (*identity.ClientIdentity, error) {
	req := api.LoginRequest{Password: password}
	if strings.Contains(login, "@") {
		req.Email = login
	} else {
		req.Username = login
	}

	id, err := r.api.Login(ctx, req)
	return r.accept(ctx, id, err)
}

func (r *Reconciler) Register(ctx context.Context, req api.RegisterRequest) (*identity.ClientIdentity, error) {
	id, err := r.api.Register(ctx, req)
	return r.accept(ctx, id, err)
}

func (r *Reconciler) accept(ctx context.Context, id *identity.ClientIdentity, err error) (*identity.ClientIdentity, error) {
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthExchange, err)
	}
	if r.role == identity.RoleAdmin && !id.IsAdmin {
		return nil, fmt.Errorf("%w: %w", ErrAuthExchange, ErrNotAdmin)
	}
	if err := r.store.Set(ctx, r.role, *id); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthExchange, err)
	}

	r.logger.Info("signed in", "user_id", id.ID)
	return id, nil
}
