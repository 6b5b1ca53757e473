// Package guard gates every vault and admin view and request on a valid,
// role-appropriate persisted identity.
package guard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"client-vault/internal/client/api"
	"client-vault/internal/client/credential"
	"client-vault/internal/client/nav"
	"client-vault/internal/domain/identity"
)

var ErrAccessDenied = errors.New("access denied")

// Guard holds no state of its own beyond its collaborators.
type Guard struct {
	store  credential.Store
	nav    nav.Navigator
	logger *slog.Logger
}

func New(store credential.Store, navigator nav.Navigator, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{store: store, nav: navigator, logger: logger}
}

// Require returns the persisted identity for role. A missing, invalid or
// role-mismatched record is cleared and the user is sent to role's login.
func (g *Guard) Require(ctx context.Context, role identity.Role) (*identity.ClientIdentity, error) {
	id, err := g.store.Get(ctx, role)
	if err != nil {
		g.logger.Error("read credential", "role", role, "err", err)
		g.Expel(ctx, role)
		return nil, fmt.Errorf("%w: %w", ErrAccessDenied, err)
	}

	if id == nil {
		g.nav.RedirectToLogin(role)
		return nil, ErrAccessDenied
	}

	if !id.Satisfies(role) {
		g.logger.Warn("credential rejected", "role", role, "user_id", id.ID, "is_admin", id.IsAdmin)
		g.Expel(ctx, role)
		return nil, ErrAccessDenied
	}

	return id, nil
}

// Check forces re-authentication when err is an authorization denial.
// err is returned unchanged.
func (g *Guard) Check(ctx context.Context, role identity.Role, err error) error {
	if errors.Is(err, api.ErrAuthorizationDenied) {
		g.logger.Info("authorization denied, signing out", "role", role)
		g.Expel(ctx, role)
	}
	return err
}

// Expel clears role's record and redirects to its login surface.
func (g *Guard) Expel(ctx context.Context, role identity.Role) {
	if err := g.store.Clear(ctx, role); err != nil {
		g.logger.Error("clear credential", "role", role, "err", err)
	}
	g.nav.RedirectToLogin(role)
}
