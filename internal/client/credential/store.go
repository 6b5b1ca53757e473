// Package credential persists one ClientIdentity per role.
package credential

import (
	"context"
	"errors"

	"client-vault/internal/domain/identity"
)

var ErrInvalidIdentity = errors.New("identity has no id or token")

// Store is the single source of truth for signed-in identities. Get returns
// (nil, nil) when the role has no record.
type Store interface {
	Get(ctx context.Context, role identity.Role) (*identity.ClientIdentity, error)
	Set(ctx context.Context, role identity.Role, id identity.ClientIdentity) error
	Clear(ctx context.Context, role identity.Role) error
}
