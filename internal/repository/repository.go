package repository

import (
	"context"

	"client-vault/internal/domain/asset"
	"client-vault/internal/domain/user"

	"github.com/google/uuid"
)

// UserRepository defines user data access operations
type UserRepository interface {
	Create(ctx context.Context, input user.CreateUserInput) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByUsername(ctx context.Context, username string) (*user.User, error)
	ListClients(ctx context.Context) ([]*user.User, error)
	FindOrCreateGoogleUser(ctx context.Context, input user.CreateUserInput) (*user.User, error)
}

// AssetRepository defines asset data access operations
type AssetRepository interface {
	Create(ctx context.Context, input asset.CreateAssetInput) (*asset.Asset, error)
	GetByID(ctx context.Context, id string) (*asset.Asset, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*asset.Asset, error)
	Delete(ctx context.Context, id string) error
}
