package repository

import (
	"context"

	"client-vault/internal/domain/user"

	"github.com/google/uuid"
)

// Repository interfaces used by auth and middleware packages
// These are provider-side interfaces that concrete implementations must satisfy

type UserGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}
