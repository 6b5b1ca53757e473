package handler

import (
	"context"
	"io"
	"time"

	"client-vault/internal/audit"
	"client-vault/internal/auth"
	"client-vault/internal/domain/asset"
	"client-vault/internal/domain/identity"
	"client-vault/internal/domain/user"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Consumer-side interfaces defined by handlers
// Each interface contains only the methods needed by the specific handler

// AuthHandler interfaces
type UserRepository interface {
	Create(ctx context.Context, input user.CreateUserInput) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByUsername(ctx context.Context, username string) (*user.User, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
	BurnTime(password string)
}

type TokenGenerator interface {
	Generate(u *user.User) (string, error)
}

// OAuthHandler interfaces
type GoogleUserResolver interface {
	FindOrCreateGoogleUser(ctx context.Context, input user.CreateUserInput) (*user.User, error)
}

type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GoogleProfile, error)
}

type StateStore interface {
	Issue(ctx context.Context, role identity.Role, ttl time.Duration) (string, error)
	Consume(ctx context.Context, nonce string) (identity.Role, error)
}

// UserHandler interfaces
type ClientLister interface {
	ListClients(ctx context.Context) ([]*user.User, error)
}

// AssetHandler interfaces
type AssetRepository interface {
	Create(ctx context.Context, input asset.CreateAssetInput) (*asset.Asset, error)
	GetByID(ctx context.Context, id string) (*asset.Asset, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*asset.Asset, error)
	Delete(ctx context.Context, id string) error
}

// Storage interfaces (used by asset and media handlers)
type MediaStore interface {
	Upload(ctx context.Context, objectKey, contentType string, body io.Reader) (string, error)
	DeleteObject(ctx context.Context, objectKey string) error
	KeyForURL(rawURL string) (string, bool)
}

// AuditRecorder receives security-relevant events. Handlers never wait on it.
type AuditRecorder interface {
	Record(c echo.Context, action audit.Action, resourceType audit.ResourceType, resourceID string, status audit.Status, metadata map[string]any)
}

type discardAudit struct{}

func (discardAudit) Record(echo.Context, audit.Action, audit.ResourceType, string, audit.Status, map[string]any) {
}

func auditOrDiscard(r AuditRecorder) AuditRecorder {
	if r == nil {
		return discardAudit{}
	}
	return r
}
