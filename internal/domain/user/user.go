package user

import (
	"time"

	"client-vault/internal/domain/identity"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	CompanyName  string
	GoogleID     string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CreateUserInput struct {
	Username     string
	Email        string
	PasswordHash string
	CompanyName  string
	GoogleID     string
}

// Identity projects the stored account onto the public identity shape.
func (u *User) Identity() identity.ClientIdentity {
	return identity.ClientIdentity{
		ID:          u.ID.String(),
		Username:    u.Username,
		Email:       u.Email,
		CompanyName: u.CompanyName,
		IsAdmin:     u.IsAdmin,
	}
}
