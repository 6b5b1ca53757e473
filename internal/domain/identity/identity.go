package identity

// Role selects which credential record and login surface apply.
type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleClient || r == RoleAdmin
}

// ClientIdentity is the canonical signed-in account as seen by the client.
// Token is attached after login or exchange; the current-user payload never
// carries it.
type ClientIdentity struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	CompanyName string `json:"companyName,omitempty"`
	IsAdmin     bool   `json:"isAdmin"`
	Token       string `json:"token,omitempty"`
}

// Valid reports whether the identity carries a usable credential.
func (i *ClientIdentity) Valid() bool {
	return i != nil && i.ID != "" && i.Token != ""
}

// Satisfies reports whether the identity may act in role.
func (i *ClientIdentity) Satisfies(role Role) bool {
	if !i.Valid() {
		return false
	}
	if role == RoleAdmin {
		return i.IsAdmin
	}
	return true
}

// WithToken returns a copy carrying token.
func (i ClientIdentity) WithToken(token string) ClientIdentity {
	i.Token = token
	return i
}
