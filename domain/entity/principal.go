package entity

import "time"

// Role is the authorization role of a principal.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// Principal is an authenticated actor with a credit balance.
// The plaintext API key is never stored; KeyHash holds a bcrypt hash of the
// key's secret part and KeyID is the public lookup half of the key.
type Principal struct {
	ID        string    `json:"id"`
	KeyID     string    `json:"-"`
	KeyHash   string    `json:"-"`
	Role      Role      `json:"role"`
	Credits   int64     `json:"credits"`
	CreatedAt time.Time `json:"created_at"`
}

// IsAdmin reports whether the principal may perform administrative
// operations (rule CRUD, user creation, credit adjustment, audit reads).
func (p *Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func NewPrincipal(id, keyID, keyHash string, role Role, credits int64) *Principal {
	return &Principal{
		ID:        id,
		KeyID:     keyID,
		KeyHash:   keyHash,
		Role:      role,
		Credits:   credits,
		CreatedAt: time.Now().UTC(),
	}
}
