// Package auth provides user accounts, login sessions, and bearer-token
// verification for the directory service. The catalog query engine does not
// depend on this package; it guards the role-restricted endpoints only.
package auth

import "time"

// Roles assignable to an account.
const (
	RoleUser     = "user"
	RoleSpaOwner = "spa_owner"
	RoleAdmin    = "admin"
)

// User is one registered account. PasswordHash never leaves this package.
type User struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone,omitempty"`
	Role          string    `json:"role"`
	IsActive      bool      `json:"is_active"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`

	passwordHash string
}

// Session is one active login. The bearer token itself is never stored; only
// its SHA-256 hash is, so a leaked session table cannot be replayed.
type Session struct {
	ID        string
	UserID    int64
	TokenHash string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired reports whether the session has passed its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Identity is the verified subject attached to a request after bearer-token
// authentication.
type Identity struct {
	UserID int64
	Email  string
	Role   string
}
