package auth

import (
	"time"

	"github.com/google/uuid"
)

// Roles. A user's role is fixed at registration; there is no promotion
// path.
const (
	RoleStandard  = "standard"
	RoleAdmin     = "admin"
	RoleRecruiter = "recruiter"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r string) bool {
	switch r {
	case RoleStandard, RoleAdmin, RoleRecruiter:
		return true
	}
	return false
}

// User is a platform account.
type User struct {
	ID           uuid.UUID `json:"id"`
	DisplayName  string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`

	// SubmissionCount grows only when a question is solved for the first
	// time; repeat-correct submissions never re-increment it.
	SubmissionCount int `json:"submissions"`

	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// TokenPair holds access and refresh tokens.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// RegisterRequest for email/password registration.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest for email/password authentication.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// OAuthProvider constants.
const (
	OAuthProviderGoogle = "google"
)
