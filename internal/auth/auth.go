package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/saps-platform/case-management/internal/rbac"
)

type contextKey string

// ContextUserKey is where the auth middleware stores the resolved user.
const ContextUserKey contextKey = "auth_user"

// User is the authenticated SAPS member as seen by handlers. Role is kept as
// stored; the policy layer degrades unknown role strings to the Constable
// profile instead of failing here.
type User struct {
	ID                int64     `json:"id"`
	Email             string    `json:"email"`
	FullName          string    `json:"full_name"`
	Role              rbac.Role `json:"saps_role"`
	Province          string    `json:"province,omitempty"`
	Station           string    `json:"station,omitempty"`
	BadgeNumber       string    `json:"badge_number,omitempty"`
	ProfilePictureURL string    `json:"profile_picture_url,omitempty"`
	ProfileComplete   bool      `json:"profile_complete"`
	IsActive          bool      `json:"is_active"`
}

// UserFromContext retrieves the authenticated user placed by AuthMiddleware.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(ContextUserKey).(*User)
	return user, ok
}

// ContextWithUser attaches the user; used by middleware and tests.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, user)
}

// TokenGenerator creates and validates tokens.
type TokenGenerator interface {
	GenerateAccessToken(userID string, email string) (token string, err error)
	GenerateRefreshToken(userID string, email string) (token string, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
