package auth_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/saps-platform/case-management/internal"
	"github.com/saps-platform/case-management/internal/auth"
	"github.com/saps-platform/case-management/internal/rbac"
)

func TestAuthService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "AuthService Suite")
}

type mockUserRepository struct {
	usersByEmail map[string]*storedUser
	usersByID    map[int64]*auth.User
	getError     error
}

type storedUser struct {
	id           int64
	passwordHash string
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		usersByEmail: make(map[string]*storedUser),
		usersByID:    make(map[int64]*auth.User),
	}
}

func (m *mockUserRepository) GetPasswordForEmail(email string) (string, int64, error) {
	if m.getError != nil {
		return "", 0, m.getError
	}
	stored, exists := m.usersByEmail[email]
	if !exists {
		return "", 0, errors.New("user not found")
	}
	return stored.passwordHash, stored.id, nil
}

func (m *mockUserRepository) GetUserByID(userID int64) (*auth.User, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	user, exists := m.usersByID[userID]
	if !exists {
		return nil, errors.New("user not found")
	}
	return user, nil
}

var _ = Describe("AuthService", func() {
	var (
		repo    *mockUserRepository
		tokens  *auth.JWTTokenGenerator
		service *auth.Service
	)

	BeforeEach(func() {
		repo = newMockUserRepository()
		tokens = auth.NewJWTTokenGenerator("access-secret", "refresh-secret",
			15*time.Minute, 7*24*time.Hour)
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = auth.NewService(repo, tokens, bcrypt.MinCost, logger)

		hash, err := bcrypt.GenerateFromPassword([]byte("station-pass-1"), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())

		repo.usersByEmail["pdlamini@saps.gov.za"] = &storedUser{id: 1, passwordHash: string(hash)}
		repo.usersByID[1] = &auth.User{
			ID:              1,
			Email:           "pdlamini@saps.gov.za",
			FullName:        "Peter Dlamini",
			Role:            rbac.RoleConstable,
			Province:        "Gauteng",
			ProfileComplete: true,
			IsActive:        true,
		}
	})

	Describe("Authenticate", func() {
		It("should return both tokens for valid credentials", func() {
			authTokens, err := service.Authenticate(auth.LoginDTO{
				Email:    "pdlamini@saps.gov.za",
				Password: "station-pass-1",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(authTokens.AccessToken).NotTo(BeEmpty())
			Expect(authTokens.RefreshToken).NotTo(BeEmpty())
		})

		It("should reject a wrong password", func() {
			_, err := service.Authenticate(auth.LoginDTO{
				Email:    "pdlamini@saps.gov.za",
				Password: "wrong",
			})
			Expect(err).To(Equal(internal.ErrInvalidCredentials))
		})

		It("should reject an unknown email with the same error", func() {
			_, err := service.Authenticate(auth.LoginDTO{
				Email:    "nobody@saps.gov.za",
				Password: "station-pass-1",
			})
			Expect(err).To(Equal(internal.ErrInvalidCredentials))
		})

		It("should reject missing fields before touching the repository", func() {
			_, err := service.Authenticate(auth.LoginDTO{})
			Expect(err).To(BeAssignableToTypeOf(auth.ValidationError{}))
		})
	})

	Describe("ValidateAccessToken", func() {
		It("should return the claims embedded at login", func() {
			authTokens, err := service.Authenticate(auth.LoginDTO{
				Email:    "pdlamini@saps.gov.za",
				Password: "station-pass-1",
			})
			Expect(err).NotTo(HaveOccurred())

			claims, err := service.ValidateAccessToken(authTokens.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal("1"))
			Expect(claims.Email).To(Equal("pdlamini@saps.gov.za"))
		})

		It("should reject a garbage token", func() {
			_, err := service.ValidateAccessToken("not-a-token")
			Expect(err).To(Equal(internal.ErrInvalidToken))
		})
	})

	Describe("RefreshTokens", func() {
		It("should rotate both tokens off a valid refresh token", func() {
			authTokens, err := service.Authenticate(auth.LoginDTO{
				Email:    "pdlamini@saps.gov.za",
				Password: "station-pass-1",
			})
			Expect(err).NotTo(HaveOccurred())

			rotated, err := service.RefreshTokens(authTokens.RefreshToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(rotated.AccessToken).NotTo(BeEmpty())
			Expect(rotated.RefreshToken).NotTo(BeEmpty())
		})
	})

	Describe("GetUser", func() {
		It("should return the full profile for the middleware", func() {
			user, err := service.GetUser(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(user.FullName).To(Equal("Peter Dlamini"))
			Expect(user.Role).To(Equal(rbac.RoleConstable))
			Expect(user.Province).To(Equal("Gauteng"))
		})

		It("should refuse an inactive account", func() {
			repo.usersByID[2] = &auth.User{ID: 2, Email: "old@saps.gov.za", IsActive: false}
			_, err := service.GetUser(2)
			Expect(err).To(Equal(internal.ErrUserInactive))
		})
	})

	Describe("configured security settings", func() {
		It("should sign tokens with the configured lifetimes", func() {
			gen := auth.NewJWTTokenGenerator("access-secret", "refresh-secret",
				time.Hour, 48*time.Hour)

			token, err := gen.GenerateAccessToken("1", "pdlamini@saps.gov.za")
			Expect(err).NotTo(HaveOccurred())

			claims, err := gen.ValidateToken(token)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.ExpiresAt.Time).To(BeTemporally("~", time.Now().Add(time.Hour), time.Minute))
		})

		It("should hash passwords at the configured cost", func() {
			hash, err := service.HashPassword("station-pass-1")
			Expect(err).NotTo(HaveOccurred())

			cost, err := bcrypt.Cost([]byte(hash))
			Expect(err).NotTo(HaveOccurred())
			Expect(cost).To(Equal(bcrypt.MinCost))
		})
	})
})
