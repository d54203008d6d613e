package auth

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/leave-management/internal"
	userDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/user"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

// Mock UserRepository for testing
type mockUserRepository struct {
	byID       map[int64]*userDatamodel.User
	shouldFail bool
}

func newMockUserRepository() *mockUserRepository {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.MinCost)

	repo := &mockUserRepository{byID: map[int64]*userDatamodel.User{}}
	for _, u := range []*userDatamodel.User{
		{ID: 1, Name: "sam", Email: "sam@example.edu", Role: "staff", IsActive: true},
		{ID: 2, Name: "hana", Email: "hana@example.edu", Role: "hr_admin", IsActive: true},
		{ID: 3, Name: "gone", Email: "gone@example.edu", Role: "staff", IsActive: false},
	} {
		u.PasswordHash = string(hashedPassword)
		repo.byID[u.ID] = u
	}
	return repo
}

func (m *mockUserRepository) GetByEmail(_ context.Context, email string) (*userDatamodel.User, error) {
	if m.shouldFail {
		return nil, errors.New("connection refused")
	}
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepository) GetByID(_ context.Context, id int64) (*userDatamodel.User, error) {
	if m.shouldFail {
		return nil, errors.New("connection refused")
	}
	return m.byID[id], nil
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		ctx           context.Context
		service       *Service
		mockRepo      *mockUserRepository
		tokenGen      *JWTTokenGenerator
		accessSecret  = "test-access-secret-0123456789abcdef"
		refreshSecret = "test-refresh-secret-0123456789abcdef"
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		mockRepo = newMockUserRepository()
		tokenGen = NewJWTTokenGenerator(accessSecret, refreshSecret, 15*time.Minute, 24*time.Hour)
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = NewService(mockRepo, tokenGen, bcrypt.MinCost, logger)
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.Context("when credentials are valid", func() {
			ginkgo.It("should return access and refresh tokens", func() {
				// Given
				dto := LoginDTO{Email: "sam@example.edu", Password: "correct_password"}

				// When
				tokens, err := service.Authenticate(ctx, dto)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(tokens.AccessToken).ToNot(gomega.BeEmpty())
				gomega.Expect(tokens.RefreshToken).ToNot(gomega.Equal(tokens.AccessToken))
				gomega.Expect(tokens.TokenType).To(gomega.Equal("Bearer"))
				gomega.Expect(tokens.ExpiresIn).To(gomega.Equal(int64(900)))
			})

			ginkgo.It("should carry the user id and role in the access token", func() {
				tokens, err := service.Authenticate(ctx, LoginDTO{Email: "hana@example.edu", Password: "correct_password"})
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				claims, err := service.ValidateAccessToken(tokens.AccessToken)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(claims.UserID).To(gomega.Equal(int64(2)))
				gomega.Expect(claims.Role).To(gomega.Equal("hr_admin"))
				gomega.Expect(claims.Subject).To(gomega.Equal("2"))
			})

			ginkgo.It("should ignore case and surrounding spaces in the email", func() {
				_, err := service.Authenticate(ctx, LoginDTO{Email: "  SAM@Example.edu ", Password: "correct_password"})
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
			})
		})

		ginkgo.Context("when credentials are invalid", func() {
			ginkgo.It("should reject a wrong password", func() {
				_, err := service.Authenticate(ctx, LoginDTO{Email: "sam@example.edu", Password: "wrong"})
				gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidCredentials))
			})

			ginkgo.It("should give an unknown email the same answer", func() {
				_, err := service.Authenticate(ctx, LoginDTO{Email: "nobody@example.edu", Password: "correct_password"})
				gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidCredentials))
			})

			ginkgo.It("should refuse an inactive account", func() {
				_, err := service.Authenticate(ctx, LoginDTO{Email: "gone@example.edu", Password: "correct_password"})
				gomega.Expect(err).To(gomega.MatchError(internal.ErrUserInactive))
			})

			ginkgo.It("should validate the request", func() {
				_, err := service.Authenticate(ctx, LoginDTO{Email: "not-an-email"})
				gomega.Expect(internal.IsErrorType(err, internal.ErrorTypeValidation)).To(gomega.BeTrue())
			})
		})

		ginkgo.It("should report repository failures as internal errors", func() {
			mockRepo.shouldFail = true
			_, err := service.Authenticate(ctx, LoginDTO{Email: "sam@example.edu", Password: "correct_password"})
			gomega.Expect(internal.IsErrorType(err, internal.ErrorTypeInternal)).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("Token validation", func() {
		ginkgo.It("should not accept a refresh token as an access token", func() {
			refresh, err := tokenGen.GenerateRefreshToken(1, internal.RoleStaff)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.ValidateAccessToken(refresh)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
		})

		ginkgo.It("should report expired tokens", func() {
			tokenGen.now = func() time.Time { return time.Now().Add(-time.Hour) }
			token, err := tokenGen.GenerateAccessToken(1, internal.RoleStaff)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			tokenGen.now = time.Now

			_, err = service.ValidateAccessToken(token)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrTokenExpired))
		})

		ginkgo.It("should reject a token signed with another secret", func() {
			other := NewJWTTokenGenerator("another-secret-0123456789abcdefghij", refreshSecret, time.Minute, time.Hour)
			token, err := other.GenerateAccessToken(1, internal.RoleHRAdmin)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.ValidateAccessToken(token)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
		})

		ginkgo.It("should reject garbage", func() {
			_, err := service.ValidateAccessToken("not.a.token")
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
		})
	})

	ginkgo.Describe("RefreshTokens", func() {
		ginkgo.It("should rotate tokens with the current role", func() {
			// Given
			tokens, err := service.Authenticate(ctx, LoginDTO{Email: "sam@example.edu", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			mockRepo.byID[1].Role = "department_head"

			// When
			refreshed, err := service.RefreshTokens(ctx, tokens.RefreshToken)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			claims, err := service.ValidateAccessToken(refreshed.AccessToken)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.Role).To(gomega.Equal("department_head"))
		})

		ginkgo.It("should refuse an access token", func() {
			tokens, err := service.Authenticate(ctx, LoginDTO{Email: "sam@example.edu", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.RefreshTokens(ctx, tokens.AccessToken)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
		})

		ginkgo.It("should refuse a user deactivated since login", func() {
			tokens, err := service.Authenticate(ctx, LoginDTO{Email: "sam@example.edu", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			mockRepo.byID[1].IsActive = false

			_, err = service.RefreshTokens(ctx, tokens.RefreshToken)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrUserInactive))
		})

		ginkgo.It("should require a token", func() {
			_, err := service.RefreshTokens(ctx, "")
			gomega.Expect(internal.IsErrorType(err, internal.ErrorTypeValidation)).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("Identify", func() {
		ginkgo.It("should take the role from the user row", func() {
			token, err := tokenGen.GenerateAccessToken(1, internal.RoleHRAdmin)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			actor, err := service.Identify(ctx, token)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(actor).To(gomega.Equal(internal.AuthContext{UserID: 1, Role: internal.RoleStaff}))
		})

		ginkgo.It("should reject tokens of deleted users", func() {
			token, err := tokenGen.GenerateAccessToken(99, internal.RoleStaff)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.Identify(ctx, token)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
		})
	})

	ginkgo.Describe("HashPassword", func() {
		ginkgo.It("should produce a bcrypt hash of the password", func() {
			hash, err := service.HashPassword("correct-horse")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(bcrypt.CompareHashAndPassword([]byte(hash), []byte("correct-horse"))).To(gomega.Succeed())
		})
	})
})
