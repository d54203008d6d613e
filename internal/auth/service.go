package auth

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/common/validation"
	userDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/user"
)

// UserRepository reads the credentials side of the users table.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
}

// Service is the main auth service with dependencies
type Service struct {
	userRepo       UserRepository
	tokenGenerator TokenGenerator
	bcryptCost     int
	accessTTL      int64
	logger         *slog.Logger
}

func NewService(userRepo UserRepository, tokenGen *JWTTokenGenerator, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		userRepo:       userRepo,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
		accessTTL:      int64(tokenGen.AccessTokenTTL.Seconds()),
		logger:         logger,
	}
}

// Authenticate validates credentials and returns tokens. Unknown emails and
// wrong passwords produce the same error.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	dto.Email = strings.ToLower(strings.TrimSpace(dto.Email))
	if err := validation.ValidateStruct(dto); err != nil {
		return AuthTokens{}, err
	}

	u, err := s.userRepo.GetByEmail(ctx, dto.Email)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to load user", err)
	}
	if u == nil {
		s.logger.Info("login with unknown email")
		return AuthTokens{}, internal.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(dto.Password)); err != nil {
		s.logger.Info("login with wrong password", "user_id", u.ID)
		return AuthTokens{}, internal.ErrInvalidCredentials
	}
	if !u.IsActive {
		return AuthTokens{}, internal.ErrUserInactive
	}

	s.logger.Info("user logged in", "user_id", u.ID, "role", u.Role)
	return s.issue(u)
}

// RefreshTokens validates a refresh token and rotates both tokens. The role is
// read again so a promotion since the last login is picked up.
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	if err := validation.ValidateStruct(RefreshTokenDTO{RefreshToken: refreshToken}); err != nil {
		return AuthTokens{}, err
	}
	claims, err := s.tokenGenerator.ValidateToken(refreshToken, TokenTypeRefresh)
	if err != nil {
		return AuthTokens{}, err
	}
	u, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return AuthTokens{}, err
	}
	return s.issue(u)
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateToken(tokenString, TokenTypeAccess)
}

// Identify turns an access token into the caller. The user row is the source
// of truth for the role and the active flag, not the token.
func (s *Service) Identify(ctx context.Context, tokenString string) (internal.AuthContext, error) {
	claims, err := s.ValidateAccessToken(tokenString)
	if err != nil {
		return internal.AuthContext{}, err
	}
	u, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return internal.AuthContext{}, err
	}
	role, ok := internal.ParseRole(u.Role)
	if !ok {
		return internal.AuthContext{}, internal.ErrForbidden
	}
	return internal.AuthContext{UserID: u.ID, Role: role}, nil
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *Service) activeUser(ctx context.Context, id int64) (*userDatamodel.User, error) {
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if u == nil {
		return nil, internal.ErrInvalidToken
	}
	if !u.IsActive {
		return nil, internal.ErrUserInactive
	}
	return u, nil
}

func (s *Service) issue(u *userDatamodel.User) (AuthTokens, error) {
	role, _ := internal.ParseRole(u.Role)

	accessToken, err := s.tokenGenerator.GenerateAccessToken(u.ID, role)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to issue token", err)
	}
	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(u.ID, role)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to issue token", err)
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.accessTTL,
	}, nil
}
