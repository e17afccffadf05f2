package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/tkaraca/registra/internal/app/models/dto"
	"github.com/tkaraca/registra/internal/pkg/apperrors"
	"github.com/tkaraca/registra/internal/pkg/auth"
	"github.com/tkaraca/registra/internal/pkg/logger"
)

// AuthService handles authentication operations
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
}

type authServiceImpl struct {
	users  UserStore
	jwt    *auth.JWTService
	logger zerolog.Logger
}

// NewAuthService creates a new instance of AuthService
func NewAuthService(users UserStore, jwt *auth.JWTService) AuthService {
	return &authServiceImpl{
		users:  users,
		jwt:    jwt,
		logger: logger.WithField("service", "auth"),
	}
}

// Login verifies the credentials and issues an access token. Unknown email
// and wrong password produce the same error so the endpoint does not leak
// which accounts exist.
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	token, expiresIn, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}

	if err := s.users.TouchLastLogin(ctx, user.ID, time.Now()); err != nil {
		s.logger.Warn().Err(err).Int64("userId", user.ID).Msg("Failed to update last login timestamp")
	}

	s.logger.Info().Int64("userId", user.ID).Str("role", string(user.RoleType)).Msg("User logged in")

	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
		User: dto.UserResponse{
			ID:        user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			RoleType:  string(user.RoleType),
		},
	}, nil
}
