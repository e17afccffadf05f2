package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tkaraca/registra/internal/app/models"
	"github.com/tkaraca/registra/internal/app/models/dto"
	"github.com/tkaraca/registra/internal/pkg/apperrors"
	"github.com/tkaraca/registra/internal/pkg/auth"
)

func newAuthFixture(t *testing.T) (*fakeUserStore, AuthService) {
	t.Helper()
	hashed, err := auth.HashPassword("s3cret")
	require.NoError(t, err)

	users := newFakeUserStore(
		&models.User{ID: 1, Email: "registrar@school.edu.tr", Password: hashed, FirstName: "Ayşe", LastName: "Kaya", RoleType: models.RoleAdministrator, IsActive: true},
		&models.User{ID: 2, Email: "former@school.edu.tr", Password: hashed, RoleType: models.RoleInstructor, IsActive: false},
	)
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "registra-test",
	})
	return users, NewAuthService(users, jwtService)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		users, service := newAuthFixture(t)
		resp, err := service.Login(ctx, &dto.LoginRequest{Email: "registrar@school.edu.tr", Password: "s3cret"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, "ADMINISTRATOR", resp.User.RoleType)
		assert.NotNil(t, users.users["registrar@school.edu.tr"].LastLoginAt)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, service := newAuthFixture(t)
		_, err := service.Login(ctx, &dto.LoginRequest{Email: "registrar@school.edu.tr", Password: "wrong"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("unknown email yields the same error as a wrong password", func(t *testing.T) {
		_, service := newAuthFixture(t)
		_, err := service.Login(ctx, &dto.LoginRequest{Email: "nobody@school.edu.tr", Password: "s3cret"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("disabled account", func(t *testing.T) {
		_, service := newAuthFixture(t)
		_, err := service.Login(ctx, &dto.LoginRequest{Email: "former@school.edu.tr", Password: "s3cret"})
		assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
	})
}
