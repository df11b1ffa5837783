package service_test

import (
	"context"
	"testing"

	"github.com/leodymann/wi-api/internal/apperr"
	"github.com/leodymann/wi-api/internal/config"
	"github.com/leodymann/wi-api/internal/dto"
	"github.com/leodymann/wi-api/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "test-secret", JWTExpirationHours: 8, JWTRefreshHours: 24}
}

func TestAuth_CreateLoginRefresh(t *testing.T) {
	st := newMemStore()
	svc := service.NewAuthService(&stubUserRepo{st}, testConfig())
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, dto.CreateUserRequest{
		Name: "Admin", Email: "Admin@WIMotos.com", Password: "segredo123", Role: "ADMIN",
	})
	require.NoError(t, err)
	assert.Equal(t, "admin@wimotos.com", user.Email)
	assert.True(t, user.Active)

	_, err = svc.CreateUser(ctx, dto.CreateUserRequest{
		Name: "Dup", Email: "admin@wimotos.com", Password: "segredo123", Role: "STAFF",
	})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	login, err := svc.Login(ctx, dto.LoginRequest{Email: "admin@wimotos.com", Password: "segredo123"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", login.TokenType)
	assert.Equal(t, 8*3600, login.ExpiresIn)

	token, err := jwt.Parse(login.AccessToken, func(*jwt.Token) (interface{}, error) { return []byte("test-secret"), nil })
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, user.ID, claims["user_id"])
	assert.Equal(t, "ADMIN", claims["role"])

	refreshed, err := svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, refreshed.User.ID)
}

func TestAuth_BadCredentials(t *testing.T) {
	st := newMemStore()
	svc := service.NewAuthService(&stubUserRepo{st}, testConfig())
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, dto.CreateUserRequest{Name: "Staff", Email: "staff@wimotos.com", Password: "segredo123", Role: "STAFF"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "staff@wimotos.com", Password: "errada"})
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	_, err = svc.Login(ctx, dto.LoginRequest{Email: "ghost@wimotos.com", Password: "segredo123"})
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	_, err = svc.Refresh(ctx, "not-a-token")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}
