package service

import (
	"testing"
	"time"

	apperrors "ordem-servico/pkg/errors"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTService("segredo-de-teste", 15*time.Minute, 7*24*time.Hour, zap.NewNop())

	access, refresh, err := svc.GenerateTokens(42, "technician")
	require.NoError(t, err)
	assert.NotEqual(t, access, refresh)

	claims, err := svc.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, "technician", claims.Role)
	assert.False(t, claims.IsRefreshToken)

	refreshClaims, err := svc.ValidateToken(refresh)
	require.NoError(t, err)
	assert.True(t, refreshClaims.IsRefreshToken)
	assert.NotEmpty(t, refreshClaims.ID)
}

func TestJWTService_RefreshTokensAreUnique(t *testing.T) {
	svc := NewJWTService("segredo-de-teste", time.Minute, time.Hour, zap.NewNop())
	_, r1, err := svc.GenerateTokens(1, "admin")
	require.NoError(t, err)
	_, r2, err := svc.GenerateTokens(1, "admin")
	require.NoError(t, err)
	assert.NotEqual(t, r1, r2)
}

func TestJWTService_Expired(t *testing.T) {
	svc := NewJWTService("segredo-de-teste", -time.Minute, time.Hour, zap.NewNop())
	access, _, err := svc.GenerateTokens(1, "admin")
	require.NoError(t, err)

	_, err = svc.ValidateToken(access)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestJWTService_WrongSecretAndGarbage(t *testing.T) {
	issuer := NewJWTService("segredo-a", time.Minute, time.Hour, zap.NewNop())
	verifier := NewJWTService("segredo-b", time.Minute, time.Hour, zap.NewNop())

	access, _, err := issuer.GenerateTokens(1, "admin")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(access)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	_, err = verifier.ValidateToken("nao.e.token")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestJWTService_RejectsNoneAlgorithm(t *testing.T) {
	svc := NewJWTService("segredo", time.Minute, time.Hour, zap.NewNop())
	token := jwt.NewWithClaims(jwt.SigningMethodNone, &JwtCustomClaim{UserID: 1})
	raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(raw)
	assert.Error(t, err)
}
