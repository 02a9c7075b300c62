package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-core/internal/models"
	appErrors "github.com/noah-isme/school-core/pkg/errors"
)

func TestAuthServiceIssueAndValidate(t *testing.T) {
	svc := NewAuthService("secret")

	token, err := svc.IssueToken("ops", models.RoleAdmin, "Registrar", time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthServiceRejectsBadTokens(t *testing.T) {
	svc := NewAuthService("secret")

	expired, err := svc.IssueToken("ops", models.RoleAdmin, "", -time.Minute)
	require.NoError(t, err)
	_, err = svc.ValidateToken(expired)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized.Code))

	other, err := NewAuthService("other").IssueToken("ops", models.RoleAdmin, "", time.Hour)
	require.NoError(t, err)
	_, err = svc.ValidateToken(other)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized.Code))

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &models.JWTClaims{UserID: "x"})
	raw, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ValidateToken(raw)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized.Code))
}

func TestAuthServiceIssueRequiresSecret(t *testing.T) {
	_, err := NewAuthService("").IssueToken("ops", models.RoleAdmin, "", time.Hour)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation.Code))

	_, err = NewAuthService("s").IssueToken(" ", models.RoleAdmin, "", time.Hour)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation.Code))
}
