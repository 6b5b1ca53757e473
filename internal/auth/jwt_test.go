package auth

import (
	"testing"
	"time"

	"client-vault/internal/domain/user"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "Zk3#qP9w!Lm2$Xv7^Rt5&Hy8*Bn4@Jc6"

func testUser(isAdmin bool) *user.User {
	return &user.User{
		ID:       uuid.New(),
		Username: "acme",
		Email:    "ops@acme.example",
		IsAdmin:  isAdmin,
	}
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)
	u := testUser(true)

	token, err := svc.Generate(u)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "acme", claims.Username)
	assert.True(t, claims.IsAdmin)
}

func TestJWTService_RejectsExpired(t *testing.T) {
	svc := NewJWTService(testSecret, -time.Minute)

	token, err := svc.Generate(testUser(false))
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsForeignSecret(t *testing.T) {
	token, err := NewJWTService("another-secret-another-secret-123", time.Hour).Generate(testUser(false))
	require.NoError(t, err)

	_, err = NewJWTService(testSecret, time.Hour).Verify(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsOtherAlgorithms(t *testing.T) {
	claims := JWTClaims{UserID: uuid.New()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = NewJWTService(testSecret, time.Hour).Verify(token)
	assert.Error(t, err)
}
