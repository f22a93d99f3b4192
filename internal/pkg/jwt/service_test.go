package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(now func() time.Time) *HMACService {
	return NewHMACService("access-secret", "refresh-secret", 15*time.Minute, time.Hour, WithClock(now))
}

func TestAccessAndRefreshTokens(t *testing.T) {
	svc := newTestService(time.Now)
	id := uuid.New()

	access, err := svc.GenerateAccessToken(id, "a@b.co")
	require.NoError(t, err)
	c, err := svc.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, id, c.UserID)
	assert.Equal(t, "a@b.co", c.Email)
	assert.False(t, svc.IsRefreshToken(c))
	assert.Equal(t, DefaultIssuer, c.Issuer)
	assert.NotEmpty(t, c.ID)

	refresh, err := svc.GenerateRefreshToken(id)
	require.NoError(t, err)
	c, err = svc.ValidateToken(refresh)
	require.NoError(t, err)
	assert.True(t, svc.IsRefreshToken(c))
}

func TestValidateToken_Expired(t *testing.T) {
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now := issued
	svc := newTestService(func() time.Time { return now })

	tok, err := svc.GenerateAccessToken(uuid.New(), "")
	require.NoError(t, err)

	now = issued.Add(16 * time.Minute)
	_, err = svc.ValidateToken(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateToken_TypeMustMatchSecret(t *testing.T) {
	svc := newTestService(time.Now)
	now := time.Now().UTC()

	// signed with the refresh secret while claiming to be an access token
	forged := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, Claims{
		UserID:    uuid.New(),
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    DefaultIssuer,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(time.Minute)),
		},
	})
	s, err := forged.SignedString([]byte("refresh-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(s)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateToken_ForeignIssuer(t *testing.T) {
	other := NewHMACService("access-secret", "refresh-secret", time.Minute, time.Hour, WithIssuer("someone-else"))
	tok, err := other.GenerateAccessToken(uuid.New(), "")
	require.NoError(t, err)

	_, err = newTestService(time.Now).ValidateToken(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestGenerate_RequiresSecretAndUser(t *testing.T) {
	svc := NewHMACService("", "refresh", time.Minute, time.Hour)
	_, err := svc.GenerateAccessToken(uuid.New(), "")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = newTestService(time.Now).GenerateRefreshToken(uuid.Nil)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = newTestService(time.Now).ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
