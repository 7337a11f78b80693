package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestIssueAndParse(t *testing.T) {
	m, err := NewManager(testSecret, time.Hour)
	require.NoError(t, err)

	token, expiresAt, err := m.Issue("cli-client")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "cli-client", claims.ClientID)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	m1, _ := NewManager(testSecret, time.Hour)
	m2, _ := NewManager([]byte("another-secret-another-secret-32"), time.Hour)

	token, _, err := m1.Issue("client")
	require.NoError(t, err)

	_, err = m2.Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	m, _ := NewManager(testSecret, time.Hour)

	claims := Claims{
		ClientID: "client",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, err = m.Parse(expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseRejectsUnsignedAlg(t *testing.T) {
	m, _ := NewManager(testSecret, time.Hour)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{ClientID: "x"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.Parse(unsigned)
	assert.Error(t, err)
}

func TestNewManagerValidation(t *testing.T) {
	_, err := NewManager(nil, time.Hour)
	assert.Error(t, err)

	_, err = NewManager(testSecret, 0)
	assert.Error(t, err)
}
