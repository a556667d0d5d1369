package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("unit-test-secret")

	token, err := GenerateToken(secret, 42)
	require.NoError(t, err)

	uid, err := ParseToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, 42, uid)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken([]byte("secret-a"), 42)
	require.NoError(t, err)

	uid, _ := ParseToken([]byte("secret-b"), token)
	assert.Equal(t, 0, uid)
}

func TestParseTokenRejectsUnexpectedAlg(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": 42})
	signed, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	uid, err := ParseToken([]byte("s"), signed)
	require.Error(t, err)
	assert.Equal(t, 0, uid)
}

func TestMiddlewareInjectsUserID(t *testing.T) {
	secret := []byte("unit-test-secret")
	token, err := GenerateToken(secret, 7)
	require.NoError(t, err)

	var got int
	var ok bool
	handler := New(secret).Wrap(func(w http.ResponseWriter, r *http.Request) {
		got, ok = UserIDFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.True(t, ok)
	assert.Equal(t, 7, got)
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	handler := New([]byte("s")).Wrap(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
