package jwt

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialFromRequestHeader(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Authorization", "Bearer abc123")

	assert.Equal(t, "abc123", CredentialFromRequest(r))
}

func TestCredentialFromRequestCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.AddCookie(&http.Cookie{Name: CredentialCookieName, Value: "cookie-token"})

	assert.Equal(t, "cookie-token", CredentialFromRequest(r))
}

func TestCredentialFromRequestHeaderWinsOverCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Authorization", "Bearer header-token")
	r.AddCookie(&http.Cookie{Name: CredentialCookieName, Value: "cookie-token"})

	assert.Equal(t, "header-token", CredentialFromRequest(r))
}

func TestCredentialFromRequestMalformedHeader(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Authorization", "Basic abc123")

	assert.Equal(t, "", CredentialFromRequest(r))
}

func TestCredentialFromRequestAbsent(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)

	assert.Equal(t, "", CredentialFromRequest(r))
}

func TestIdentityExtractorMiddleware(t *testing.T) {
	token, err := GenerateToken("user-42", testSecret, time.Hour)
	require.NoError(t, err)

	var got *Payload
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetPayloadFromContext(r)
	})

	handler := IdentityExtractorMiddleware(testSecret)(next)

	// Valid token: payload lands in the context.
	r := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), r)
	require.NotNil(t, got)
	assert.Equal(t, "user-42", got.UserID)

	// Invalid token: request continues as anonymous.
	got = nil
	r = httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	r.Header.Set("Authorization", "Bearer garbage")
	handler.ServeHTTP(httptest.NewRecorder(), r)
	assert.Nil(t, got)

	// No token at all: anonymous.
	got = nil
	r = httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	handler.ServeHTTP(httptest.NewRecorder(), r)
	assert.Nil(t, got)
}
