package jwt

import (
	"context"
	"net/http"
	"strings"

	"studychat/internal/pkg/logx"
)

// Context key for storing the Payload struct, preventing collisions with other packages.
type contextKey string

const (
	// ContextAuthPayloadKey is the key used to store the parsed Payload in the request context.
	ContextAuthPayloadKey contextKey = "auth_payload"

	// CredentialCookieName is the cookie carrying the identity token. WebSocket
	// handshakes from browsers cannot set an Authorization header, so the cookie
	// is the credential path the chat gateway relies on.
	CredentialCookieName = "token"
)

// CredentialFromRequest extracts the raw identity token from a request, checking
// the Authorization header first and the token cookie second. It returns the
// empty string when no credential is present.
func CredentialFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}

	if cookie, err := r.Cookie(CredentialCookieName); err == nil {
		return cookie.Value
	}

	return ""
}

// IdentityExtractorMiddleware attempts to extract and validate a JWT from the request.
// It injects the Payload into the context upon success. It does NOT interrupt the
// request on failure or missing token, treating the user as anonymous instead.
func IdentityExtractorMiddleware(secretKey string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := CredentialFromRequest(r)
			if tokenString == "" {
				next.ServeHTTP(w, r)
				return
			}

			payload, err := ParseToken(tokenString, secretKey)
			if err != nil {
				// Token exists but is invalid (expired, wrong signature).
				// Log and continue as anonymous.
				logx.Warn("Invalid or expired JWT provided, treating as anonymous", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextAuthPayloadKey, payload)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPayloadFromContext safely extracts the authenticated Payload from the request context.
// A nil return means the user is anonymous.
func GetPayloadFromContext(r *http.Request) *Payload {
	payload, ok := r.Context().Value(ContextAuthPayloadKey).(*Payload)

	if !ok {
		return nil
	}

	return payload
}
