package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the JWT claims for studychat identity tokens.
// The token carries only an opaque user reference; display name, role, and
// avatar are always read fresh from the store so broadcasts never show a
// stale snapshot.
type Payload struct {
	// StandardClaims embeds Exp (Expiration), Iat (Issued At), and Iss (Issuer),
	// required for token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// UserID is the unique identifier of the authenticated user.
	UserID string `json:"userId"`
}
