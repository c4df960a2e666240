/*
Package randx provides functions for generating unique identifiers and random display names.

It is used for server-generated UUIDs (users, rooms, messages) and the default
display names assigned to new accounts.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// NewID generates a UUID v4 string used as the identifier for users, rooms, and messages.
func NewID() string {
	return uuid.New().String()
}

// IsValidID checks whether the given string is a well-formed UUID.
// Room identifiers arriving over the wire are validated with this before any
// store lookup, mirroring the invalid-room-identifier failure path.
func IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// DisplayName generates a random display name of the form "User" followed by
// six random digits. Callers retry on uniqueness collisions at the store layer.
func DisplayName() (string, error) {
	const digits = 6

	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}

	num, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate random number for display name: %w", err)
	}

	return fmt.Sprintf("User%0*d", digits, num), nil
}
