package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// ActionTokenBytes is the entropy of an out-of-band (email verification or
// password reset) token: 256 bits, rendered as 64 hex characters.
const ActionTokenBytes = 32

// GenerateActionToken returns a cryptographically random single-use token for
// delivery over a side channel. The raw value is stored on the account record
// and compared by equality together with its expiry.
func GenerateActionToken() (string, error) {
	buf := make([]byte, ActionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate action token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
