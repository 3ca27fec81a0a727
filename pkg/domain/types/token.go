package types

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

// VerificationToken is a single-use random token proving control of a Slack
// account via DM delivery. It is cleared when consumed.
type VerificationToken string

var verificationTokenPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// NewVerificationToken generates a 32-byte random token in hex encoding.
func NewVerificationToken() VerificationToken {
	buf := make([]byte, 32)
	// crypto/rand.Read does not fail on supported platforms
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return VerificationToken(hex.EncodeToString(buf))
}

func (t VerificationToken) String() string {
	return string(t)
}

// IsValid reports whether the token has the expected 64-hex-char shape.
func (t VerificationToken) IsValid() bool {
	return verificationTokenPattern.MatchString(string(t))
}

// Validate checks the token shape. Tokens from URL paths should be validated
// before hitting the store.
func (t VerificationToken) Validate() error {
	if !t.IsValid() {
		return goerr.New("invalid verification token")
	}
	return nil
}
