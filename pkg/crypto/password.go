package crypto

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the bcrypt work factor used when none is configured
	DefaultCost = 10
	// MaxSecretBytes is the longest secret bcrypt can hash
	MaxSecretBytes = 72
)

// Hasher hashes and verifies passwords and security answers with bcrypt
type Hasher struct {
	cost int
}

// NewHasher creates a Hasher with the given cost. Out-of-range costs fall back to DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns a salted digest of secret
func (h *Hasher) Hash(secret string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether secret matches digest.
// A mismatch is (false, nil); a malformed digest is an error.
// Secrets longer than MaxSecretBytes never match.
func (h *Hasher) Verify(secret, digest string) (bool, error) {
	if len(secret) > MaxSecretBytes {
		return false, nil
	}
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("verify secret: %w", err)
	}
}
