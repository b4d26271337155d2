package auth

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher defines the minimal hashing interface (abstract so tests can
// swap in a cheap fake and the algorithm can move to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// BcryptHasher hashes with bcrypt. Hashing and verification are expensive on
// purpose; callers must keep them off latency-sensitive paths.
type BcryptHasher struct{ Cost int }

const defaultBcryptCost = 10

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = defaultBcryptCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify trims surrounding whitespace before comparing. This mirrors the
// documented login behavior; passwords that intentionally begin or end with
// whitespace will not round-trip.
func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(strings.TrimSpace(pw))) == nil
}
