package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired means the token was well-formed and correctly signed
	// but past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid means the signature did not verify.
	ErrTokenInvalid = errors.New("token signature invalid")
	// ErrTokenMalformed means the string is not a parseable token.
	ErrTokenMalformed = errors.New("token malformed")
)

// IdentityClaims asserts a user's identity and role. Standard registered
// claims carry the expiry.
type IdentityClaims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

// TokenIssuer signs and verifies identity tokens with a process-wide
// symmetric secret. Rotating the secret invalidates all outstanding tokens.
type TokenIssuer struct {
	secret []byte
}

func NewTokenIssuer(secret []byte) *TokenIssuer {
	return &TokenIssuer{secret: secret}
}

// Issue mints a signed HS256 token embedding the user id, role and an
// expiry ttl from now.
func (t *TokenIssuer) Issue(userID int64, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
		Role:   role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify parses and validates a token, returning its claims. Failures are
// reported as one of ErrTokenExpired, ErrTokenInvalid or ErrTokenMalformed.
func (t *TokenIssuer) Verify(tokenString string) (*IdentityClaims, error) {
	claims := &IdentityClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(tok *jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenInvalid
		default:
			return nil, ErrTokenMalformed
		}
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
