// Package auth issues and verifies the signed session tokens carried in the
// client's cookie, and hashes account passwords.
package auth

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"

	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/user"
)

// ErrInvalidToken is returned when a session token fails verification.
var ErrInvalidToken = errors.New("invalid session token")

// SessionTTL is how long an issued session token stays valid.
const SessionTTL = 7 * 24 * time.Hour

// Claims are the session token claims: who the user is plus the role and
// tier snapshotted at login.
type Claims struct {
	Role user.Role `json:"role"`
	Tier user.Tier `json:"tier"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies session tokens with an HMAC secret.
type Tokens struct {
	secret []byte
	now    func() time.Time
}

// NewTokens creates a Tokens signer/verifier with the given HMAC secret.
func NewTokens(secret []byte) *Tokens {
	return &Tokens{secret: secret, now: time.Now}
}

// Issue signs a session token for u, valid for SessionTTL.
func (t *Tokens) Issue(u *user.User) (string, error) {
	now := t.now()
	claims := Claims{
		Role: u.Role,
		Tier: u.Tier,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

// Verify parses and validates a session token, returning its claims.
func (t *Tokens) Verify(token string) (*Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
