package store

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// DefaultTokenTTL is how long a session token stays valid.
const DefaultTokenTTL = 24 * time.Hour

// Claims is the session token payload.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 session tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens creates a token service. A non-positive ttl uses DefaultTokenTTL.
func NewTokens(secret string, ttl time.Duration) (t *Tokens, err error) {
	if secret == "" {
		err = errors.New("token secret is required")
		return t, err
	}

	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	t = &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
	return t, err
}

// Issue signs a token for the user.
func (t *Tokens) Issue(u User) (token string, claims Claims, err error) {
	now := t.now()
	claims = Claims{
		UserID: u.ID.String(),
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		err = errors.Wrap(err, "failed to sign token")
	}
	return token, claims, err
}

// Parse verifies a token's signature and expiry.
func (t *Tokens) Parse(token string) (claims Claims, err error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)

	_, err = parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	})
	if err != nil {
		err = errors.Wrap(err, "invalid token")
	}
	return claims, err
}
