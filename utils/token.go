package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/datacite/datafiles-service/config"
)

// ErrInvalidToken is the only failure a TokenCodec reports. Malformed
// encoding, signature mismatch and elapsed expiry are deliberately
// indistinguishable so the response never leaks which check failed.
var ErrInvalidToken = errors.New("invalid token")

// TokenIdentity is the decoded content of a valid access token.
type TokenIdentity struct {
	RequesterID uint
	// JTI identifies this token for one-time redemption tracking.
	JTI       string
	ExpiresAt time.Time
}

type accessClaims struct {
	RequesterID uint `json:"requester_id"`
	jwt.RegisteredClaims
}

// TokenCodec mints and verifies the signed links sent by email. The
// signing key is fixed at construction; rotating it invalidates all
// outstanding tokens, which is acceptable for 24 hour credentials.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenCodec builds a codec from the loaded configuration.
func NewTokenCodec(cfg config.AppConfig) *TokenCodec {
	return &TokenCodec{
		secret: []byte(cfg.JWTSecret),
		ttl:    time.Duration(cfg.TokenTTLHours) * time.Hour,
	}
}

// TTL reports the validity window tokens are issued with.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token binding the requester identity to an absolute expiry.
func (c *TokenCodec) Issue(requesterID uint) (string, error) {
	now := time.Now()
	claims := accessClaims{
		RequesterID: requesterID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify validates a token and returns the identity it carries. Every
// failure mode collapses into ErrInvalidToken.
func (c *TokenCodec) Verify(tokenStr string) (*TokenIdentity, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &accessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*accessClaims)
	if !ok || !parsed.Valid || claims.RequesterID == 0 || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}

	return &TokenIdentity{
		RequesterID: claims.RequesterID,
		JTI:         claims.ID,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}
