package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrRevokedToken = errors.New("token has been revoked")
)

// Claims holds JWT claims. Identifier is the external identity reference the
// rest of the system resolves a principal from; it never changes for a user.
type Claims struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	jwt.RegisteredClaims
}

// Denylist records revoked token IDs until their natural expiry.
type Denylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// JWTService issues and validates bearer tokens. It is the identity resolver:
// a bearer credential in, a verified {identifier, email} pair out.
type JWTService struct {
	secret      []byte
	expireHours int
	denylist    Denylist
}

// NewJWTService creates a JWT service. denylist may be nil, in which case
// signout revocation is disabled.
func NewJWTService(secret string, expireHours int, denylist Denylist) *JWTService {
	return &JWTService{
		secret:      []byte(secret),
		expireHours: expireHours,
		denylist:    denylist,
	}
}

// Generate creates a new token for the identity.
func (s *JWTService) Generate(identifier, email string) (string, error) {
	claims := Claims{
		Identifier: identifier,
		Email:      email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identifier,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(s.expireHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate parses and validates a token, returning claims or an error.
// Revoked tokens fail even when otherwise valid.
func (s *JWTService) Validate(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if s.denylist != nil && claims.ID != "" {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrRevokedToken
		}
	}
	return claims, nil
}

// Revoke adds the token's ID to the denylist until the token expires.
func (s *JWTService) Revoke(ctx context.Context, claims *Claims) error {
	if s.denylist == nil || claims.ID == "" {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return s.denylist.Revoke(ctx, claims.ID, ttl)
}
