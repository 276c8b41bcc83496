package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memDenylist struct {
	revoked map[string]bool
}

func newMemDenylist() *memDenylist {
	return &memDenylist{revoked: map[string]bool{}}
}

func (m *memDenylist) Revoke(_ context.Context, jti string, _ time.Duration) error {
	m.revoked[jti] = true
	return nil
}

func (m *memDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	return m.revoked[jti], nil
}

func TestGenerateValidateRoundtrip(t *testing.T) {
	svc := NewJWTService("test-secret", 24, nil)

	token, err := svc.Generate("ident-123", "user@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "ident-123", claims.Identifier)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewJWTService("test-secret", 24, nil)

	_, err := svc.Validate(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	issuer := NewJWTService("secret-a", 24, nil)
	verifier := NewJWTService("secret-b", 24, nil)

	token, err := issuer.Generate("ident-123", "user@example.com")
	require.NoError(t, err)

	_, err = verifier.Validate(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevokedTokenFailsValidation(t *testing.T) {
	denylist := newMemDenylist()
	svc := NewJWTService("test-secret", 24, denylist)

	token, err := svc.Generate("ident-123", "user@example.com")
	require.NoError(t, err)

	claims, err := svc.Validate(context.Background(), token)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(context.Background(), claims))

	_, err = svc.Validate(context.Background(), token)
	assert.ErrorIs(t, err, ErrRevokedToken)
}

func TestRevokeWithoutDenylistIsNoop(t *testing.T) {
	svc := NewJWTService("test-secret", 24, nil)

	token, err := svc.Generate("ident-123", "user@example.com")
	require.NoError(t, err)

	claims, err := svc.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.NoError(t, svc.Revoke(context.Background(), claims))

	// still valid, nothing records the revocation
	_, err = svc.Validate(context.Background(), token)
	assert.NoError(t, err)
}
