package jwtx_test

import (
	"testing"
	"time"

	"github.com/croftbay/accounts/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	t.Parallel()

	signer := jwtx.Signer{Secret: []byte("test-secret"), Issuer: "accounts", TTL: time.Hour}
	verifier := jwtx.Verifier{Secret: []byte("test-secret"), Issuer: "accounts"}

	raw, err := signer.Sign("alice", []string{"ROLE_USER", "ROLE_ADMIN"})
	require.NoError(t, err)

	claims, err := verifier.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
	require.Equal(t, []string{"ROLE_USER", "ROLE_ADMIN"}, claims.Authorities())
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	signer := jwtx.Signer{Secret: []byte("test-secret"), Issuer: "accounts", TTL: time.Hour}
	verifier := jwtx.Verifier{Secret: []byte("other-secret"), Issuer: "accounts"}

	raw, err := signer.Sign("alice", nil)
	require.NoError(t, err)

	_, err = verifier.Verify(raw)
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	signer := jwtx.Signer{Secret: []byte("test-secret"), Issuer: "accounts", TTL: -time.Minute}
	verifier := jwtx.Verifier{Secret: []byte("test-secret"), Issuer: "accounts"}

	raw, err := signer.Sign("alice", nil)
	require.NoError(t, err)

	_, err = verifier.Verify(raw)
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	t.Parallel()

	signer := jwtx.Signer{Secret: []byte("test-secret"), Issuer: "someone-else", TTL: time.Hour}
	verifier := jwtx.Verifier{Secret: []byte("test-secret"), Issuer: "accounts"}

	raw, err := signer.Sign("alice", nil)
	require.NoError(t, err)

	_, err = verifier.Verify(raw)
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)
}
