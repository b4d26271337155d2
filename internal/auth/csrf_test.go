package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCsrfGuard_DeriveAndVerify(t *testing.T) {
	t.Parallel()

	var g CsrfGuard
	secret, err := g.NewSecret()
	require.NoError(t, err)

	token, err := g.DeriveToken(secret)
	require.NoError(t, err)
	assert.NoError(t, g.VerifyToken(secret, token))
}

func TestCsrfGuard_FreshTokensAllVerify(t *testing.T) {
	t.Parallel()

	var g CsrfGuard
	secret, err := g.NewSecret()
	require.NoError(t, err)

	t1, err := g.DeriveToken(secret)
	require.NoError(t, err)
	t2, err := g.DeriveToken(secret)
	require.NoError(t, err)

	// salted per derivation, so tokens differ but both stay valid
	assert.NotEqual(t, t1, t2)
	assert.NoError(t, g.VerifyToken(secret, t1))
	assert.NoError(t, g.VerifyToken(secret, t2))
}

func TestCsrfGuard_RejectsOtherSecret(t *testing.T) {
	t.Parallel()

	var g CsrfGuard
	secret, err := g.NewSecret()
	require.NoError(t, err)
	other, err := g.NewSecret()
	require.NoError(t, err)

	token, err := g.DeriveToken(other)
	require.NoError(t, err)
	assert.ErrorIs(t, g.VerifyToken(secret, token), ErrCsrfMismatch)
}

func TestCsrfGuard_RejectsMalformedToken(t *testing.T) {
	t.Parallel()

	var g CsrfGuard
	secret, err := g.NewSecret()
	require.NoError(t, err)

	for _, tok := range []string{"", "nodot", ".", "salt.", ".digest"} {
		assert.ErrorIs(t, g.VerifyToken(secret, tok), ErrCsrfMismatch, "token %q", tok)
	}
}
