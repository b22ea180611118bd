// internal/auth/joincode_test.go
package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinCodeRoundTrip(t *testing.T) {
	hash, err := HashJoinCode("salamander42")
	require.NoError(t, err)

	ok, err := VerifyJoinCode("salamander42", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyJoinCode("salamander43", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestJoinCodeHashesAreSalted(t *testing.T) {
	h1, err := HashJoinCode("same-code")
	require.NoError(t, err)
	h2, err := HashJoinCode("same-code")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestVerifyJoinCodeRejectsMalformedHash(t *testing.T) {
	_, err := VerifyJoinCode("anything", "not-an-encoded-hash")
	assert.ErrorIs(t, err, ErrInvalidHash)
}
