package apikey

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

func TestGenerateParseVerify_RoundTrip(t *testing.T) {
	svc := NewService(bcrypt.MinCost)

	plaintext, keyID, hash, err := svc.Generate()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(plaintext, "cgk_"))
	assert.NotContains(t, hash, keyID)

	parsedID, secret, err := svc.Parse(plaintext)
	require.NoError(t, err)
	assert.Equal(t, keyID, parsedID)

	assert.True(t, svc.Verify(secret, hash))
	assert.False(t, svc.Verify("wrong-secret", hash))
}

func TestGenerate_KeysAreUnique(t *testing.T) {
	svc := NewService(bcrypt.MinCost)

	a, _, _, err := svc.Generate()
	require.NoError(t, err)
	b, _, _, err := svc.Generate()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestParse_Malformed(t *testing.T) {
	svc := NewService(bcrypt.MinCost)

	for _, key := range []string{
		"",
		"cgk",
		"cgk_onlyid",
		"cgk__secret",
		"cgk_id_",
		"wrong_id_secret",
		"cgk_id_secret_extra",
	} {
		_, _, err := svc.Parse(key)
		assert.Error(t, err, "key %q should not parse", key)
	}
}

// The stored hash must not reveal the secret half of the key.
func TestHashIsOneWay(t *testing.T) {
	svc := NewService(bcrypt.MinCost)

	plaintext, _, hash, err := svc.Generate()
	require.NoError(t, err)

	_, secret, err := svc.Parse(plaintext)
	require.NoError(t, err)
	assert.NotContains(t, hash, secret)
}
