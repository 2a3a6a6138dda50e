package crypt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vperfumes/tracker/config"
	"github.com/vperfumes/tracker/pkg/crypt"
)

func withKey(t *testing.T) {
	t.Helper()
	config.Set("APP_KEY", "test-key")
	t.Cleanup(func() { config.Set("APP_KEY", "") })
}

func TestRoundTrip(t *testing.T) {
	withKey(t)

	enc, err := crypt.EncryptBytes([]byte(`[{"name":"access_token","value":"abc"}]`))
	require.NoError(t, err)

	plain, err := crypt.DecryptBytes(enc)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"access_token","value":"abc"}]`, string(plain))
}

func TestNonceVaries(t *testing.T) {
	withKey(t)

	a, err := crypt.EncryptBytes([]byte("same"))
	require.NoError(t, err)
	b, err := crypt.EncryptBytes([]byte("same"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestTamperedCiphertext(t *testing.T) {
	withKey(t)

	enc, err := crypt.EncryptBytes([]byte("secret"))
	require.NoError(t, err)

	_, err = crypt.DecryptBytes("AAAA" + enc[4:])
	assert.ErrorIs(t, err, crypt.ErrDecrypt)
}

func TestDisabledWithoutKey(t *testing.T) {
	config.Set("APP_KEY", "")
	assert.False(t, crypt.Enabled())

	_, err := crypt.EncryptBytes([]byte("x"))
	assert.Error(t, err)
}
