package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecrypt(t *testing.T) {
	t.Run("roundtrip", func(t *testing.T) {
		ciphertext, err := Encrypt("very secret api key", "passphrase")
		require.NoError(t, err)
		assert.NotContains(t, ciphertext, "very secret")

		plaintext, err := Decrypt(ciphertext, "passphrase")
		require.NoError(t, err)
		assert.Equal(t, "very secret api key", plaintext)
	})

	t.Run("distinct ciphertexts for the same input", func(t *testing.T) {
		a, err := Encrypt("payload", "passphrase")
		require.NoError(t, err)
		b, err := Encrypt("payload", "passphrase")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("wrong passphrase fails", func(t *testing.T) {
		ciphertext, err := Encrypt("payload", "passphrase")
		require.NoError(t, err)

		_, err = Decrypt(ciphertext, "not the passphrase")
		assert.Error(t, err)
	})

	t.Run("garbage input fails", func(t *testing.T) {
		_, err := Decrypt("not base64 at all!!!", "passphrase")
		assert.Error(t, err)

		_, err = Decrypt("dG9vc2hvcnQ=", "passphrase")
		assert.Error(t, err)
	})
}
