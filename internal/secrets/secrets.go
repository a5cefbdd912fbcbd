// Package secrets implements the symmetric credential encryption used by the
// wallet store. Ciphertexts are self-contained: salt and nonce travel with
// the sealed payload, so only the passphrase is needed to recover the
// plaintext. The passphrase itself is supplied at call time and never
// persisted.
package secrets

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

const (
	saltLen    = 16
	scryptN    = 1 << 15
	scryptR    = 8
	scryptP    = 1
	scryptKeyL = chacha20poly1305.KeySize
)

// Encrypt seals plaintext under a passphrase-derived key and returns
// base64(salt | nonce | ciphertext).
func Encrypt(plaintext, passphrase string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(err, "failed to generate salt")
	}

	aead, err := deriveAEAD(passphrase, salt)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", errors.Wrap(err, "failed to generate nonce")
	}

	sealed := aead.Seal(nil, nonce, []byte(plaintext), nil)
	payload := append(append(salt, nonce...), sealed...)
	return base64.StdEncoding.EncodeToString(payload), nil
}

// Decrypt reverses Encrypt. A wrong passphrase or tampered payload fails
// authentication and returns an error.
func Decrypt(ciphertext, passphrase string) (string, error) {
	payload, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errors.Wrap(err, "ciphertext is not valid base64")
	}
	if len(payload) < saltLen+chacha20poly1305.NonceSize {
		return "", errors.New("ciphertext too short")
	}

	salt := payload[:saltLen]
	aead, err := deriveAEAD(passphrase, salt)
	if err != nil {
		return "", err
	}

	nonce := payload[saltLen : saltLen+aead.NonceSize()]
	sealed := payload[saltLen+aead.NonceSize():]

	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", errors.Wrap(err, "decryption failed")
	}
	return string(plain), nil
}

func deriveAEAD(passphrase string, salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, scryptKeyL)
	if err != nil {
		return nil, errors.Wrap(err, "key derivation failed")
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to init cipher")
	}
	return aead, nil
}
