// Package cardcrypto encrypts card numbers with AES-GCM before they are
// persisted. Each encryption draws a fresh 12-byte nonce; ciphertext and
// nonce are stored base64-encoded in separate columns.
package cardcrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"payment-service/internal/apperr"
)

const nonceSize = 12

// Cipher encrypts and decrypts card numbers with a fixed symmetric key.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher builds a cipher from a base64-encoded AES key (16, 24 or 32
// bytes once decoded).
func NewCipher(base64Key string) (*Cipher, error) {
	key, err := base64.StdEncoding.DecodeString(base64Key)
	if err != nil {
		return nil, fmt.Errorf("decoding encryption key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("initializing AES cipher: %w", err)
	}

	aead, err := cipher.NewGCMWithNonceSize(block, nonceSize)
	if err != nil {
		return nil, fmt.Errorf("initializing GCM: %w", err)
	}

	return &Cipher{aead: aead}, nil
}

// Encrypt seals the plaintext and returns the base64 ciphertext and the
// base64 nonce used for it.
func (c *Cipher) Encrypt(plaintext string) (ciphertext, iv string, err error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", "", apperr.Wrap(apperr.CardEncryptionError, "generating nonce", err)
	}

	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), nil)

	return base64.StdEncoding.EncodeToString(sealed),
		base64.StdEncoding.EncodeToString(nonce),
		nil
}

// Decrypt reverses Encrypt. It fails if the ciphertext or nonce were
// tampered with.
func (c *Cipher) Decrypt(ciphertext, iv string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("decoding ciphertext: %w", err)
	}

	nonce, err := base64.StdEncoding.DecodeString(iv)
	if err != nil {
		return "", fmt.Errorf("decoding nonce: %w", err)
	}
	if len(nonce) != nonceSize {
		return "", fmt.Errorf("nonce must be %d bytes, got %d", nonceSize, len(nonce))
	}

	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("decrypting: %w", err)
	}

	return string(plaintext), nil
}
