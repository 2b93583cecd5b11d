// Package crypto encrypts sensitive text columns at rest.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

// sealedPrefix marks values written by FieldCipher. Values without it are
// read back unchanged so rows stored before encryption was enabled stay
// readable.
const sealedPrefix = "enc:v1:"

var (
	ErrEmptyKey         = errors.New("encryption key is empty")
	ErrInvalidKey       = errors.New("encryption key must be 32 bytes of base64")
	ErrCiphertextLength = errors.New("ciphertext too short")
)

// FieldCipher seals and opens string fields with AES-256-GCM.
type FieldCipher struct {
	aead cipher.AEAD
}

// NewFieldCipher builds a cipher from a base64-encoded 32-byte key.
func NewFieldCipher(encodedKey string) (*FieldCipher, error) {
	if encodedKey == "" {
		return nil, ErrEmptyKey
	}
	key, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil || len(key) != 32 {
		return nil, ErrInvalidKey
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &FieldCipher{aead: aead}, nil
}

// Seal encrypts plaintext under a fresh nonce. The empty string stays empty.
func (c *FieldCipher) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return sealedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal.
func (c *FieldCipher) Open(value string) (string, error) {
	encoded, ok := strings.CutPrefix(value, sealedPrefix)
	if !ok {
		return value, nil
	}
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode sealed field: %w", err)
	}
	nonceSize := c.aead.NonceSize()
	if len(sealed) < nonceSize {
		return "", ErrCiphertextLength
	}
	plaintext, err := c.aead.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("open sealed field: %w", err)
	}
	return string(plaintext), nil
}

// IsSealed reports whether value was written by Seal.
func IsSealed(value string) bool {
	return strings.HasPrefix(value, sealedPrefix)
}
