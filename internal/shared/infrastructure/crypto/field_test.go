package crypto

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(seed byte) string {
	key := make([]byte, 32)
	for i := range key {
		key[i] = seed + byte(i)
	}
	return base64.StdEncoding.EncodeToString(key)
}

func TestNewFieldCipher(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{name: "valid", key: testKey(0)},
		{name: "empty", key: "", wantErr: ErrEmptyKey},
		{name: "not base64", key: "not-valid-base64!!!", wantErr: ErrInvalidKey},
		{name: "short", key: base64.StdEncoding.EncodeToString(make([]byte, 16)), wantErr: ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewFieldCipher(tt.key)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, c)
		})
	}
}

func TestFieldCipher_SealOpen(t *testing.T) {
	c, err := NewFieldCipher(testKey(0))
	require.NoError(t, err)

	sealed, err := c.Seal("allergic to penicillin")
	require.NoError(t, err)
	assert.True(t, IsSealed(sealed))
	assert.NotContains(t, sealed, "penicillin")

	opened, err := c.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "allergic to penicillin", opened)
}

func TestFieldCipher_FreshNonce(t *testing.T) {
	c, err := NewFieldCipher(testKey(0))
	require.NoError(t, err)

	a, err := c.Seal("same")
	require.NoError(t, err)
	b, err := c.Seal("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestFieldCipher_EmptyAndPlaintext(t *testing.T) {
	c, err := NewFieldCipher(testKey(0))
	require.NoError(t, err)

	sealed, err := c.Seal("")
	require.NoError(t, err)
	assert.Empty(t, sealed)

	opened, err := c.Open("written before encryption")
	require.NoError(t, err)
	assert.Equal(t, "written before encryption", opened)
}

func TestFieldCipher_OpenFailures(t *testing.T) {
	c, err := NewFieldCipher(testKey(0))
	require.NoError(t, err)
	other, err := NewFieldCipher(testKey(7))
	require.NoError(t, err)

	sealed, err := c.Seal("notes")
	require.NoError(t, err)

	t.Run("wrong key", func(t *testing.T) {
		_, err := other.Open(sealed)
		assert.ErrorContains(t, err, "open sealed field")
	})

	t.Run("tampered", func(t *testing.T) {
		raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(sealed, sealedPrefix))
		require.NoError(t, err)
		raw[len(raw)-1] ^= 0xff
		_, err = c.Open(sealedPrefix + base64.StdEncoding.EncodeToString(raw))
		assert.Error(t, err)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := c.Open(sealedPrefix + base64.StdEncoding.EncodeToString([]byte{1, 2, 3}))
		assert.ErrorIs(t, err, ErrCiphertextLength)
	})

	t.Run("bad base64", func(t *testing.T) {
		_, err := c.Open(sealedPrefix + "%%%")
		assert.ErrorContains(t, err, "decode sealed field")
	})
}
