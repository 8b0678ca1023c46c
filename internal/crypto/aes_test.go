// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestNewAESEncryptorRejectsBadKeySize(t *testing.T) {
	t.Parallel()

	for _, size := range []int{0, 16, 31, 33, 64} {
		_, err := NewAESEncryptor(make([]byte, size))
		assert.ErrorIs(t, err, ErrInvalidKeySize, "key size %d", size)
	}

	enc, err := NewAESEncryptor(testKey)
	require.NoError(t, err)
	require.NotNil(t, enc)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	t.Parallel()

	enc, err := NewAESEncryptor(testKey)
	require.NoError(t, err)

	for _, plaintext := range []string{"", "apikey-1234", "unicode: Gané é ø"} {
		sealed, err := enc.Encrypt(plaintext)
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, sealed)

		opened, err := enc.Decrypt(sealed)
		require.NoError(t, err)
		assert.Equal(t, plaintext, opened)
	}
}

func TestEncryptProducesUniqueCiphertexts(t *testing.T) {
	t.Parallel()

	enc, err := NewAESEncryptor(testKey)
	require.NoError(t, err)

	a, err := enc.Encrypt("same secret")
	require.NoError(t, err)
	b, err := enc.Encrypt("same secret")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestDecryptRejectsGarbage(t *testing.T) {
	t.Parallel()

	enc, err := NewAESEncryptor(testKey)
	require.NoError(t, err)

	_, err = enc.Decrypt("not base64!!")
	assert.Error(t, err)

	short := base64.StdEncoding.EncodeToString([]byte("tiny"))
	_, err = enc.Decrypt(short)
	assert.ErrorIs(t, err, ErrMalformedCiphertext)
}

func TestDecryptRejectsWrongKey(t *testing.T) {
	t.Parallel()

	enc, err := NewAESEncryptor(testKey)
	require.NoError(t, err)

	sealed, err := enc.Encrypt("secret")
	require.NoError(t, err)

	other, err := NewAESEncryptor([]byte("ffffffffffffffffffffffffffffffff"))
	require.NoError(t, err)

	_, err = other.Decrypt(sealed)
	assert.Error(t, err)
}

func TestGenerateSecureToken(t *testing.T) {
	t.Parallel()

	token, err := GenerateSecureToken(32)
	require.NoError(t, err)
	assert.Len(t, token, 64)

	again, err := GenerateSecureToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, token, again)
}
