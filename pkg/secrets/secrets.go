package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"io"
	"time"
)

// expirySize is the length of the big-endian unix expiry prefixed to the plaintext.
const expirySize = 8

// now is replaced in tests.
var now = time.Now

// Seal encrypts data for scope and returns a URL-safe token that stops
// opening after ttl. Token layout: base64url(nonce | AES-GCM(expiry | data)),
// with scope as additional authenticated data.
func Seal(key []byte, scope string, data []byte, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", errors.Join(ErrSealFailed, errors.New("ttl must be positive"))
	}

	aead, err := newAEAD(key, scope)
	if err != nil {
		return "", errors.Join(ErrSealFailed, err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Join(ErrSealFailed, err)
	}

	plaintext := make([]byte, expirySize+len(data))
	binary.BigEndian.PutUint64(plaintext, uint64(now().Add(ttl).Unix()))
	copy(plaintext[expirySize:], data)

	sealed := aead.Seal(nonce, nonce, plaintext, []byte(scope))
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal. It fails when the token was sealed for another scope,
// was tampered with, or has expired.
func Open(key []byte, scope string, token string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	aead, err := newAEAD(key, scope)
	if err != nil {
		return nil, errors.Join(ErrOpenFailed, err)
	}

	nonceSize := aead.NonceSize()
	if len(raw) < nonceSize+aead.Overhead() {
		return nil, ErrInvalidToken
	}

	plaintext, err := aead.Open(nil, raw[:nonceSize], raw[nonceSize:], []byte(scope))
	if err != nil {
		return nil, errors.Join(ErrOpenFailed, err)
	}
	if len(plaintext) < expirySize {
		return nil, ErrInvalidToken
	}

	expires := time.Unix(int64(binary.BigEndian.Uint64(plaintext)), 0)
	if !now().Before(expires) {
		return nil, ErrTokenExpired
	}

	return plaintext[expirySize:], nil
}

func newAEAD(key []byte, scope string) (cipher.AEAD, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	derived, err := deriveKey(key, scope)
	if err != nil {
		return nil, err
	}
	defer clearBytes(derived)

	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
