package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the required size of the shared sealing key.
	KeySize = 32 // AES-256

	// infoPrefix gives derived keys domain separation from other HKDF users.
	infoPrefix = "tenantdb-sealed-config-v1:"
)

// ValidateKey checks that key has exactly KeySize bytes.
func ValidateKey(key []byte) error {
	if len(key) != KeySize {
		return ErrInvalidKey
	}
	return nil
}

// ParseKey decodes a hex-encoded key, as stored in configuration.
// An empty string yields a nil key, which disables sealing.
func ParseKey(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Join(ErrInvalidKey, err)
	}
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	return key, nil
}

// GenerateKey creates a new random key suitable for sealing.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

// deriveKey binds the shared key to scope, so a token sealed for one tenant
// cannot be opened under another tenant's scope.
// The caller must clear the returned key with clearBytes.
func deriveKey(key []byte, scope string) ([]byte, error) {
	r := hkdf.New(sha256.New, key, nil, []byte(infoPrefix+scope))

	derived := make([]byte, KeySize)
	if _, err := io.ReadFull(r, derived); err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}
	return derived, nil
}

func clearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
