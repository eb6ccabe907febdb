package secrets_test

import (
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantdb/pkg/secrets"
)

func TestSealOpen(t *testing.T) {
	key, err := secrets.GenerateKey()
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty payload", []byte{}},
		{"json config", []byte(`{"host":"db1","database":"acme","schema":"public","user":"app","password":"s3cr3t","port":5432}`)},
		{"unicode", []byte("Olá, São Paulo")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := secrets.Seal(key, "12345678000199", tt.data, time.Minute)
			require.NoError(t, err)
			assert.NotContains(t, token, "s3cr3t")

			opened, err := secrets.Open(key, "12345678000199", token)
			require.NoError(t, err)
			assert.Equal(t, tt.data, opened)
		})
	}
}

func TestOpen_Failures(t *testing.T) {
	key, err := secrets.GenerateKey()
	require.NoError(t, err)
	otherKey, err := secrets.GenerateKey()
	require.NoError(t, err)

	token, err := secrets.Seal(key, "111", []byte("payload"), time.Minute)
	require.NoError(t, err)

	t.Run("wrong scope", func(t *testing.T) {
		_, err := secrets.Open(key, "222", token)
		assert.ErrorIs(t, err, secrets.ErrOpenFailed)
	})

	t.Run("wrong key", func(t *testing.T) {
		_, err := secrets.Open(otherKey, "111", token)
		assert.ErrorIs(t, err, secrets.ErrOpenFailed)
	})

	t.Run("tampered token", func(t *testing.T) {
		b := []byte(token)
		if b[10] == 'A' {
			b[10] = 'B'
		} else {
			b[10] = 'A'
		}
		_, err := secrets.Open(key, "111", string(b))
		assert.ErrorIs(t, err, secrets.ErrOpenFailed)
	})

	t.Run("not base64", func(t *testing.T) {
		_, err := secrets.Open(key, "111", "%%%")
		assert.ErrorIs(t, err, secrets.ErrInvalidToken)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := secrets.Open(key, "111", "AAAA")
		assert.ErrorIs(t, err, secrets.ErrInvalidToken)
	})

	t.Run("invalid key size", func(t *testing.T) {
		_, err := secrets.Seal([]byte("short"), "111", []byte("x"), time.Minute)
		assert.ErrorIs(t, err, secrets.ErrInvalidKey)
	})

	t.Run("non-positive ttl", func(t *testing.T) {
		_, err := secrets.Seal(key, "111", []byte("x"), 0)
		assert.ErrorIs(t, err, secrets.ErrSealFailed)
	})
}

func TestOpen_Expired(t *testing.T) {
	key, err := secrets.GenerateKey()
	require.NoError(t, err)

	token, err := secrets.Seal(key, "111", []byte("payload"), time.Minute)
	require.NoError(t, err)

	restore := secrets.SetNow(func() time.Time { return time.Now().Add(2 * time.Minute) })
	defer restore()

	_, err = secrets.Open(key, "111", token)
	assert.ErrorIs(t, err, secrets.ErrTokenExpired)
}

func TestParseKey(t *testing.T) {
	t.Parallel()

	key, err := secrets.ParseKey("")
	require.NoError(t, err)
	assert.Nil(t, key)

	valid := strings.Repeat("ab", secrets.KeySize)
	key, err = secrets.ParseKey(valid)
	require.NoError(t, err)
	assert.Equal(t, valid, hex.EncodeToString(key))

	_, err = secrets.ParseKey("zz")
	assert.ErrorIs(t, err, secrets.ErrInvalidKey)

	_, err = secrets.ParseKey("abcd")
	assert.ErrorIs(t, err, secrets.ErrInvalidKey)
}
