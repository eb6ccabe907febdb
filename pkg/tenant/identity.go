package tenant

import (
	"errors"
	"fmt"
	"strings"
)

// MaxIdentityLength bounds the raw header value accepted as a tenant identity.
const MaxIdentityLength = 64

// Identity is a tenant's tax registration id (CNPJ).
// Raw keeps the caller's spelling; Key holds only its digits and is what the
// registry is keyed by, so "12.345.678/0001-99" and "12345678000199" share a pool.
type Identity struct {
	Raw string
	Key string
}

// ParseIdentity normalizes a raw tax id. It fails for empty or oversized
// input and for input that contains no digits at all.
func ParseIdentity(raw string) (Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Identity{}, errors.Join(ErrInvalidIdentity, errors.New("empty tax id"))
	}
	if len(raw) > MaxIdentityLength {
		return Identity{}, errors.Join(ErrInvalidIdentity, fmt.Errorf("tax id longer than %d bytes", MaxIdentityLength))
	}

	key := digitsOnly(raw)
	if key == "" {
		return Identity{}, errors.Join(ErrInvalidIdentity, fmt.Errorf("tax id %q has no digits", raw))
	}

	return Identity{Raw: raw, Key: key}, nil
}

// Candidates lists the spellings tried against the master directory:
// the raw value first, then the digits-only key when it differs.
func (id Identity) Candidates() []string {
	if id.Raw == "" || id.Raw == id.Key {
		return []string{id.Key}
	}
	return []string{id.Raw, id.Key}
}

func (id Identity) IsZero() bool {
	return id.Key == ""
}

func (id Identity) String() string {
	return id.Key
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}
