package secrets

import "errors"

var (
	ErrInvalidKey          = errors.New("invalid sealing key: must be 32 bytes")
	ErrKeyDerivationFailed = errors.New("key derivation failed")
	ErrSealFailed          = errors.New("seal failed")
	ErrOpenFailed          = errors.New("open failed")
	ErrInvalidToken        = errors.New("invalid sealed token format")
	ErrTokenExpired        = errors.New("sealed token expired")
)
