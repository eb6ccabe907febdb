// Package secrets seals small payloads, such as tenant database credentials,
// into short-lived tokens that can travel in an HTTP header between
// cooperating services sharing one key.
//
// A per-scope key is derived from the shared key with HKDF-SHA-256
// (golang.org/x/crypto/hkdf); the scope is usually the tenant key, so a
// token minted for one tenant never opens for another. The payload is
// encrypted with AES-256-GCM and carries its own expiry.
//
// # Usage
//
//	key, _ := secrets.ParseKey(os.Getenv("TENANT_FORWARD_KEY"))
//
//	token, err := secrets.Seal(key, "12345678000199", payload, time.Minute)
//	if err != nil {
//		return err
//	}
//
//	payload, err = secrets.Open(key, "12345678000199", token)
//
// # Error Handling
//
// Open returns ErrInvalidToken for malformed input, ErrOpenFailed for a wrong
// key, wrong scope or tampered token, and ErrTokenExpired once the ttl passed.
package secrets
