// Package adaptive seals byte blocks with an AEAD chosen for the host.
//
// AES-256-GCM is used where Go has hardware AES support (amd64, arm64),
// ChaCha20-Poly1305 everywhere else. Keys can be supplied directly or derived
// from an operator secret with HKDF-SHA256.
//
// Usage:
//
//	c, err := adaptive.FromSecret([]byte(secret), "minredis snapshot")
//	sealed, err := c.Seal(plaintext, aad)
//	plain, err := c.Open(sealed, aad)
package adaptive
