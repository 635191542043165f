package adaptive

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// KeySize is the key length used by both algorithms.
const KeySize = 32

// MinSecretLength is the shortest secret FromSecret accepts.
const MinSecretLength = 16

// Algorithm names an AEAD construction.
type Algorithm string

const (
	AESGCM   Algorithm = "aes-gcm"
	ChaCha20 Algorithm = "chacha20-poly1305"
)

var (
	ErrKeySize         = errors.New("adaptive: key must be 32 bytes")
	ErrSecretTooShort  = errors.New("adaptive: secret must be at least 16 bytes")
	ErrCiphertextShort = errors.New("adaptive: ciphertext too short")
)

// Cipher performs authenticated encryption with a random nonce prepended to
// every sealed block. It is safe for concurrent use.
type Cipher struct {
	algo Algorithm
	aead cipher.AEAD
}

// New returns a cipher for key using the algorithm preferred on this host.
func New(key []byte) (*Cipher, error) {
	return NewWithAlgorithm(key, Preferred())
}

// NewWithAlgorithm returns a cipher for key using algo.
func NewWithAlgorithm(key []byte, algo Algorithm) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrKeySize
	}

	var (
		aead cipher.AEAD
		err  error
	)
	switch algo {
	case AESGCM:
		var block cipher.Block
		block, err = aes.NewCipher(key)
		if err == nil {
			aead, err = cipher.NewGCM(block)
		}
	case ChaCha20:
		aead, err = chacha20poly1305.New(key)
	default:
		return nil, fmt.Errorf("adaptive: unknown algorithm %q", algo)
	}
	if err != nil {
		return nil, err
	}

	return &Cipher{algo: algo, aead: aead}, nil
}

// FromSecret derives a key from secret with HKDF-SHA256, using info to
// separate keys for different purposes.
func FromSecret(secret []byte, info string) (*Cipher, error) {
	key, err := DeriveKey(secret, info)
	if err != nil {
		return nil, err
	}
	return New(key)
}

// DeriveKey derives a KeySize key from secret.
func DeriveKey(secret []byte, info string) ([]byte, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("adaptive: derive key: %w", err)
	}
	return key, nil
}

// Preferred returns the algorithm New picks on this host.
func Preferred() Algorithm {
	switch runtime.GOARCH {
	case "amd64", "arm64":
		return AESGCM
	default:
		return ChaCha20
	}
}

// Algorithm returns the construction in use.
func (c *Cipher) Algorithm() Algorithm {
	return c.algo
}

// Overhead returns the number of bytes Seal adds to a plaintext.
func (c *Cipher) Overhead() int {
	return c.aead.NonceSize() + c.aead.Overhead()
}

// Seal encrypts and authenticates plaintext and aad.
func (c *Cipher) Seal(plaintext, aad []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return c.aead.Seal(nonce, nonce, plaintext, aad), nil
}

// Open authenticates and decrypts a block produced by Seal.
func (c *Cipher) Open(sealed, aad []byte) ([]byte, error) {
	ns := c.aead.NonceSize()
	if len(sealed) < ns+c.aead.Overhead() {
		return nil, ErrCiphertextShort
	}
	return c.aead.Open(nil, sealed[:ns], sealed[ns:], aad)
}
