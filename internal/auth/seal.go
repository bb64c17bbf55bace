package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24

	// sealedPrefix tags every sealed value so a store that predates
	// encryption can be told apart from ciphertext.
	sealedPrefix = "v1:"
)

var ErrInvalidKey = errors.New("auth: encryption key must be 32 bytes (or 64 hex characters)")

// Sealer encrypts access tokens at rest with NaCl secretbox
// (XSalsa20-Poly1305). Each value gets a random nonce, stored in front of
// the ciphertext; the whole thing is base64url encoded behind a "v1:" tag.
type Sealer struct {
	key [keySize]byte
}

// NewSealer accepts a 64-character hex key or a raw 32-byte key.
func NewSealer(key string) (*Sealer, error) {
	raw := []byte(key)
	if len(key) == 2*keySize {
		decoded, err := hex.DecodeString(key)
		if err != nil {
			return nil, ErrInvalidKey
		}
		raw = decoded
	}
	if len(raw) != keySize {
		return nil, ErrInvalidKey
	}

	s := &Sealer{}
	copy(s.key[:], raw)
	return s, nil
}

func (s *Sealer) Seal(plaintext string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("auth: generating nonce: %w", err)
	}

	out := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key)
	return sealedPrefix + base64.RawURLEncoding.EncodeToString(out), nil
}

// IsSealed reports whether v was produced by Seal. Values written before
// encryption was enabled are plain tokens and report false.
func (s *Sealer) IsSealed(v string) bool {
	return strings.HasPrefix(v, sealedPrefix)
}

func (s *Sealer) Open(sealed string) (string, error) {
	if !s.IsSealed(sealed) {
		return "", errors.New("auth: value is not sealed")
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(sealed, sealedPrefix))
	if err != nil {
		return "", fmt.Errorf("auth: decoding sealed value: %w", err)
	}
	if len(raw) < nonceSize+secretbox.Overhead {
		return "", errors.New("auth: sealed value too short")
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])

	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", errors.New("auth: sealed value failed authentication")
	}
	return string(plain), nil
}
