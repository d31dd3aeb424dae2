package crypto

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DeriveKey derives a key of the requested length using HKDF-SHA-512.
// An empty salt is replaced with a zero-filled block, per RFC 5869.
func DeriveKey(secret, salt, info []byte, length int) ([]byte, error) {
	return deriveKey(sha512.New, secret, salt, info, length)
}

// DeriveKey256 derives a key using HKDF-SHA-256. It is used where the
// protocol fixes SHA-256 as the expansion hash (hybrid session and
// transport keys).
func DeriveKey256(secret, salt, info []byte, length int) ([]byte, error) {
	return deriveKey(sha256.New, secret, salt, info, length)
}

// KDFReader returns an HKDF-SHA-512 stream over secret, suitable as a
// deterministic randomness source for seed-based key generation.
func KDFReader(secret, salt, info []byte) io.Reader {
	if len(salt) == 0 {
		salt = make([]byte, sha512.Size)
	}
	return hkdf.New(sha512.New, secret, salt, info)
}

func deriveKey(h func() hash.Hash, secret, salt, info []byte, length int) ([]byte, error) {
	if len(salt) == 0 {
		salt = make([]byte, h().Size())
	}

	reader := hkdf.New(h, secret, salt, info)
	key := make([]byte, length)

	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	return key, nil
}
