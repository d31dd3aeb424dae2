package crypto

import "errors"

var (
	// ErrInvalidKeySize is returned when the AES key size is invalid.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidSeedSize is returned when a KEM seed has the wrong length.
	ErrInvalidSeedSize = errors.New("invalid seed size")

	// ErrInvalidPublicKeySize is returned when a KEM public key has the
	// wrong length for its scheme.
	ErrInvalidPublicKeySize = errors.New("invalid public key size")

	// ErrInvalidPrivateKeySize is returned when a KEM private key has the
	// wrong length for its scheme.
	ErrInvalidPrivateKeySize = errors.New("invalid private key size")

	// ErrInvalidCiphertextSize is returned when a KEM ciphertext has the
	// wrong length for its scheme.
	ErrInvalidCiphertextSize = errors.New("invalid ciphertext size")

	// ErrDecryptionFailed is returned when AEAD decryption fails.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrDecapsulationFailed is returned when KEM decapsulation fails.
	ErrDecapsulationFailed = errors.New("decapsulation failed")

	// ErrTagMismatch is returned when the FEK transcript tag does not
	// verify. It indicates tampering or mismatched key material.
	ErrTagMismatch = errors.New("authentication tag mismatch")

	// ErrKeyTooShort is returned when OTP key material is shorter than
	// the plaintext it must cover.
	ErrKeyTooShort = errors.New("key material shorter than payload")

	// ErrUnknownScheme is returned for unregistered KEM scheme names.
	ErrUnknownScheme = errors.New("unknown KEM scheme")
)
