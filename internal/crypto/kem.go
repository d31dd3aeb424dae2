package crypto

import "fmt"

// Scheme names accepted by SchemeByName.
const (
	SchemeMLKEM768 = "ML-KEM-768"
	SchemeSNTRUP   = "sntrup4591761"
)

// Scheme describes the algorithms of a Key Encapsulation Mechanism used to
// protect File Encryption Keys and the post-quantum leg of the hybrid
// handshake. Implementations form a closed set.
type Scheme interface {
	Name() string

	// PublicKeySize, PrivateKeySize and CiphertextSize report the raw
	// byte lengths of the scheme's key and ciphertext encodings.
	PublicKeySize() int
	PrivateKeySize() int
	CiphertextSize() int

	// GenerateKeypair produces a fresh keypair from the system CSPRNG.
	GenerateKeypair() (pub, priv []byte, err error)

	// DeriveKeypair deterministically derives a keypair from a seed.
	// Seeds must be SeedSize bytes; the same seed always yields the
	// same keypair, so both holders of shared key material can
	// reconstruct the pair without a key-exchange round trip.
	DeriveKeypair(seed []byte) (pub, priv []byte, err error)

	// Encapsulate creates a shared key and a ciphertext carrying it to
	// the holder of the private key. The shared key is always
	// SharedKeySize bytes, suitable to key an AEAD.
	Encapsulate(pub []byte) (ciphertext, sharedKey []byte, err error)

	// Decapsulate recovers the shared key from the ciphertext.
	Decapsulate(priv, ciphertext []byte) (sharedKey []byte, err error)
}

// SchemeByName returns the Scheme instance for a cryptosystem name.
func SchemeByName(name string) (Scheme, error) {
	switch name {
	case SchemeMLKEM768:
		return MLKEM768(), nil
	case SchemeSNTRUP:
		return SNTRUP4591761(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, name)
	}
}

// DefaultScheme returns the scheme used when none is configured.
func DefaultScheme() Scheme {
	return MLKEM768()
}
