package crypto

import (
	"crypto/rand"
	"fmt"

	"github.com/companyzero/sntrup4591761"
)

type sntrupScheme struct{}

var _sntrup = new(sntrupScheme)

// SNTRUP4591761 returns the Streamlined NTRU Prime 4591^761 scheme.
func SNTRUP4591761() Scheme {
	return _sntrup
}

func (sntrupScheme) Name() string { return SchemeSNTRUP }

func (sntrupScheme) PublicKeySize() int  { return sntrup4591761.PublicKeySize }
func (sntrupScheme) PrivateKeySize() int { return sntrup4591761.PrivateKeySize }
func (sntrupScheme) CiphertextSize() int { return sntrup4591761.CiphertextSize }

func (sntrupScheme) GenerateKeypair() (pub, priv []byte, err error) {
	pk, sk, err := sntrup4591761.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, err
	}
	return pk[:], sk[:], nil
}

func (sntrupScheme) DeriveKeypair(seed []byte) (pub, priv []byte, err error) {
	if len(seed) != SeedSize {
		return nil, nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidSeedSize, len(seed), SeedSize)
	}

	// The sntrup keygen consumes an arbitrary amount of randomness, so a
	// deterministic HKDF stream over the seed stands in for the CSPRNG.
	csprng := KDFReader(seed, nil, []byte("qukey sntrup4591761 keygen csprng"))
	pk, sk, err := sntrup4591761.GenerateKey(csprng)
	if err != nil {
		return nil, nil, err
	}
	return pk[:], sk[:], nil
}

func (sntrupScheme) Encapsulate(pub []byte) (ciphertext, sharedKey []byte, err error) {
	if len(pub) != sntrup4591761.PublicKeySize {
		return nil, nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidPublicKeySize, len(pub), sntrup4591761.PublicKeySize)
	}

	ct, key, err := sntrup4591761.Encapsulate(rand.Reader, (*sntrup4591761.PublicKey)(pub))
	if err != nil {
		return nil, nil, err
	}
	return ct[:], key[:], nil
}

func (sntrupScheme) Decapsulate(priv, ciphertext []byte) (sharedKey []byte, err error) {
	if len(priv) != sntrup4591761.PrivateKeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidPrivateKeySize, len(priv), sntrup4591761.PrivateKeySize)
	}
	if len(ciphertext) != sntrup4591761.CiphertextSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidCiphertextSize, len(ciphertext), sntrup4591761.CiphertextSize)
	}

	key, ok := sntrup4591761.Decapsulate((*sntrup4591761.Ciphertext)(ciphertext), (*sntrup4591761.PrivateKey)(priv))
	if ok != 1 {
		return nil, ErrDecapsulationFailed
	}
	return key[:], nil
}
