package crypto

import (
	"fmt"

	"github.com/cloudflare/circl/kem/mlkem/mlkem768"
)

type mlkemScheme struct{}

var _mlkem768 = new(mlkemScheme)

// MLKEM768 returns the ML-KEM-768 (FIPS 203) scheme.
func MLKEM768() Scheme {
	return _mlkem768
}

func (mlkemScheme) Name() string { return SchemeMLKEM768 }

func (mlkemScheme) PublicKeySize() int  { return mlkem768.PublicKeySize }
func (mlkemScheme) PrivateKeySize() int { return mlkem768.PrivateKeySize }
func (mlkemScheme) CiphertextSize() int { return mlkem768.CiphertextSize }

func (mlkemScheme) GenerateKeypair() (pub, priv []byte, err error) {
	pk, sk, err := mlkem768.GenerateKeyPair(nil)
	if err != nil {
		return nil, nil, err
	}

	// MarshalBinary never fails for valid keys from GenerateKeyPair
	pubBytes, _ := pk.MarshalBinary()
	privBytes, _ := sk.MarshalBinary()
	return pubBytes, privBytes, nil
}

func (mlkemScheme) DeriveKeypair(seed []byte) (pub, priv []byte, err error) {
	if len(seed) != SeedSize {
		return nil, nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidSeedSize, len(seed), SeedSize)
	}

	pk, sk := mlkem768.NewKeyFromSeed(seed[:mlkem768.KeySeedSize])
	pubBytes, _ := pk.MarshalBinary()
	privBytes, _ := sk.MarshalBinary()
	return pubBytes, privBytes, nil
}

func (mlkemScheme) Encapsulate(pub []byte) (ciphertext, sharedKey []byte, err error) {
	if len(pub) != mlkem768.PublicKeySize {
		return nil, nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidPublicKeySize, len(pub), mlkem768.PublicKeySize)
	}

	var pk mlkem768.PublicKey
	if err := pk.Unpack(pub); err != nil {
		return nil, nil, fmt.Errorf("unmarshal public key: %w", err)
	}

	ciphertext = make([]byte, mlkem768.CiphertextSize)
	sharedKey = make([]byte, mlkem768.SharedKeySize)
	pk.EncapsulateTo(ciphertext, sharedKey, nil)
	return ciphertext, sharedKey, nil
}

func (mlkemScheme) Decapsulate(priv, ciphertext []byte) (sharedKey []byte, err error) {
	if len(priv) != mlkem768.PrivateKeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidPrivateKeySize, len(priv), mlkem768.PrivateKeySize)
	}
	if len(ciphertext) != mlkem768.CiphertextSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidCiphertextSize, len(ciphertext), mlkem768.CiphertextSize)
	}

	var sk mlkem768.PrivateKey
	if err := sk.Unpack(priv); err != nil {
		return nil, fmt.Errorf("unmarshal private key: %w", err)
	}

	sharedKey = make([]byte, mlkem768.SharedKeySize)
	sk.DecapsulateTo(sharedKey, ciphertext)
	return sharedKey, nil
}
