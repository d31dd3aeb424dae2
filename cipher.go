package qukey

import (
	"fmt"
	"time"

	"github.com/qukey/engine-go/internal/crypto"
)

// Encrypt encrypts payload at the given security level using the default
// KEM scheme for any FEK encapsulation. It validates that the key
// material satisfies the level's policy before touching the payload.
//
// Encryption is a pure function over its inputs; the key material is not
// retained and callers remain responsible for zeroing it.
func Encrypt(payload []byte, km *KeyMaterial, level SecurityLevel) (*EncryptedEnvelope, error) {
	return encrypt(crypto.DefaultScheme(), payload, km, level)
}

// Decrypt reverses Encrypt. Decrypting with the same key material that
// produced the envelope reproduces the original payload exactly;
// mismatched key material fails with a CryptoError, never silently
// returning wrong bytes.
func Decrypt(env *EncryptedEnvelope, km *KeyMaterial) ([]byte, error) {
	return decrypt(env, km)
}

func encrypt(scheme crypto.Scheme, payload []byte, km *KeyMaterial, level SecurityLevel) (*EncryptedEnvelope, error) {
	requiredBits, err := RequiredKeyBits(level, len(payload))
	if err != nil {
		return nil, err
	}
	if err := checkKeyMaterial(km, level, requiredBits); err != nil {
		return nil, err
	}

	env := &EncryptedEnvelope{
		SecurityLevel:   level,
		PlaintextLength: len(payload),
		Timestamp:       time.Now().UTC(),
	}

	switch level {
	case LevelL1:
		ct, err := crypto.XORKeystream(payload, km.Bytes)
		if err != nil {
			return nil, wrapCryptoError("otp", err)
		}
		env.Algorithm = AlgorithmOTP
		env.Ciphertext = ct

	case LevelL2:
		ct, err := sealAEAD(km.Bytes, payload, crypto.KDFContextL2)
		if err != nil {
			return nil, wrapCryptoError("aead", err)
		}
		env.Algorithm = AlgorithmAES
		env.Ciphertext = ct

	case LevelL3:
		if UsesFEK(level, len(payload)) {
			bulk, enc, err := crypto.EncapsulateFEK(scheme, payload, km.Bytes)
			if err != nil {
				return nil, wrapCryptoError("fek", err)
			}
			env.Algorithm = AlgorithmPQCFEK
			env.Ciphertext = bulk
			env.FEKUsed = true
			env.EncapsulatedFEK = &FEKEncapsulation{
				KEMCiphertext:        enc.KEMCiphertext,
				WrappedFEK:           enc.WrappedFEK,
				AuthTag:              enc.AuthTag,
				KEMAlgorithm:         enc.KEMAlgorithm,
				PublicKeyFingerprint: enc.Fingerprint,
			}
		} else {
			ct, err := sealAEAD(km.Bytes, payload, crypto.KDFContextL3)
			if err != nil {
				return nil, wrapCryptoError("aead", err)
			}
			env.Algorithm = AlgorithmPQC
			env.Ciphertext = ct
		}

	case LevelL4:
		// Transport-only: the payload passes through unmodified but is
		// still wrapped for uniform handling upstream.
		env.Algorithm = AlgorithmTransport
		env.Ciphertext = append([]byte(nil), payload...)

	default:
		return nil, &PolicyViolationError{Level: level, Reason: "unknown security level"}
	}

	return env, nil
}

func decrypt(env *EncryptedEnvelope, km *KeyMaterial) ([]byte, error) {
	if env == nil {
		return nil, &CryptoError{Stage: "envelope", Err: fmt.Errorf("nil envelope")}
	}
	if !env.SecurityLevel.Valid() {
		return nil, &CryptoError{Stage: "envelope", Err: fmt.Errorf("invalid security level %d", int(env.SecurityLevel))}
	}

	requiredBits, err := RequiredKeyBits(env.SecurityLevel, env.PlaintextLength)
	if err != nil {
		return nil, err
	}
	if err := checkKeyMaterial(km, env.SecurityLevel, requiredBits); err != nil {
		return nil, err
	}

	var payload []byte
	switch env.SecurityLevel {
	case LevelL1:
		if env.Algorithm != AlgorithmOTP {
			return nil, algorithmMismatch(env)
		}
		if len(env.Ciphertext) != env.PlaintextLength {
			return nil, &CryptoError{Stage: "otp", Err: fmt.Errorf("ciphertext length %d does not match plaintext length %d", len(env.Ciphertext), env.PlaintextLength)}
		}
		payload, err = crypto.XORKeystream(env.Ciphertext, km.Bytes)
		if err != nil {
			return nil, wrapCryptoError("otp", err)
		}

	case LevelL2:
		if env.Algorithm != AlgorithmAES {
			return nil, algorithmMismatch(env)
		}
		payload, err = openAEAD(km.Bytes, env.Ciphertext, crypto.KDFContextL2)
		if err != nil {
			return nil, wrapCryptoError("aead", err)
		}

	case LevelL3:
		switch env.Algorithm {
		case AlgorithmPQC:
			if env.FEKUsed {
				return nil, algorithmMismatch(env)
			}
			payload, err = openAEAD(km.Bytes, env.Ciphertext, crypto.KDFContextL3)
			if err != nil {
				return nil, wrapCryptoError("aead", err)
			}
		case AlgorithmPQCFEK:
			if !env.FEKUsed || env.EncapsulatedFEK == nil {
				return nil, algorithmMismatch(env)
			}
			scheme, schemeErr := crypto.SchemeByName(env.EncapsulatedFEK.KEMAlgorithm)
			if schemeErr != nil {
				return nil, wrapCryptoError("fek", schemeErr)
			}
			payload, err = crypto.DecapsulateFEK(scheme, env.Ciphertext, &crypto.FEKEncapsulation{
				KEMCiphertext: env.EncapsulatedFEK.KEMCiphertext,
				WrappedFEK:    env.EncapsulatedFEK.WrappedFEK,
				AuthTag:       env.EncapsulatedFEK.AuthTag,
				KEMAlgorithm:  env.EncapsulatedFEK.KEMAlgorithm,
				Fingerprint:   env.EncapsulatedFEK.PublicKeyFingerprint,
			}, km.Bytes)
			if err != nil {
				return nil, wrapCryptoError("fek", err)
			}
		default:
			return nil, algorithmMismatch(env)
		}

	case LevelL4:
		if env.Algorithm != AlgorithmTransport {
			return nil, algorithmMismatch(env)
		}
		payload = append([]byte(nil), env.Ciphertext...)
	}

	if len(payload) != env.PlaintextLength {
		return nil, &CryptoError{Stage: "envelope", Err: fmt.Errorf("plaintext length %d does not match declared %d", len(payload), env.PlaintextLength)}
	}
	return payload, nil
}

// checkKeyMaterial validates availability and length of key material for
// a level. L4 needs none.
func checkKeyMaterial(km *KeyMaterial, level SecurityLevel, requiredBits int) error {
	if requiredBits == 0 {
		return nil
	}
	if km == nil {
		return &PolicyViolationError{Level: level, Reason: "key material is required"}
	}
	if len(km.Bytes)*8 < requiredBits {
		return &PolicyViolationError{
			Level:  level,
			Reason: fmt.Sprintf("key material too short: have %d bits, need %d", len(km.Bytes)*8, requiredBits),
		}
	}
	return nil
}

// sealAEAD derives the symmetric key for a level and encrypts.
func sealAEAD(keyMaterial, payload []byte, kdfContext string) ([]byte, error) {
	key, err := crypto.DeriveKey(keyMaterial, nil, []byte(kdfContext), crypto.AESKeySize)
	if err != nil {
		return nil, err
	}
	defer crypto.Zero(key)
	return crypto.EncryptAES(key, payload, nil)
}

func openAEAD(keyMaterial, ciphertext []byte, kdfContext string) ([]byte, error) {
	key, err := crypto.DeriveKey(keyMaterial, nil, []byte(kdfContext), crypto.AESKeySize)
	if err != nil {
		return nil, err
	}
	defer crypto.Zero(key)
	return crypto.DecryptAES(key, ciphertext, nil)
}

func algorithmMismatch(env *EncryptedEnvelope) error {
	return &CryptoError{
		Stage: "envelope",
		Err:   fmt.Errorf("algorithm %q inconsistent with level %s", env.Algorithm, env.SecurityLevel),
	}
}
