package crypto

import (
	"bytes"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
)

// FEKEncapsulation carries an encapsulated File Encryption Key. It is
// produced once per large-payload encryption and consumed exactly once
// to recover the FEK before the bulk payload is decrypted.
type FEKEncapsulation struct {
	// KEMCiphertext is the KEM ciphertext carrying the wrap secret.
	KEMCiphertext []byte
	// WrappedFEK is the FEK encrypted under the derived wrap key.
	WrappedFEK []byte
	// AuthTag authenticates the transcript (KEM ciphertext and wrapped FEK).
	AuthTag []byte
	// KEMAlgorithm names the scheme that produced the ciphertext.
	KEMAlgorithm string
	// Fingerprint identifies the derived KEM public key.
	Fingerprint []byte
}

// EncapsulateFEK performs the two-layer large-payload encryption: the
// payload is bulk-encrypted under a fresh random FEK, and the FEK is
// wrapped under a KEM keypair derived deterministically from keyMaterial.
// The receiving side, holding the same key material, reconstructs the
// matching keypair without a separate key-exchange round trip.
func EncapsulateFEK(scheme Scheme, payload, keyMaterial []byte) (bulk []byte, enc *FEKEncapsulation, err error) {
	fek := make([]byte, FEKSize)
	if _, err := rand.Read(fek); err != nil {
		return nil, nil, fmt.Errorf("generate FEK: %w", err)
	}
	defer Zero(fek)

	bulk, err = EncryptAES(fek, payload, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("bulk encrypt: %w", err)
	}

	pub, priv, err := deriveFEKKeypair(scheme, keyMaterial)
	if err != nil {
		return nil, nil, err
	}
	defer Zero(priv)

	kemCiphertext, sharedKey, err := scheme.Encapsulate(pub)
	if err != nil {
		return nil, nil, fmt.Errorf("encapsulate: %w", err)
	}
	defer Zero(sharedKey)

	wrapKey, tagKey, err := deriveFEKKeys(sharedKey, kemCiphertext)
	if err != nil {
		return nil, nil, err
	}
	defer Zero(wrapKey)
	defer Zero(tagKey)

	wrapped, err := EncryptAES(wrapKey, fek, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("wrap FEK: %w", err)
	}

	fingerprint := sha256.Sum256(pub)

	enc = &FEKEncapsulation{
		KEMCiphertext: kemCiphertext,
		WrappedFEK:    wrapped,
		AuthTag:       transcriptTag(tagKey, kemCiphertext, wrapped),
		KEMAlgorithm:  scheme.Name(),
		Fingerprint:   fingerprint[:FingerprintSize],
	}
	return bulk, enc, nil
}

// DecapsulateFEK re-derives the KEM keypair from keyMaterial, recovers the
// FEK, verifies the transcript tag, and decrypts the bulk ciphertext. Any
// mismatch fails hard; wrong bytes are never returned.
func DecapsulateFEK(scheme Scheme, bulk []byte, enc *FEKEncapsulation, keyMaterial []byte) ([]byte, error) {
	if enc == nil {
		return nil, fmt.Errorf("%w: missing FEK encapsulation", ErrDecryptionFailed)
	}
	if enc.KEMAlgorithm != scheme.Name() {
		return nil, fmt.Errorf("%w: envelope KEM %q, configured %q", ErrUnknownScheme, enc.KEMAlgorithm, scheme.Name())
	}

	pub, priv, err := deriveFEKKeypair(scheme, keyMaterial)
	if err != nil {
		return nil, err
	}
	defer Zero(priv)

	fingerprint := sha256.Sum256(pub)
	if len(enc.Fingerprint) != FingerprintSize || !bytes.Equal(enc.Fingerprint, fingerprint[:FingerprintSize]) {
		return nil, fmt.Errorf("%w: public key fingerprint mismatch", ErrTagMismatch)
	}

	sharedKey, err := scheme.Decapsulate(priv, enc.KEMCiphertext)
	if err != nil {
		return nil, fmt.Errorf("decapsulate: %w", err)
	}
	defer Zero(sharedKey)

	wrapKey, tagKey, err := deriveFEKKeys(sharedKey, enc.KEMCiphertext)
	if err != nil {
		return nil, err
	}
	defer Zero(wrapKey)
	defer Zero(tagKey)

	want := transcriptTag(tagKey, enc.KEMCiphertext, enc.WrappedFEK)
	if !hmac.Equal(enc.AuthTag, want) {
		return nil, ErrTagMismatch
	}

	fek, err := DecryptAES(wrapKey, enc.WrappedFEK, nil)
	if err != nil {
		return nil, fmt.Errorf("unwrap FEK: %w", err)
	}
	defer Zero(fek)

	payload, err := DecryptAES(fek, bulk, nil)
	if err != nil {
		return nil, fmt.Errorf("bulk decrypt: %w", err)
	}
	return payload, nil
}

// deriveFEKKeypair expands key material into a seed and derives the
// scheme keypair from it. The seed derivation is bound to the scheme
// name so switching schemes never reuses a seed.
func deriveFEKKeypair(scheme Scheme, keyMaterial []byte) (pub, priv []byte, err error) {
	seed, err := DeriveKey(keyMaterial, nil, []byte(KDFContextFEKSeed+":"+scheme.Name()), SeedSize)
	if err != nil {
		return nil, nil, err
	}
	defer Zero(seed)

	pub, priv, err = scheme.DeriveKeypair(seed)
	if err != nil {
		return nil, nil, fmt.Errorf("derive keypair: %w", err)
	}
	return pub, priv, nil
}

// deriveFEKKeys derives the wrap and tag keys from the KEM shared key.
// The salt is the hash of the KEM ciphertext, binding both keys to this
// particular encapsulation.
func deriveFEKKeys(sharedKey, kemCiphertext []byte) (wrapKey, tagKey []byte, err error) {
	saltHash := sha256.Sum256(kemCiphertext)

	wrapKey, err = DeriveKey(sharedKey, saltHash[:], []byte(KDFContextFEKWrap), AESKeySize)
	if err != nil {
		return nil, nil, err
	}
	tagKey, err = DeriveKey(sharedKey, saltHash[:], []byte(KDFContextFEKTag), AESKeySize)
	if err != nil {
		Zero(wrapKey)
		return nil, nil, err
	}
	return wrapKey, tagKey, nil
}

func transcriptTag(tagKey, kemCiphertext, wrapped []byte) []byte {
	mac := hmac.New(sha256.New, tagKey)
	mac.Write(kemCiphertext)
	mac.Write(wrapped)
	return mac.Sum(nil)
}
