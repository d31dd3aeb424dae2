package crypto

import (
	"crypto/rand"
	"fmt"

	"github.com/cloudflare/circl/dh/x25519"
)

// X25519KeySize is the size of X25519 public and private keys in bytes.
const X25519KeySize = x25519.Size

// GenerateX25519 produces a fresh X25519 keypair for the classical leg
// of the hybrid handshake.
func GenerateX25519() (pub, priv []byte, err error) {
	var secret, public x25519.Key
	if _, err := rand.Read(secret[:]); err != nil {
		return nil, nil, fmt.Errorf("generate X25519 key: %w", err)
	}
	x25519.KeyGen(&public, &secret)
	return public[:], secret[:], nil
}

// HybridEncapsulate is the caller-side handshake step: an ephemeral X25519
// exchange against the remote classical public key, a KEM encapsulation
// against the remote post-quantum public key, and a KDF over both shared
// secrets. The returned classical share and KEM ciphertext travel to the
// responder; the session key never does.
func HybridEncapsulate(scheme Scheme, remoteClassicalPub, remotePQPub []byte) (classicalShare, kemCiphertext, sessionKey []byte, err error) {
	if len(remoteClassicalPub) != X25519KeySize {
		return nil, nil, nil, fmt.Errorf("%w: X25519 public key got %d, want %d", ErrInvalidPublicKeySize, len(remoteClassicalPub), X25519KeySize)
	}

	ephPub, ephPriv, err := GenerateX25519()
	if err != nil {
		return nil, nil, nil, err
	}
	defer Zero(ephPriv)

	classicalShared, err := x25519Shared(ephPriv, remoteClassicalPub)
	if err != nil {
		return nil, nil, nil, err
	}
	defer Zero(classicalShared)

	kemCiphertext, pqShared, err := scheme.Encapsulate(remotePQPub)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encapsulate: %w", err)
	}
	defer Zero(pqShared)

	sessionKey, err = deriveSessionKey(pqShared, classicalShared)
	if err != nil {
		return nil, nil, nil, err
	}
	return ephPub, kemCiphertext, sessionKey, nil
}

// HybridDecapsulate is the responder-side mirror of HybridEncapsulate.
// It must produce the identical session key from the local private keys
// and the caller's public share and KEM ciphertext.
func HybridDecapsulate(scheme Scheme, remoteClassicalShare, kemCiphertext, localClassicalPriv, localPQPriv []byte) ([]byte, error) {
	if len(localClassicalPriv) != X25519KeySize {
		return nil, fmt.Errorf("%w: X25519 private key got %d, want %d", ErrInvalidPrivateKeySize, len(localClassicalPriv), X25519KeySize)
	}
	if len(remoteClassicalShare) != X25519KeySize {
		return nil, fmt.Errorf("%w: X25519 public share got %d, want %d", ErrInvalidPublicKeySize, len(remoteClassicalShare), X25519KeySize)
	}

	classicalShared, err := x25519Shared(localClassicalPriv, remoteClassicalShare)
	if err != nil {
		return nil, err
	}
	defer Zero(classicalShared)

	pqShared, err := scheme.Decapsulate(localPQPriv, kemCiphertext)
	if err != nil {
		return nil, fmt.Errorf("decapsulate: %w", err)
	}
	defer Zero(pqShared)

	return deriveSessionKey(pqShared, classicalShared)
}

// DeriveTransportKeys expands a session key into the SRTP master key and
// master salt, bound to the session id so transport keys cannot be
// replayed across sessions.
func DeriveTransportKeys(sessionKey []byte, sessionID string) (masterKey, masterSalt []byte, err error) {
	material, err := DeriveKey256(sessionKey, []byte(sessionID), []byte(KDFContextTransport), SRTPMasterKeySize+SRTPMasterSaltSize)
	if err != nil {
		return nil, nil, err
	}
	return material[:SRTPMasterKeySize], material[SRTPMasterKeySize:], nil
}

func x25519Shared(priv, pub []byte) ([]byte, error) {
	var shared, secret, public x25519.Key
	copy(secret[:], priv)
	copy(public[:], pub)
	if !x25519.Shared(&shared, &secret, &public) {
		return nil, fmt.Errorf("%w: low-order X25519 point", ErrDecapsulationFailed)
	}
	return shared[:], nil
}

// deriveSessionKey combines the post-quantum and classical shared secrets
// into one session key. Both handshake sides run the same derivation, so
// the secrets are concatenated in a fixed order.
func deriveSessionKey(pqShared, classicalShared []byte) ([]byte, error) {
	ikm := make([]byte, 0, len(pqShared)+len(classicalShared))
	ikm = append(ikm, pqShared...)
	ikm = append(ikm, classicalShared...)
	defer Zero(ikm)

	return DeriveKey256(ikm, []byte(KDFContextSession), []byte("hybrid final key"), SessionKeySize)
}
