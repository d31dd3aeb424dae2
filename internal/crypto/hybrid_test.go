package crypto

import (
	"bytes"
	"errors"
	"testing"
)

func TestHybridHandshake_SessionKeySymmetry(t *testing.T) {
	for _, scheme := range allSchemes(t) {
		t.Run(scheme.Name(), func(t *testing.T) {
			// Responder advertises its public keys.
			classicalPub, classicalPriv, err := GenerateX25519()
			if err != nil {
				t.Fatal(err)
			}
			pqPub, pqPriv, err := scheme.GenerateKeypair()
			if err != nil {
				t.Fatal(err)
			}

			// Caller encapsulates.
			share, kemCiphertext, callerKey, err := HybridEncapsulate(scheme, classicalPub, pqPub)
			if err != nil {
				t.Fatalf("HybridEncapsulate() error = %v", err)
			}
			if len(callerKey) != SessionKeySize {
				t.Errorf("session key length = %d, want %d", len(callerKey), SessionKeySize)
			}

			// Responder decapsulates.
			responderKey, err := HybridDecapsulate(scheme, share, kemCiphertext, classicalPriv, pqPriv)
			if err != nil {
				t.Fatalf("HybridDecapsulate() error = %v", err)
			}

			if !bytes.Equal(callerKey, responderKey) {
				t.Error("caller and responder derived different session keys")
			}
		})
	}
}

func TestHybridHandshake_FreshKeysPerExchange(t *testing.T) {
	scheme := DefaultScheme()
	classicalPub, _, err := GenerateX25519()
	if err != nil {
		t.Fatal(err)
	}
	pqPub, _, err := scheme.GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}

	_, _, keyA, err := HybridEncapsulate(scheme, classicalPub, pqPub)
	if err != nil {
		t.Fatal(err)
	}
	_, _, keyB, err := HybridEncapsulate(scheme, classicalPub, pqPub)
	if err != nil {
		t.Fatal(err)
	}

	if bytes.Equal(keyA, keyB) {
		t.Error("two handshakes against the same keys produced the same session key")
	}
}

func TestHybridEncapsulate_MalformedKeys(t *testing.T) {
	scheme := DefaultScheme()
	classicalPub, _, err := GenerateX25519()
	if err != nil {
		t.Fatal(err)
	}
	pqPub, _, err := scheme.GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}

	if _, _, _, err := HybridEncapsulate(scheme, classicalPub[:16], pqPub); !errors.Is(err, ErrInvalidPublicKeySize) {
		t.Errorf("expected ErrInvalidPublicKeySize for short X25519 key, got %v", err)
	}
	if _, _, _, err := HybridEncapsulate(scheme, classicalPub, pqPub[:16]); !errors.Is(err, ErrInvalidPublicKeySize) {
		t.Errorf("expected ErrInvalidPublicKeySize for short KEM key, got %v", err)
	}
}

func TestHybridDecapsulate_WrongPrivateKey(t *testing.T) {
	scheme := DefaultScheme()
	classicalPub, classicalPriv, err := GenerateX25519()
	if err != nil {
		t.Fatal(err)
	}
	pqPub, _, err := scheme.GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}
	_, otherPQPriv, err := scheme.GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}

	share, kemCiphertext, callerKey, err := HybridEncapsulate(scheme, classicalPub, pqPub)
	if err != nil {
		t.Fatal(err)
	}

	// ML-KEM rejects implicitly, so the wrong private key yields a valid
	// looking but different session key.
	responderKey, err := HybridDecapsulate(scheme, share, kemCiphertext, classicalPriv, otherPQPriv)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(callerKey, responderKey) {
		t.Error("wrong private key reproduced the session key")
	}
}

func TestDeriveTransportKeys(t *testing.T) {
	sessionKey := make([]byte, SessionKeySize)
	for i := range sessionKey {
		sessionKey[i] = byte(i)
	}

	masterKey, masterSalt, err := DeriveTransportKeys(sessionKey, "call-1234")
	if err != nil {
		t.Fatalf("DeriveTransportKeys() error = %v", err)
	}
	if len(masterKey) != SRTPMasterKeySize {
		t.Errorf("master key length = %d, want %d", len(masterKey), SRTPMasterKeySize)
	}
	if len(masterSalt) != SRTPMasterSaltSize {
		t.Errorf("master salt length = %d, want %d", len(masterSalt), SRTPMasterSaltSize)
	}

	t.Run("deterministic", func(t *testing.T) {
		againKey, againSalt, err := DeriveTransportKeys(sessionKey, "call-1234")
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(masterKey, againKey) || !bytes.Equal(masterSalt, againSalt) {
			t.Error("same session key and id produced different transport keys")
		}
	})

	t.Run("session id bound", func(t *testing.T) {
		otherKey, otherSalt, err := DeriveTransportKeys(sessionKey, "call-5678")
		if err != nil {
			t.Fatal(err)
		}
		if bytes.Equal(masterKey, otherKey) || bytes.Equal(masterSalt, otherSalt) {
			t.Error("different session ids produced the same transport keys")
		}
	})
}
