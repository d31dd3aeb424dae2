package crypto

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"
)

func randomKeyMaterial(t *testing.T) []byte {
	t.Helper()
	km := make([]byte, 64)
	if _, err := rand.Read(km); err != nil {
		t.Fatal(err)
	}
	return km
}

func TestEncapsulateFEK_RoundTrip(t *testing.T) {
	payloads := []struct {
		name string
		size int
	}{
		{"small", 100},
		{"2MiB", 2 << 20},
		{"20MiB", 20 << 20},
	}

	for _, scheme := range allSchemes(t) {
		for _, p := range payloads {
			t.Run(scheme.Name()+"/"+p.name, func(t *testing.T) {
				payload := make([]byte, p.size)
				if _, err := rand.Read(payload); err != nil {
					t.Fatal(err)
				}
				km := randomKeyMaterial(t)

				bulk, enc, err := EncapsulateFEK(scheme, payload, km)
				if err != nil {
					t.Fatalf("EncapsulateFEK() error = %v", err)
				}

				if enc.KEMAlgorithm != scheme.Name() {
					t.Errorf("KEMAlgorithm = %q, want %q", enc.KEMAlgorithm, scheme.Name())
				}
				if len(enc.KEMCiphertext) != scheme.CiphertextSize() {
					t.Errorf("KEM ciphertext length = %d, want %d", len(enc.KEMCiphertext), scheme.CiphertextSize())
				}
				if len(enc.AuthTag) != TranscriptTagSize {
					t.Errorf("auth tag length = %d, want %d", len(enc.AuthTag), TranscriptTagSize)
				}
				if len(enc.Fingerprint) != FingerprintSize {
					t.Errorf("fingerprint length = %d, want %d", len(enc.Fingerprint), FingerprintSize)
				}
				// The wrapped FEK is a separate AEAD box, never the raw key.
				if len(enc.WrappedFEK) != AESNonceSize+FEKSize+AESTagSize {
					t.Errorf("wrapped FEK length = %d, want %d", len(enc.WrappedFEK), AESNonceSize+FEKSize+AESTagSize)
				}

				got, err := DecapsulateFEK(scheme, bulk, enc, km)
				if err != nil {
					t.Fatalf("DecapsulateFEK() error = %v", err)
				}
				if !bytes.Equal(got, payload) {
					t.Error("round trip did not reproduce the payload")
				}
			})
		}
	}
}

func TestDecapsulateFEK_WrongKeyMaterial(t *testing.T) {
	scheme := DefaultScheme()
	payload := make([]byte, 4096)
	km := randomKeyMaterial(t)

	bulk, enc, err := EncapsulateFEK(scheme, payload, km)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := DecapsulateFEK(scheme, bulk, enc, randomKeyMaterial(t)); err == nil {
		t.Error("expected failure with mismatched key material")
	}
}

func TestDecapsulateFEK_Tampering(t *testing.T) {
	scheme := DefaultScheme()
	payload := make([]byte, 4096)
	km := randomKeyMaterial(t)

	encapsulate := func(t *testing.T) ([]byte, *FEKEncapsulation) {
		t.Helper()
		bulk, enc, err := EncapsulateFEK(scheme, payload, km)
		if err != nil {
			t.Fatal(err)
		}
		return bulk, enc
	}

	t.Run("kem ciphertext flipped", func(t *testing.T) {
		bulk, enc := encapsulate(t)
		enc.KEMCiphertext[0] ^= 0x01
		// ML-KEM rejects implicitly: the decapsulated secret silently
		// differs, so the transcript tag catches the modification.
		if _, err := DecapsulateFEK(scheme, bulk, enc, km); !errors.Is(err, ErrTagMismatch) {
			t.Errorf("expected ErrTagMismatch, got %v", err)
		}
	})

	t.Run("wrapped fek flipped", func(t *testing.T) {
		bulk, enc := encapsulate(t)
		enc.WrappedFEK[0] ^= 0x01
		if _, err := DecapsulateFEK(scheme, bulk, enc, km); !errors.Is(err, ErrTagMismatch) {
			t.Errorf("expected ErrTagMismatch, got %v", err)
		}
	})

	t.Run("auth tag flipped", func(t *testing.T) {
		bulk, enc := encapsulate(t)
		enc.AuthTag[0] ^= 0x01
		if _, err := DecapsulateFEK(scheme, bulk, enc, km); !errors.Is(err, ErrTagMismatch) {
			t.Errorf("expected ErrTagMismatch, got %v", err)
		}
	})

	t.Run("fingerprint flipped", func(t *testing.T) {
		bulk, enc := encapsulate(t)
		enc.Fingerprint[0] ^= 0x01
		if _, err := DecapsulateFEK(scheme, bulk, enc, km); !errors.Is(err, ErrTagMismatch) {
			t.Errorf("expected ErrTagMismatch, got %v", err)
		}
	})

	t.Run("bulk ciphertext flipped", func(t *testing.T) {
		bulk, enc := encapsulate(t)
		bulk[len(bulk)-1] ^= 0x01
		if _, err := DecapsulateFEK(scheme, bulk, enc, km); !errors.Is(err, ErrDecryptionFailed) {
			t.Errorf("expected ErrDecryptionFailed, got %v", err)
		}
	})

	t.Run("missing encapsulation", func(t *testing.T) {
		bulk, _ := encapsulate(t)
		if _, err := DecapsulateFEK(scheme, bulk, nil, km); !errors.Is(err, ErrDecryptionFailed) {
			t.Errorf("expected ErrDecryptionFailed, got %v", err)
		}
	})
}

func TestDecapsulateFEK_SchemeMismatch(t *testing.T) {
	payload := make([]byte, 1024)
	km := randomKeyMaterial(t)

	bulk, enc, err := EncapsulateFEK(MLKEM768(), payload, km)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := DecapsulateFEK(SNTRUP4591761(), bulk, enc, km); !errors.Is(err, ErrUnknownScheme) {
		t.Errorf("expected ErrUnknownScheme, got %v", err)
	}
}

func TestEncapsulateFEK_FreshFEKPerCall(t *testing.T) {
	scheme := DefaultScheme()
	payload := make([]byte, 1024)
	km := randomKeyMaterial(t)

	bulkA, encA, err := EncapsulateFEK(scheme, payload, km)
	if err != nil {
		t.Fatal(err)
	}
	bulkB, encB, err := EncapsulateFEK(scheme, payload, km)
	if err != nil {
		t.Fatal(err)
	}

	if bytes.Equal(bulkA, bulkB) {
		t.Error("two encapsulations produced identical bulk ciphertext")
	}
	if bytes.Equal(encA.WrappedFEK, encB.WrappedFEK) {
		t.Error("two encapsulations produced identical wrapped FEKs")
	}
	// The keypair is derived from the same material both times.
	if !bytes.Equal(encA.Fingerprint, encB.Fingerprint) {
		t.Error("fingerprints differ for the same key material")
	}
}
