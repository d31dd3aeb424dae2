package qukey

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestHybridHandshake_EndToEnd(t *testing.T) {
	// Responder side.
	kp, err := GenerateHybridKeypair()
	if err != nil {
		t.Fatalf("GenerateHybridKeypair() error = %v", err)
	}
	defer kp.Zero()

	if kp.ID == "" {
		t.Error("keypair has no id")
	}
	if kp.CreatedAt.IsZero() {
		t.Error("keypair has no creation time")
	}

	advertised := kp.PublicKeys()
	if advertised.KeypairID != kp.ID {
		t.Errorf("KeypairID = %q, want %q", advertised.KeypairID, kp.ID)
	}

	// Caller side.
	result, err := HybridEncapsulate(advertised)
	if err != nil {
		t.Fatalf("HybridEncapsulate() error = %v", err)
	}

	// Responder derives the same session key.
	responderKey, err := HybridDecapsulate(result.Message, kp)
	if err != nil {
		t.Fatalf("HybridDecapsulate() error = %v", err)
	}

	if !bytes.Equal(result.SessionKey, responderKey) {
		t.Error("caller and responder session keys differ")
	}
}

func TestHybridEncapsulate_MalformedRemoteKeys(t *testing.T) {
	kp, err := GenerateHybridKeypair()
	if err != nil {
		t.Fatal(err)
	}
	defer kp.Zero()

	tests := []struct {
		name   string
		remote *HandshakeKeys
	}{
		{"nil", nil},
		{"truncated pq key", &HandshakeKeys{
			ClassicalPublicKey: kp.ClassicalPublicKey,
			PQPublicKey:        kp.PQPublicKey[:100],
		}},
		{"truncated classical key", &HandshakeKeys{
			ClassicalPublicKey: kp.ClassicalPublicKey[:16],
			PQPublicKey:        kp.PQPublicKey,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := HybridEncapsulate(tt.remote); !errors.Is(err, ErrCrypto) {
				t.Errorf("expected ErrCrypto, got %v", err)
			}
		})
	}
}

func TestGenerateHybridKeypair_UniqueIDs(t *testing.T) {
	a, err := GenerateHybridKeypair()
	if err != nil {
		t.Fatal(err)
	}
	defer a.Zero()
	b, err := GenerateHybridKeypair()
	if err != nil {
		t.Fatal(err)
	}
	defer b.Zero()

	if a.ID == b.ID {
		t.Error("two keypairs share an id")
	}
	if bytes.Equal(a.PQPublicKey, b.PQPublicKey) {
		t.Error("two keypairs share a public key")
	}
}

func TestDeriveTransportKeys_Public(t *testing.T) {
	kp, err := GenerateHybridKeypair()
	if err != nil {
		t.Fatal(err)
	}
	defer kp.Zero()

	result, err := HybridEncapsulate(kp.PublicKeys())
	if err != nil {
		t.Fatal(err)
	}

	keys, err := DeriveTransportKeys(result.SessionKey, "call-42")
	if err != nil {
		t.Fatalf("DeriveTransportKeys() error = %v", err)
	}
	if len(keys.MasterKey) != 30 {
		t.Errorf("master key length = %d, want 30", len(keys.MasterKey))
	}
	if len(keys.MasterSalt) != 14 {
		t.Errorf("master salt length = %d, want 14", len(keys.MasterSalt))
	}

	t.Run("invalid session key", func(t *testing.T) {
		if _, err := DeriveTransportKeys(result.SessionKey[:16], "call-42"); !errors.Is(err, ErrCrypto) {
			t.Errorf("expected ErrCrypto, got %v", err)
		}
	})

	t.Run("missing session id", func(t *testing.T) {
		if _, err := DeriveTransportKeys(result.SessionKey, ""); !errors.Is(err, ErrCrypto) {
			t.Errorf("expected ErrCrypto, got %v", err)
		}
	})
}

func TestHandshakeKeys_JSONRoundTrip(t *testing.T) {
	kp, err := GenerateHybridKeypair()
	if err != nil {
		t.Fatal(err)
	}
	defer kp.Zero()

	data, err := json.Marshal(kp.PublicKeys())
	if err != nil {
		t.Fatal(err)
	}

	var decoded HandshakeKeys
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}

	// The wire form must survive signaling: encapsulating against the
	// decoded keys still completes the handshake.
	result, err := HybridEncapsulate(&decoded)
	if err != nil {
		t.Fatalf("HybridEncapsulate() after JSON round trip error = %v", err)
	}

	var msg EncapsulationMessage
	msgData, err := json.Marshal(result.Message)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(msgData, &msg); err != nil {
		t.Fatal(err)
	}

	responderKey, err := HybridDecapsulate(&msg, kp)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(result.SessionKey, responderKey) {
		t.Error("session keys differ after JSON round trips")
	}
}
