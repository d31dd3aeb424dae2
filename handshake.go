package qukey

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/qukey/engine-go/internal/crypto"
)

// HybridKeyPair is an ephemeral keypair for one hybrid handshake: a
// classical X25519 pair and a post-quantum KEM pair. It is generated per
// call or session, never reused, and zeroed once the session key is
// derived.
type HybridKeyPair struct {
	// ID uniquely identifies this keypair.
	ID string
	// CreatedAt records when the keypair was generated.
	CreatedAt time.Time
	// ClassicalPublicKey is the X25519 public key.
	ClassicalPublicKey []byte
	// PQPublicKey is the post-quantum KEM public key.
	PQPublicKey []byte

	classicalPrivateKey []byte
	pqPrivateKey        []byte
	schemeName          string
}

// HandshakeKeys is the keypair advertisement carried by the call
// signaling transport.
type HandshakeKeys struct {
	KeypairID          string `json:"keypairId"`
	ClassicalPublicKey []byte `json:"classicalPublicKey"`
	PQPublicKey        []byte `json:"pqPublicKey"`
}

// EncapsulationMessage is the caller's handshake message carried by the
// call signaling transport.
type EncapsulationMessage struct {
	KEMCiphertext        []byte `json:"kemCiphertext"`
	ClassicalPublicShare []byte `json:"classicalPublicShare"`
}

// EncapsulationResult is the caller-side output of the handshake: the
// message for the responder and the locally derived session key. The
// session key never travels.
type EncapsulationResult struct {
	Message    *EncapsulationMessage
	SessionKey []byte
}

// TransportKeys are the media transport keys derived from a session key.
type TransportKeys struct {
	// MasterKey is the 30-byte SRTP master key.
	MasterKey []byte
	// MasterSalt is the 14-byte SRTP master salt.
	MasterSalt []byte
}

// GenerateHybridKeypair produces a fresh ephemeral hybrid keypair using
// the default KEM scheme.
func GenerateHybridKeypair() (*HybridKeyPair, error) {
	return generateHybridKeypair(crypto.DefaultScheme())
}

func generateHybridKeypair(scheme crypto.Scheme) (*HybridKeyPair, error) {
	classicalPub, classicalPriv, err := crypto.GenerateX25519()
	if err != nil {
		return nil, &CryptoError{Stage: "handshake", Err: err}
	}

	pqPub, pqPriv, err := scheme.GenerateKeypair()
	if err != nil {
		crypto.Zero(classicalPriv)
		return nil, &CryptoError{Stage: "handshake", Err: err}
	}

	id := make([]byte, 8)
	if _, err := rand.Read(id); err != nil {
		crypto.Zero(classicalPriv)
		crypto.Zero(pqPriv)
		return nil, &CryptoError{Stage: "handshake", Err: err}
	}

	return &HybridKeyPair{
		ID:                  "hybrid_" + hex.EncodeToString(id),
		CreatedAt:           time.Now().UTC(),
		ClassicalPublicKey:  classicalPub,
		PQPublicKey:         pqPub,
		classicalPrivateKey: classicalPriv,
		pqPrivateKey:        pqPriv,
		schemeName:          scheme.Name(),
	}, nil
}

// PublicKeys returns the advertisement form of the keypair.
func (kp *HybridKeyPair) PublicKeys() *HandshakeKeys {
	return &HandshakeKeys{
		KeypairID:          kp.ID,
		ClassicalPublicKey: kp.ClassicalPublicKey,
		PQPublicKey:        kp.PQPublicKey,
	}
}

// Zero discards the private halves of the keypair. Safe to call more
// than once.
func (kp *HybridKeyPair) Zero() {
	crypto.Zero(kp.classicalPrivateKey)
	crypto.Zero(kp.pqPrivateKey)
}

// HybridEncapsulate performs the caller-side handshake step against the
// responder's advertised public keys, returning the message to send and
// the derived session key.
func HybridEncapsulate(remote *HandshakeKeys) (*EncapsulationResult, error) {
	return hybridEncapsulate(crypto.DefaultScheme(), remote)
}

func hybridEncapsulate(scheme crypto.Scheme, remote *HandshakeKeys) (*EncapsulationResult, error) {
	if remote == nil {
		return nil, &CryptoError{Stage: "handshake", Err: fmt.Errorf("missing remote public keys")}
	}
	if len(remote.PQPublicKey) != scheme.PublicKeySize() {
		return nil, &CryptoError{Stage: "handshake", Err: fmt.Errorf("malformed %s public key: %d bytes", scheme.Name(), len(remote.PQPublicKey))}
	}

	share, kemCiphertext, sessionKey, err := crypto.HybridEncapsulate(scheme, remote.ClassicalPublicKey, remote.PQPublicKey)
	if err != nil {
		return nil, &CryptoError{Stage: "handshake", Err: err}
	}

	return &EncapsulationResult{
		Message: &EncapsulationMessage{
			KEMCiphertext:        kemCiphertext,
			ClassicalPublicShare: share,
		},
		SessionKey: sessionKey,
	}, nil
}

// HybridDecapsulate performs the responder-side handshake step with the
// local keypair. It produces the identical session key as the peer's
// HybridEncapsulate call; that equality is the correctness invariant of
// the whole handshake.
func HybridDecapsulate(msg *EncapsulationMessage, kp *HybridKeyPair) ([]byte, error) {
	if msg == nil || kp == nil {
		return nil, &CryptoError{Stage: "handshake", Err: fmt.Errorf("missing handshake state")}
	}

	scheme, err := crypto.SchemeByName(kp.schemeName)
	if err != nil {
		scheme = crypto.DefaultScheme()
	}

	sessionKey, err := crypto.HybridDecapsulate(scheme, msg.ClassicalPublicShare, msg.KEMCiphertext, kp.classicalPrivateKey, kp.pqPrivateKey)
	if err != nil {
		return nil, &CryptoError{Stage: "handshake", Err: err}
	}
	return sessionKey, nil
}

// DeriveTransportKeys expands a session key into the SRTP master key and
// salt. The derivation is keyed by the session id: identical inputs
// yield identical keys, and a different session id yields different
// keys, so transport keys cannot be replayed across sessions.
func DeriveTransportKeys(sessionKey []byte, sessionID string) (*TransportKeys, error) {
	if len(sessionKey) != crypto.SessionKeySize {
		return nil, &CryptoError{Stage: "handshake", Err: fmt.Errorf("session key must be %d bytes, got %d", crypto.SessionKeySize, len(sessionKey))}
	}
	if sessionID == "" {
		return nil, &CryptoError{Stage: "handshake", Err: fmt.Errorf("session id is required")}
	}

	masterKey, masterSalt, err := crypto.DeriveTransportKeys(sessionKey, sessionID)
	if err != nil {
		return nil, &CryptoError{Stage: "handshake", Err: err}
	}
	return &TransportKeys{MasterKey: masterKey, MasterSalt: masterSalt}, nil
}
