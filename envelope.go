package qukey

import (
	"time"
)

// Algorithm identifiers recorded in envelopes.
const (
	AlgorithmOTP       = "Q_OTP"
	AlgorithmAES       = "Q_AES256_GCM"
	AlgorithmPQC       = "PQC_WRAPPED_AES256_GCM"
	AlgorithmPQCFEK    = "PQC_FEK_AES256_GCM"
	AlgorithmTransport = "TLS_ONLY"
)

// EncryptedEnvelope is the result of an encryption call and the wire form
// carried by the message transport. Byte fields encode as standard base64
// in JSON.
type EncryptedEnvelope struct {
	// Algorithm identifies the cipher construction used.
	Algorithm string `json:"algorithm"`
	// SecurityLevel is the level the envelope was produced at.
	SecurityLevel SecurityLevel `json:"securityLevel"`
	// Ciphertext is the encrypted payload. For AEAD levels the framing
	// is nonce || ciphertext || tag; for L1 it is the XOR stream; for
	// L4 it is the unmodified payload.
	Ciphertext []byte `json:"ciphertext"`
	// FEKUsed marks envelopes that took the two-layer FEK path.
	FEKUsed bool `json:"fekUsed"`
	// EncapsulatedFEK is present only when FEKUsed is true.
	EncapsulatedFEK *FEKEncapsulation `json:"encapsulatedFek,omitempty"`
	// PlaintextLength is the original payload length in bytes.
	PlaintextLength int `json:"plaintextLength"`
	// Timestamp records when the envelope was produced.
	Timestamp time.Time `json:"timestamp"`
}

// FEKEncapsulation is the wire form of a wrapped File Encryption Key.
type FEKEncapsulation struct {
	// KEMCiphertext is the KEM ciphertext protecting the wrap secret.
	KEMCiphertext []byte `json:"kemCiphertext"`
	// WrappedFEK is the FEK encrypted under the derived wrap key.
	WrappedFEK []byte `json:"wrappedFek"`
	// AuthTag authenticates the KEM ciphertext and wrapped FEK.
	AuthTag []byte `json:"authTag"`
	// KEMAlgorithm names the scheme that produced the ciphertext.
	KEMAlgorithm string `json:"kemAlgorithm"`
	// PublicKeyFingerprint identifies the derived KEM public key.
	PublicKeyFingerprint []byte `json:"publicKeyFingerprint"`
}
