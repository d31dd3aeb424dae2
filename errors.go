package qukey

import (
	"errors"
	"fmt"
	"time"

	"github.com/qukey/engine-go/internal/crypto"
	"github.com/qukey/engine-go/internal/kme"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrMissingEndpoint is returned when no KME endpoint is provided.
	ErrMissingEndpoint = errors.New("KME endpoint is required")

	// ErrEngineClosed is returned when operations are attempted on a closed engine.
	ErrEngineClosed = errors.New("engine has been closed")

	// ErrConnection is returned when the key source is unreachable after
	// the retry budget is exhausted.
	ErrConnection = errors.New("key source unreachable")

	// ErrPolicyViolation is returned when an operation violates a
	// security-level size or length rule. Never retried.
	ErrPolicyViolation = errors.New("security policy violation")

	// ErrCrypto is returned on integrity failure, malformed ciphertext,
	// or handshake key mismatch. Never retried, always fatal to the
	// operation.
	ErrCrypto = errors.New("cryptographic operation failed")

	// ErrHandshakeNotFound is returned for operations on an unknown or
	// already-completed handshake session.
	ErrHandshakeNotFound = errors.New("handshake session not found")
)

// QuKeyError is implemented by all engine errors.
type QuKeyError interface {
	error
	QuKeyError() // marker method
}

// ConnectionError reports that the key source could not be reached or
// timed out, after internal retries were exhausted.
type ConnectionError struct {
	Endpoint string
	Attempts int
	Err      error
}

func (e *ConnectionError) Error() string {
	if e.Attempts > 0 {
		return fmt.Sprintf("key source %s unreachable after %d attempts: %v", e.Endpoint, e.Attempts, e.Err)
	}
	return fmt.Sprintf("key source %s unreachable: %v", e.Endpoint, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConnectionError) Unwrap() error { return e.Err }

// Is implements errors.Is for sentinel error matching.
func (e *ConnectionError) Is(target error) bool { return target == ErrConnection }

// QuKeyError implements the QuKeyError interface.
func (e *ConnectionError) QuKeyError() {}

// PolicyViolationError reports a request that violates the security-level
// policy, such as an oversized one-time pad or insufficient key material.
type PolicyViolationError struct {
	Level       SecurityLevel
	PayloadSize int
	Reason      string
}

func (e *PolicyViolationError) Error() string {
	if e.PayloadSize > 0 {
		return fmt.Sprintf("policy violation at %s: %s (payload %d bytes)", e.Level, e.Reason, e.PayloadSize)
	}
	return fmt.Sprintf("policy violation at %s: %s", e.Level, e.Reason)
}

// Is implements errors.Is for sentinel error matching.
func (e *PolicyViolationError) Is(target error) bool { return target == ErrPolicyViolation }

// QuKeyError implements the QuKeyError interface.
func (e *PolicyViolationError) QuKeyError() {}

// CryptoError reports an integrity or correctness failure in an
// encryption, decryption, or handshake step. Decryption failures are
// always distinguishable from successful-but-empty plaintext.
type CryptoError struct {
	Stage string // "otp", "aead", "fek", "kem", "handshake"
	Err   error
}

func (e *CryptoError) Error() string {
	return fmt.Sprintf("crypto failure at %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *CryptoError) Unwrap() error { return e.Err }

// Is implements errors.Is for sentinel error matching.
func (e *CryptoError) Is(target error) bool { return target == ErrCrypto }

// QuKeyError implements the QuKeyError interface.
func (e *CryptoError) QuKeyError() {}

// DegradedModeNotice is delivered through the WithDegradedNotice callback
// whenever the key source serves fallback key material. It is
// informational, not an error, but callers must be able to observe it to
// decide whether to proceed.
type DegradedModeNotice struct {
	Endpoint    string
	Failures    int
	Purpose     string
	RequestedAt time.Time
}

func (n *DegradedModeNotice) String() string {
	return fmt.Sprintf("key source %s degraded (%d failures), serving simulated key material for %q",
		n.Endpoint, n.Failures, n.Purpose)
}

// wrapConnectionError converts internal KME errors to the public taxonomy
// so errors.Is() checks work with the sentinels above.
func wrapConnectionError(endpoint string, err error) error {
	if err == nil {
		return nil
	}

	var netErr *kme.NetworkError
	if errors.As(err, &netErr) {
		return &ConnectionError{Endpoint: endpoint, Attempts: netErr.Attempt, Err: netErr.Err}
	}

	return &ConnectionError{Endpoint: endpoint, Err: err}
}

// wrapCryptoError converts internal crypto failures to CryptoError,
// classifying the stage from the internal sentinel.
func wrapCryptoError(stage string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, crypto.ErrKeyTooShort) {
		// Length insufficiency is a policy matter, not tampering.
		return &PolicyViolationError{Level: LevelL1, Reason: err.Error()}
	}
	return &CryptoError{Stage: stage, Err: err}
}
