package qukey

import (
	"fmt"
	"time"
)

// handshakeSession is the responder-side state of an in-flight hybrid
// handshake: the ephemeral keypair waiting for the peer's encapsulation.
type handshakeSession struct {
	keypair   *HybridKeyPair
	createdAt time.Time
}

// BeginHandshake generates an ephemeral hybrid keypair for the given
// call and returns its public keys for advertisement over signaling.
// The private halves stay in the engine until CompleteHandshake or
// CancelHandshake.
func (e *Engine) BeginHandshake(callID string) (*HandshakeKeys, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}
	if callID == "" {
		return nil, &CryptoError{Stage: "handshake", Err: fmt.Errorf("call id is required")}
	}

	kp, err := generateHybridKeypair(e.scheme)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	if prev, ok := e.sessions[callID]; ok {
		// A restarted handshake supersedes the old keypair.
		prev.keypair.Zero()
	}
	e.sessions[callID] = &handshakeSession{keypair: kp, createdAt: time.Now()}
	e.mu.Unlock()

	return kp.PublicKeys(), nil
}

// AcceptHandshake performs the caller-side step against a peer's
// advertised keys: it encapsulates to them, returning the message to
// send back and the derived session key. No engine state is retained;
// the session key is live as soon as this returns.
func (e *Engine) AcceptHandshake(remote *HandshakeKeys) (*EncapsulationMessage, []byte, error) {
	if e.closed.Load() {
		return nil, nil, ErrEngineClosed
	}

	result, err := hybridEncapsulate(e.scheme, remote)
	if err != nil {
		return nil, nil, err
	}

	e.handshakesCompleted.Add(1)
	return result.Message, result.SessionKey, nil
}

// CompleteHandshake finishes the responder side for the given call,
// deriving the session key from the peer's encapsulation message. The
// ephemeral keypair is zeroed and the session removed whether or not
// derivation succeeds; a failed handshake is restarted from
// BeginHandshake, never resumed.
func (e *Engine) CompleteHandshake(callID string, msg *EncapsulationMessage) ([]byte, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}

	e.mu.Lock()
	session, ok := e.sessions[callID]
	if ok {
		delete(e.sessions, callID)
	}
	e.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: call %q", ErrHandshakeNotFound, callID)
	}
	defer session.keypair.Zero()

	sessionKey, err := HybridDecapsulate(msg, session.keypair)
	if err != nil {
		return nil, err
	}

	e.handshakesCompleted.Add(1)
	return sessionKey, nil
}

// CancelHandshake abandons a pending handshake, zeroing its private
// keys.
func (e *Engine) CancelHandshake(callID string) error {
	e.mu.Lock()
	session, ok := e.sessions[callID]
	if ok {
		delete(e.sessions, callID)
	}
	e.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: call %q", ErrHandshakeNotFound, callID)
	}
	session.keypair.Zero()
	return nil
}
