package qukey

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/qukey/engine-go/internal/crypto"
)

// Engine ties a key source to the cipher suite. Each engine owns its
// key source and its handshake sessions; multiple engines with different
// endpoints or schemes coexist in one process.
type Engine struct {
	source *KeySource
	scheme crypto.Scheme

	closed atomic.Bool

	encryptions         atomic.Uint64
	decryptions         atomic.Uint64
	fekOperations       atomic.Uint64
	handshakesCompleted atomic.Uint64
	quantumKeysUsed     atomic.Uint64

	mu       sync.Mutex
	sessions map[string]*handshakeSession
}

// New creates an engine backed by the KME at endpoint.
func New(endpoint string, opts ...Option) (*Engine, error) {
	cfg := &engineConfig{
		scheme: crypto.DefaultScheme(),
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	source, err := NewKeySource(endpoint, cfg.sourceOpts...)
	if err != nil {
		return nil, err
	}

	return &Engine{
		source:   source,
		scheme:   cfg.scheme,
		sessions: make(map[string]*handshakeSession),
	}, nil
}

// KeySource returns the engine's key source for direct inspection.
func (e *Engine) KeySource() *KeySource {
	return e.source
}

// RequiredKeyBits reports how much key material an encryption of
// payloadBytes at the given level will consume.
func (e *Engine) RequiredKeyBits(level SecurityLevel, payloadBytes int) (int, error) {
	return RequiredKeyBits(level, payloadBytes)
}

// RequestKeyFor fetches key material sized for one encryption of
// payloadBytes at the given level. L4 needs none and returns nil.
func (e *Engine) RequestKeyFor(ctx context.Context, level SecurityLevel, payloadBytes int, purpose string) (*KeyMaterial, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}

	bits, err := RequiredKeyBits(level, payloadBytes)
	if err != nil {
		return nil, err
	}
	if bits == 0 {
		return nil, nil
	}
	return e.source.RequestKeyMaterial(ctx, bits, purpose)
}

// Encrypt requests fresh key material for the payload and encrypts it at
// the given level. The key material used is returned alongside the
// envelope; the caller owns it and must zero it once the peer can derive
// or has received it.
func (e *Engine) Encrypt(ctx context.Context, payload []byte, level SecurityLevel, purpose string) (*EncryptedEnvelope, *KeyMaterial, error) {
	if e.closed.Load() {
		return nil, nil, ErrEngineClosed
	}

	km, err := e.RequestKeyFor(ctx, level, len(payload), purpose)
	if err != nil {
		return nil, nil, err
	}

	env, err := encrypt(e.scheme, payload, km, level)
	if err != nil {
		if km != nil {
			km.Zero()
		}
		return nil, nil, err
	}

	e.encryptions.Add(1)
	if env.FEKUsed {
		e.fekOperations.Add(1)
	}
	if km != nil && !km.Simulated() {
		e.quantumKeysUsed.Add(1)
	}
	return env, km, nil
}

// EncryptWith encrypts payload with caller-supplied key material instead
// of consulting the key source.
func (e *Engine) EncryptWith(payload []byte, km *KeyMaterial, level SecurityLevel) (*EncryptedEnvelope, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}

	env, err := encrypt(e.scheme, payload, km, level)
	if err != nil {
		return nil, err
	}

	e.encryptions.Add(1)
	if env.FEKUsed {
		e.fekOperations.Add(1)
	}
	if km != nil && !km.Simulated() {
		e.quantumKeysUsed.Add(1)
	}
	return env, nil
}

// Decrypt reverses an envelope with the key material that produced it.
func (e *Engine) Decrypt(env *EncryptedEnvelope, km *KeyMaterial) ([]byte, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}

	payload, err := decrypt(env, km)
	if err != nil {
		return nil, err
	}

	e.decryptions.Add(1)
	if env.FEKUsed {
		e.fekOperations.Add(1)
	}
	return payload, nil
}

// EngineStatistics is a point-in-time snapshot of engine operation
// counters, with the key source statistics nested.
type EngineStatistics struct {
	Encryptions         uint64           `json:"encryptions"`
	Decryptions         uint64           `json:"decryptions"`
	FEKOperations       uint64           `json:"fekOperations"`
	HandshakesCompleted uint64           `json:"handshakesCompleted"`
	QuantumKeysUsed     uint64           `json:"quantumKeysUsed"`
	PendingHandshakes   int              `json:"pendingHandshakes"`
	KEMScheme           string           `json:"kemScheme"`
	KeySource           SourceStatistics `json:"keySource"`
}

// Statistics returns a snapshot of the engine's counters.
func (e *Engine) Statistics() EngineStatistics {
	e.mu.Lock()
	pending := len(e.sessions)
	e.mu.Unlock()

	return EngineStatistics{
		Encryptions:         e.encryptions.Load(),
		Decryptions:         e.decryptions.Load(),
		FEKOperations:       e.fekOperations.Load(),
		HandshakesCompleted: e.handshakesCompleted.Load(),
		QuantumKeysUsed:     e.quantumKeysUsed.Load(),
		PendingHandshakes:   pending,
		KEMScheme:           e.scheme.Name(),
		KeySource:           e.source.Statistics(),
	}
}

// Close cancels pending handshakes, zeroing their private keys, and
// shuts down the key source. Safe to call more than once.
func (e *Engine) Close() error {
	if e.closed.Swap(true) {
		return nil
	}

	e.mu.Lock()
	for id, s := range e.sessions {
		s.keypair.Zero()
		delete(e.sessions, id)
	}
	e.mu.Unlock()

	return e.source.Close()
}
