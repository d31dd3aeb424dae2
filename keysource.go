package qukey

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	mathrand "math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/qukey/engine-go/internal/kme"
)

// ConnectionState describes the key source's view of the KME link.
type ConnectionState int32

const (
	// StateDisconnected means no successful contact yet.
	StateDisconnected ConnectionState = iota
	// StateConnecting means a probe is in flight.
	StateConnecting
	// StateConnected means the last probe succeeded.
	StateConnected
	// StateDegraded means consecutive probes exceeded the failure
	// threshold; fallback key material may be served.
	StateDegraded
)

// String returns the lowercase state name.
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDegraded:
		return "degraded"
	default:
		return fmt.Sprintf("unknown(%d)", int32(s))
	}
}

const (
	defaultHeartbeatInterval     = 60 * time.Second
	defaultMaxConnectionFailures = 3
	defaultKeyRetries            = 3
)

// reconnectSchedule is the delay before each reconnection attempt once
// the source is degraded. The last entry repeats.
var reconnectSchedule = []time.Duration{
	1 * time.Second,
	2 * time.Second,
	5 * time.Second,
	10 * time.Second,
	30 * time.Second,
}

// KeySource requests key material from a KME and degrades gracefully
// when the KME is unreachable. Construction never fails on connection
// problems; availability is observable through State and Statistics.
type KeySource struct {
	endpoint string
	client   *kme.Client

	heartbeat         bool
	heartbeatInterval time.Duration
	maxFailures       int
	strict            bool
	requestTimeout    time.Duration
	onDegraded        func(*DegradedModeNotice)

	state               atomic.Int32
	consecutiveFailures atomic.Int32
	totalRequests       atomic.Uint64
	successfulRequests  atomic.Uint64
	reconnectAttempts   atomic.Uint64
	startedAt           time.Time

	closeOnce sync.Once
	closing   chan struct{}
	done      chan struct{}
}

// KeySourceOption configures a KeySource.
type KeySourceOption func(*keySourceConfig)

type keySourceConfig struct {
	heartbeat         bool
	heartbeatInterval time.Duration
	maxFailures       int
	strict            bool
	keyRetries        int
	requestTimeout    time.Duration
	httpClient        *http.Client
	onDegraded        func(*DegradedModeNotice)
	saeID             string
}

// WithHeartbeat enables or disables the background health probe. It is
// enabled by default.
func WithHeartbeat(enabled bool) KeySourceOption {
	return func(c *keySourceConfig) {
		c.heartbeat = enabled
	}
}

// WithHeartbeatInterval sets the period between health probes while the
// source is connected. Default is 60 seconds.
func WithHeartbeatInterval(interval time.Duration) KeySourceOption {
	return func(c *keySourceConfig) {
		if interval > 0 {
			c.heartbeatInterval = interval
		}
	}
}

// WithMaxConnectionFailures sets how many consecutive probe failures put
// the source into the degraded state. Default is 3.
func WithMaxConnectionFailures(n int) KeySourceOption {
	return func(c *keySourceConfig) {
		if n > 0 {
			c.maxFailures = n
		}
	}
}

// WithStrictKeys makes the source refuse to serve fallback key material.
// Requests fail with a ConnectionError instead.
func WithStrictKeys() KeySourceOption {
	return func(c *keySourceConfig) {
		c.strict = true
	}
}

// WithKeyRetries sets the retry budget for a single key request.
// Default is 3.
func WithKeyRetries(n int) KeySourceOption {
	return func(c *keySourceConfig) {
		if n >= 0 {
			c.keyRetries = n
		}
	}
}

// WithRequestTimeout sets the per-request timeout. Default is 10 seconds.
func WithRequestTimeout(timeout time.Duration) KeySourceOption {
	return func(c *keySourceConfig) {
		if timeout > 0 {
			c.requestTimeout = timeout
		}
	}
}

// WithSourceHTTPClient replaces the HTTP client used to reach the KME.
func WithSourceHTTPClient(client *http.Client) KeySourceOption {
	return func(c *keySourceConfig) {
		c.httpClient = client
	}
}

// WithDegradedNotice registers a callback invoked whenever the source
// serves simulated fallback key material. The callback runs on the
// requesting goroutine.
func WithDegradedNotice(fn func(*DegradedModeNotice)) KeySourceOption {
	return func(c *keySourceConfig) {
		c.onDegraded = fn
	}
}

// WithSAEID tags every key request with the Secure Application Entity
// identifier.
func WithSAEID(saeID string) KeySourceOption {
	return func(c *keySourceConfig) {
		c.saeID = saeID
	}
}

// NewKeySource creates a key source for the given KME endpoint. The
// endpoint is required, but an unreachable KME is not an error: the
// source starts in the disconnected state and the heartbeat takes over.
func NewKeySource(endpoint string, opts ...KeySourceOption) (*KeySource, error) {
	if endpoint == "" {
		return nil, ErrMissingEndpoint
	}

	cfg := &keySourceConfig{
		heartbeat:         true,
		heartbeatInterval: defaultHeartbeatInterval,
		maxFailures:       defaultMaxConnectionFailures,
		keyRetries:        defaultKeyRetries,
		requestTimeout:    10 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	retry := kme.DefaultRetryConfig()
	retry.MaxRetries = cfg.keyRetries

	clientOpts := []kme.Option{
		kme.WithTimeout(cfg.requestTimeout),
		kme.WithRetryConfig(retry),
	}
	if cfg.saeID != "" {
		clientOpts = append(clientOpts, kme.WithSAEID(cfg.saeID))
	}

	client, err := kme.New(endpoint, clientOpts...)
	if err != nil {
		return nil, err
	}
	if cfg.httpClient != nil {
		client.SetHTTPClient(cfg.httpClient)
	}

	ks := &KeySource{
		endpoint:          endpoint,
		client:            client,
		heartbeat:         cfg.heartbeat,
		heartbeatInterval: cfg.heartbeatInterval,
		maxFailures:       cfg.maxFailures,
		strict:            cfg.strict,
		requestTimeout:    cfg.requestTimeout,
		onDegraded:        cfg.onDegraded,
		startedAt:         time.Now(),
		closing:           make(chan struct{}),
		done:              make(chan struct{}),
	}

	if ks.heartbeat {
		go ks.heartbeatLoop()
	} else {
		close(ks.done)
	}

	return ks, nil
}

// State returns the current connection state.
func (ks *KeySource) State() ConnectionState {
	return ConnectionState(ks.state.Load())
}

func (ks *KeySource) setState(s ConnectionState) {
	ks.state.Store(int32(s))
}

// RequestKeyMaterial fetches key material of the given bit length from
// the KME. When the KME is unreachable after retries, a strict source
// returns a ConnectionError; otherwise locally generated fallback
// material is returned and the degraded-notice callback fires.
func (ks *KeySource) RequestKeyMaterial(ctx context.Context, bitLength int, purpose string) (*KeyMaterial, error) {
	select {
	case <-ks.closing:
		return nil, ErrEngineClosed
	default:
	}
	if bitLength <= 0 {
		return nil, &PolicyViolationError{Reason: fmt.Sprintf("invalid key bit length %d", bitLength)}
	}

	ks.totalRequests.Add(1)

	keyID, material, err := ks.client.RequestKey(ctx, bitLength, purpose)
	if err == nil {
		ks.successfulRequests.Add(1)
		ks.consecutiveFailures.Store(0)
		ks.setState(StateConnected)
		return &KeyMaterial{
			KeyID:      keyID,
			Bytes:      material,
			BitLength:  bitLength,
			Provenance: ProvenanceLive,
		}, nil
	}

	failures := int(ks.consecutiveFailures.Add(1))
	if failures >= ks.maxFailures {
		ks.setState(StateDegraded)
	}

	if ks.strict {
		// Degraded state stays observable through State() and the
		// notice callback; the error taxonomy does not change with it.
		return nil, wrapConnectionError(ks.endpoint, err)
	}

	km, genErr := simulatedKeyMaterial(bitLength)
	if genErr != nil {
		return nil, wrapCryptoError("fallback", genErr)
	}

	if ks.onDegraded != nil {
		ks.onDegraded(&DegradedModeNotice{
			Endpoint:    ks.endpoint,
			Failures:    failures,
			Purpose:     purpose,
			RequestedAt: time.Now().UTC(),
		})
	}

	return km, nil
}

// simulatedKeyMaterial produces fallback key material from the local
// CSPRNG. It is tagged so no consumer can mistake it for QKD-derived
// material.
func simulatedKeyMaterial(bitLength int) (*KeyMaterial, error) {
	buf := make([]byte, (bitLength+7)/8)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return &KeyMaterial{
		Bytes:      buf,
		BitLength:  bitLength,
		Provenance: ProvenanceSimulated,
	}, nil
}

// heartbeatLoop probes the KME health endpoint on a fixed interval while
// connected, and on an escalating backoff schedule once degraded. Only
// this goroutine and RequestKeyMaterial write the connection state.
func (ks *KeySource) heartbeatLoop() {
	defer close(ks.done)

	ks.setState(StateConnecting)

	// First probe immediately so State reflects reality right after
	// construction.
	delay := time.Duration(0)
	backoffIdx := 0

	for {
		if delay > 0 {
			select {
			case <-ks.closing:
				return
			case <-time.After(delay):
			}
		} else {
			select {
			case <-ks.closing:
				return
			default:
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), ks.requestTimeout)
		health, err := ks.client.GetHealth(ctx)
		cancel()

		if err == nil && health.Status != kme.StatusDegraded {
			ks.consecutiveFailures.Store(0)
			ks.setState(StateConnected)
			backoffIdx = 0
			delay = ks.heartbeatInterval
			continue
		}

		failures := int(ks.consecutiveFailures.Add(1))
		if failures >= ks.maxFailures {
			ks.setState(StateDegraded)
			ks.reconnectAttempts.Add(1)
			delay = jittered(reconnectSchedule[backoffIdx])
			if backoffIdx < len(reconnectSchedule)-1 {
				backoffIdx++
			}
		} else {
			delay = ks.heartbeatInterval
		}
	}
}

// jittered applies +/-20% jitter so degraded sources do not reconnect in
// lockstep.
func jittered(d time.Duration) time.Duration {
	factor := 0.8 + mathrand.Float64()*0.4
	return time.Duration(float64(d) * factor)
}

// SourceStatistics is a point-in-time snapshot of the key source. The
// success rate is a percentage of total requests.
type SourceStatistics struct {
	State                    string  `json:"connectionStatus"`
	TotalRequests            uint64  `json:"totalRequests"`
	SuccessfulRequests       uint64  `json:"successfulRequests"`
	SuccessRate              float64 `json:"successRate"`
	UptimeSeconds            float64 `json:"uptimeSeconds"`
	ReconnectionAttempts     uint64  `json:"reconnectionAttempts"`
	HeartbeatIntervalSeconds float64 `json:"heartbeatIntervalSeconds"`
}

// Statistics returns a snapshot of the source's counters.
func (ks *KeySource) Statistics() SourceStatistics {
	total := ks.totalRequests.Load()
	success := ks.successfulRequests.Load()

	rate := 0.0
	if total > 0 {
		rate = math.Round(float64(success)/float64(total)*10000) / 100
	}

	return SourceStatistics{
		State:                    ks.State().String(),
		TotalRequests:            total,
		SuccessfulRequests:       success,
		SuccessRate:              rate,
		UptimeSeconds:            time.Since(ks.startedAt).Seconds(),
		ReconnectionAttempts:     ks.reconnectAttempts.Load(),
		HeartbeatIntervalSeconds: ks.heartbeatInterval.Seconds(),
	}
}

// Close stops the heartbeat and rejects further requests. Safe to call
// more than once.
func (ks *KeySource) Close() error {
	ks.closeOnce.Do(func() {
		close(ks.closing)
	})
	<-ks.done
	ks.setState(StateDisconnected)
	return nil
}
