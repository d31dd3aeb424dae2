package qukey

import (
	"github.com/qukey/engine-go/internal/crypto"
)

// Provenance tags where key material came from. The engine never
// conflates live and fallback material silently.
type Provenance string

const (
	// ProvenanceLive marks key material supplied by the KME.
	ProvenanceLive Provenance = "live-kme"
	// ProvenanceSimulated marks locally generated fallback material
	// served while the key source is degraded.
	ProvenanceSimulated Provenance = "simulated-fallback"
)

// KeyMaterial is an opaque byte sequence with a declared bit length and
// a provenance tag. It is requested fresh per operation and must be
// zeroed after consumption.
type KeyMaterial struct {
	// KeyID is the KME's identifier for this key, empty for fallback
	// material.
	KeyID string
	// Bytes is the raw key material. Never log or persist it.
	Bytes []byte
	// BitLength is the declared usable length in bits.
	BitLength int
	// Provenance records whether the material is live or simulated.
	Provenance Provenance
}

// Simulated reports whether this is fallback material.
func (k *KeyMaterial) Simulated() bool {
	return k.Provenance == ProvenanceSimulated
}

// Zero overwrites the key bytes. Safe to call more than once.
func (k *KeyMaterial) Zero() {
	crypto.Zero(k.Bytes)
}
