package qukey

import (
	"github.com/qukey/engine-go/internal/crypto"
)

// Option configures an Engine.
type Option func(*engineConfig) error

type engineConfig struct {
	scheme     crypto.Scheme
	sourceOpts []KeySourceOption
}

// WithKEMScheme selects the post-quantum KEM scheme used for FEK
// encapsulation and handshakes. Known schemes are "ML-KEM-768" (the
// default) and "sntrup4591761".
func WithKEMScheme(name string) Option {
	return func(c *engineConfig) error {
		scheme, err := crypto.SchemeByName(name)
		if err != nil {
			return &CryptoError{Stage: "config", Err: err}
		}
		c.scheme = scheme
		return nil
	}
}

// WithKeySourceOptions forwards options to the engine's key source.
func WithKeySourceOptions(opts ...KeySourceOption) Option {
	return func(c *engineConfig) error {
		c.sourceOpts = append(c.sourceOpts, opts...)
		return nil
	}
}

// KEMSchemes lists the registered KEM scheme names.
func KEMSchemes() []string {
	return []string{crypto.SchemeMLKEM768, crypto.SchemeSNTRUP}
}
