// Package qukey provides a crypto-agile key and encryption engine for
// applications consuming quantum-distributed key material.
//
// The engine fetches key material from a Key Management Entity (KME),
// degrades gracefully to locally simulated material when the KME is
// unreachable, and encrypts payloads at four security levels: one-time
// pad, AES-256-GCM, post-quantum KEM-wrapped AES (with a two-layer FEK
// path for large payloads), and transport-only passthrough. A hybrid
// X25519 + ML-KEM-768 handshake establishes call session keys and
// derives SRTP transport keys.
//
// Basic usage:
//
//	engine, err := qukey.New("https://kme.example.com")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Close()
//
//	ctx := context.Background()
//	env, km, err := engine.Encrypt(ctx, payload, qukey.LevelL2, "messaging")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer km.Zero()
//
//	plaintext, err := engine.Decrypt(env, km)
//	if err != nil {
//	    log.Fatal(err)
//	}
package qukey
