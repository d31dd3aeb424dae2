// Package crypto provides the cryptographic primitives for the qukey
// encryption engine.
//
// # Algorithm Suite
//
//   - ML-KEM-768 (NIST FIPS 203): post-quantum key encapsulation, the
//     default scheme for FEK wrapping and the hybrid handshake.
//
//   - Streamlined NTRU Prime 4591^761: alternate registered KEM scheme,
//     selectable by name for crypto agility.
//
//   - X25519: classical Diffie-Hellman leg of the hybrid handshake.
//
//   - AES-256-GCM: authenticated encryption for payloads and wrapped FEKs.
//
//   - HKDF-SHA-512 / HKDF-SHA-256 (RFC 5869): key derivation with
//     domain-separated labels; SHA-256 where the handshake protocol fixes
//     the expansion hash.
//
// # FEK Scheme
//
// Large payloads are encrypted once under a fresh File Encryption Key,
// and only the FEK is protected by the KEM. The KEM keypair is derived
// deterministically from session key material ([Scheme.DeriveKeypair]),
// so the peer holding the same material reconstructs the matching
// keypair locally. Tampering with any component fails the transcript
// tag; wrong plaintext is never returned.
//
// # Key Hygiene
//
// Every intermediate secret (FEK, KEM shared keys, derived wrap and tag
// keys, ephemeral X25519 keys) is zeroed before the function returns,
// on success and failure paths alike. Secrets are never logged.
package crypto
