package crypto

const (
	// KDFContextL2 is the HKDF domain-separation label for L2 symmetric keys.
	KDFContextL2 = "qukey:l2:aes:v1"

	// KDFContextL3 is the HKDF domain-separation label for L3 symmetric keys.
	KDFContextL3 = "qukey:l3:pqc-wrapped:v1"

	// KDFContextFEKSeed is the HKDF label for deriving KEM keypair seeds
	// from session key material in the FEK path.
	KDFContextFEKSeed = "qukey:fek:kem-seed:v1"

	// KDFContextFEKWrap is the HKDF label for the FEK wrapping key.
	KDFContextFEKWrap = "qukey:fek:wrap:v1"

	// KDFContextFEKTag is the HKDF label for the FEK transcript tag key.
	KDFContextFEKTag = "qukey:fek:tag:v1"

	// KDFContextSession is the HKDF label for the hybrid session key.
	KDFContextSession = "qukey:hybrid:session:v1"

	// KDFContextTransport is the HKDF label for transport (SRTP) keys.
	KDFContextTransport = "qukey:hybrid:srtp:v1"

	// AESKeySize is the size of an AES-256 key in bytes.
	AESKeySize = 32
	// AESNonceSize is the size of an AES-GCM nonce in bytes.
	AESNonceSize = 12
	// AESTagSize is the size of an AES-GCM authentication tag in bytes.
	AESTagSize = 16

	// FEKSize is the size of a File Encryption Key in bytes.
	FEKSize = 32

	// SeedSize is the byte length of seeds for deterministic KEM keypair
	// derivation. Seeds must carry 64 bytes of entropy.
	SeedSize = 64

	// SharedKeySize is the size of a KEM shared secret in bytes.
	SharedKeySize = 32

	// TranscriptTagSize is the size of the FEK transcript tag in bytes.
	TranscriptTagSize = 32

	// FingerprintSize is the size of the KEM public key fingerprint in bytes.
	FingerprintSize = 16

	// SessionKeySize is the size of the derived hybrid session key in bytes.
	SessionKeySize = 32

	// SRTPMasterKeySize is the size of the SRTP master key in bytes.
	SRTPMasterKeySize = 30
	// SRTPMasterSaltSize is the size of the SRTP master salt in bytes.
	SRTPMasterSaltSize = 14
)
