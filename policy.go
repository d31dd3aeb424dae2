package qukey

// Policy constants for per-level key consumption.
const (
	// OTPMaxPayloadBytes is the hard ceiling for L1 payloads. One-time
	// pads above this size are rejected regardless of available key
	// material, to bound quantum-key consumption.
	OTPMaxPayloadBytes = 50 * 1024

	// FEKThresholdBytes is the payload size above which L3 switches to
	// the two-layer FEK path.
	FEKThresholdBytes = 1 << 20

	// L2SeedBits is the key material consumed per L2 operation. The
	// AES key is derived from it with a KDF.
	L2SeedBits = 256

	// L3SeedBits is the key material consumed per L3 operation, sized
	// for the KEM-derived layer.
	L3SeedBits = 512
)

// RequiredKeyBits returns the key material bit length that an encryption
// of payloadBytes at the given level will consume. It is consulted before
// requesting key material, and exposed to callers who need to know how
// much to reserve.
//
// L1 requires key material at least as long as the plaintext and rejects
// payloads over OTPMaxPayloadBytes with a PolicyViolationError. L4 needs
// no local key material at all.
func RequiredKeyBits(level SecurityLevel, payloadBytes int) (int, error) {
	if payloadBytes < 0 {
		return 0, &PolicyViolationError{
			Level:  level,
			Reason: "negative payload length",
		}
	}

	switch level {
	case LevelL1:
		if payloadBytes > OTPMaxPayloadBytes {
			return 0, &PolicyViolationError{
				Level:       level,
				PayloadSize: payloadBytes,
				Reason:      "payload too large for one-time pad",
			}
		}
		return payloadBytes * 8, nil
	case LevelL2:
		return L2SeedBits, nil
	case LevelL3:
		return L3SeedBits, nil
	case LevelL4:
		return 0, nil
	default:
		return 0, &PolicyViolationError{
			Level:  level,
			Reason: "unknown security level",
		}
	}
}

// UsesFEK reports whether an L3 encryption of payloadBytes takes the
// two-layer FEK path. Payloads of exactly FEKThresholdBytes encrypt
// directly; the FEK path starts one byte above.
func UsesFEK(level SecurityLevel, payloadBytes int) bool {
	return level == LevelL3 && payloadBytes > FEKThresholdBytes
}
