package crypto

import "fmt"

// XORKeystream XORs data with key material truncated to the data length.
// The key must be at least as long as the data; callers are responsible
// for never reusing key bytes across operations.
func XORKeystream(data, key []byte) ([]byte, error) {
	if len(key) < len(data) {
		return nil, fmt.Errorf("%w: have %d key bytes, need %d", ErrKeyTooShort, len(key), len(data))
	}

	out := make([]byte, len(data))
	for i := range data {
		out[i] = data[i] ^ key[i]
	}
	return out, nil
}
