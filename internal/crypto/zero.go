package crypto

// Zero overwrites b with zeros. Secrets are zeroed on every exit path;
// they must never be logged or serialized.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
