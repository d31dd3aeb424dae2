package qukey

import (
	"encoding/json"
	"fmt"
)

// SecurityLevel selects the algorithmic policy for one encryption
// operation. Exactly one level is active per operation.
type SecurityLevel int

// The four mutually exclusive security levels.
const (
	// LevelL1 is a true one-time pad: perfect secrecy, key length equal
	// to the plaintext length, bounded payload size.
	LevelL1 SecurityLevel = iota + 1
	// LevelL2 is symmetric AEAD with a quantum-derived key.
	LevelL2
	// LevelL3 is post-quantum protected: KEM-wrapped symmetric key, with
	// the two-layer FEK path for large payloads.
	LevelL3
	// LevelL4 applies no local encryption; security is delegated to the
	// transport layer.
	LevelL4
)

var levelNames = map[SecurityLevel]string{
	LevelL1: "L1",
	LevelL2: "L2",
	LevelL3: "L3",
	LevelL4: "L4",
}

// String returns the wire name of the level ("L1".."L4").
func (l SecurityLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("SecurityLevel(%d)", int(l))
}

// Valid reports whether l is one of the four defined levels.
func (l SecurityLevel) Valid() bool {
	_, ok := levelNames[l]
	return ok
}

// ParseSecurityLevel converts a wire name into a SecurityLevel.
func ParseSecurityLevel(s string) (SecurityLevel, error) {
	for l, name := range levelNames {
		if name == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown security level %q", s)
}

// MarshalJSON encodes the level as its wire name.
func (l SecurityLevel) MarshalJSON() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid security level %d", int(l))
	}
	return json.Marshal(l.String())
}

// UnmarshalJSON decodes a level from its wire name.
func (l *SecurityLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseSecurityLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
