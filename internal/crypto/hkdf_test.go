package crypto

import (
	"bytes"
	"io"
	"testing"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	secret := []byte("shared key material")

	a, err := DeriveKey(secret, []byte("salt"), []byte("context"), 32)
	if err != nil {
		t.Fatal(err)
	}
	b, err := DeriveKey(secret, []byte("salt"), []byte("context"), 32)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(a, b) {
		t.Error("same inputs produced different keys")
	}
}

func TestDeriveKey_DomainSeparation(t *testing.T) {
	secret := []byte("shared key material")

	tests := []struct {
		name  string
		saltA []byte
		infoA []byte
		saltB []byte
		infoB []byte
	}{
		{"different info", nil, []byte("wrap"), nil, []byte("tag")},
		{"different salt", []byte("a"), []byte("ctx"), []byte("b"), []byte("ctx")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := DeriveKey(secret, tt.saltA, tt.infoA, 32)
			if err != nil {
				t.Fatal(err)
			}
			b, err := DeriveKey(secret, tt.saltB, tt.infoB, 32)
			if err != nil {
				t.Fatal(err)
			}
			if bytes.Equal(a, b) {
				t.Error("separated derivations produced the same key")
			}
		})
	}
}

func TestDeriveKey256_DiffersFromSHA512(t *testing.T) {
	secret := []byte("shared key material")

	a, err := DeriveKey(secret, nil, []byte("ctx"), 32)
	if err != nil {
		t.Fatal(err)
	}
	b, err := DeriveKey256(secret, nil, []byte("ctx"), 32)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(a, b) {
		t.Error("SHA-512 and SHA-256 expansions coincided")
	}
}

func TestKDFReader_Deterministic(t *testing.T) {
	secret := []byte("seed material")

	read := func() []byte {
		buf := make([]byte, 128)
		if _, err := io.ReadFull(KDFReader(secret, nil, []byte("csprng")), buf); err != nil {
			t.Fatal(err)
		}
		return buf
	}

	if !bytes.Equal(read(), read()) {
		t.Error("KDFReader stream is not deterministic")
	}
}
