package qukey

import (
	"errors"
	"testing"
)

func TestRequiredKeyBits(t *testing.T) {
	tests := []struct {
		name         string
		level        SecurityLevel
		payloadBytes int
		want         int
		wantErr      error
	}{
		{"L1 empty", LevelL1, 0, 0, nil},
		{"L1 small", LevelL1, 1000, 8000, nil},
		{"L1 49KB", LevelL1, 49 * 1024, 49 * 1024 * 8, nil},
		{"L1 at cap", LevelL1, OTPMaxPayloadBytes, OTPMaxPayloadBytes * 8, nil},
		{"L1 over cap", LevelL1, OTPMaxPayloadBytes + 1, 0, ErrPolicyViolation},
		{"L1 60KB", LevelL1, 60 * 1024, 0, ErrPolicyViolation},
		{"L2 fixed", LevelL2, 10 << 20, 256, nil},
		{"L3 fixed", LevelL3, 10 << 20, 512, nil},
		{"L4 none", LevelL4, 10 << 20, 0, nil},
		{"negative payload", LevelL2, -1, 0, ErrPolicyViolation},
		{"unknown level", SecurityLevel(9), 100, 0, ErrPolicyViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RequiredKeyBits(tt.level, tt.payloadBytes)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("RequiredKeyBits() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("RequiredKeyBits() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("RequiredKeyBits() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRequiredKeyBits_OversizedOTPDetails(t *testing.T) {
	_, err := RequiredKeyBits(LevelL1, 60*1024)

	var pvErr *PolicyViolationError
	if !errors.As(err, &pvErr) {
		t.Fatalf("expected PolicyViolationError, got %v", err)
	}
	if pvErr.Level != LevelL1 {
		t.Errorf("Level = %v, want L1", pvErr.Level)
	}
	if pvErr.PayloadSize != 60*1024 {
		t.Errorf("PayloadSize = %d, want %d", pvErr.PayloadSize, 60*1024)
	}
}

func TestUsesFEK(t *testing.T) {
	tests := []struct {
		name         string
		level        SecurityLevel
		payloadBytes int
		want         bool
	}{
		{"L3 small", LevelL3, 1024, false},
		{"L3 at threshold", LevelL3, FEKThresholdBytes, false},
		{"L3 over threshold", LevelL3, FEKThresholdBytes + 1, true},
		{"L3 large", LevelL3, 20 << 20, true},
		{"L2 large", LevelL2, 20 << 20, false},
		{"L1 large", LevelL1, 20 << 20, false},
		{"L4 large", LevelL4, 20 << 20, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UsesFEK(tt.level, tt.payloadBytes); got != tt.want {
				t.Errorf("UsesFEK(%v, %d) = %v, want %v", tt.level, tt.payloadBytes, got, tt.want)
			}
		})
	}
}
