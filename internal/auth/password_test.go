package auth

import (
	"errors"
	"strings"
	"testing"
)

// newTestPasswordService returns a PasswordService with bcrypt cost 4,
// the minimum allowed, so tests run in milliseconds.
func newTestPasswordService() *PasswordService {
	return NewPasswordService(4)
}

func TestNewPasswordService_OutOfRangeCostFallsBack(t *testing.T) {
	for _, cost := range []int{0, 3, 99} {
		if got := NewPasswordService(cost).cost; got != DefaultPasswordCost {
			t.Errorf("NewPasswordService(%d).cost = %d, want %d", cost, got, DefaultPasswordCost)
		}
	}
}

func TestHash_OutputLooksBcrypt(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("password123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("Hash() does not look like a bcrypt hash: %q", hash)
	}
}

func TestHash_SamePasswordProducesDifferentHashes(t *testing.T) {
	ps := newTestPasswordService()

	hash1, _ := ps.Hash("same-password")
	hash2, _ := ps.Hash("same-password")

	if hash1 == hash2 {
		t.Error("Hash() produced identical hashes for the same password (salt must be random)")
	}
}

func TestHash_Rejects(t *testing.T) {
	ps := newTestPasswordService()

	if _, err := ps.Hash(""); err == nil {
		t.Error("Hash(\"\") should fail")
	}
	if _, err := ps.Hash(strings.Repeat("a", 73)); err == nil {
		t.Error("Hash() should fail for passwords longer than 72 bytes")
	}
	if _, err := ps.Hash(strings.Repeat("a", 72)); err != nil {
		t.Errorf("Hash() should accept a 72-byte password, got error: %v", err)
	}
}

func TestVerify(t *testing.T) {
	ps := newTestPasswordService()
	hash, err := ps.Hash("correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	tests := []struct {
		name      string
		hash      string
		password  string
		wantErr   bool
		wantMatch bool // whether the error must be ErrInvalidPassword
	}{
		{"correct password", hash, "correct-horse-battery-staple", false, false},
		{"wrong password", hash, "wrong", true, true},
		{"empty password", hash, "", true, true},
		{"empty hash", "", "anything", true, true},
		{"garbage hash", "not-a-valid-bcrypt-hash", "password", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ps.Verify(tt.hash, tt.password)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Verify() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantMatch && !errors.Is(err, ErrInvalidPassword) {
				t.Errorf("Verify() error = %v, want ErrInvalidPassword", err)
			}
		})
	}
}
