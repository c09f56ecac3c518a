package utils

import (
	"errors"
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "secret1") {
		t.Fatal("expected password to match")
	}
	if CheckPassword(hash, "secret2") {
		t.Fatal("expected wrong password to fail")
	}
}

func TestValidateNewPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		confirm  string
		want     error
	}{
		{"ok", "secret1", "secret1", nil},
		{"mismatch", "secret1", "secret2", ErrPasswordMismatch},
		{"short", "abc", "abc", ErrPasswordTooShort},
		{"exactly six", "abcdef", "abcdef", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateNewPassword(tt.password, tt.confirm); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
