package utils

import "testing"

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"player@example.com", true},
		{"first.last+tag@club.example.org", true},
		{"", false},
		{"no-at-sign", false},
		{"user@localhost", false},
		{"Player <player@example.com>", false},
		{"two@@example.com", false},
	}
	for _, tt := range tests {
		if got := IsValidEmail(tt.email); got != tt.want {
			t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret!" {
		t.Fatal("hash must not equal the password")
	}
	if !CheckPasswordHash("s3cret!", hash) {
		t.Fatal("expected password to match its hash")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Fatal("expected a different password to be rejected")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Player@Example.COM "); got != "player@example.com" {
		t.Fatalf("NormalizeEmail = %q", got)
	}
}
