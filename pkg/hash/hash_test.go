package hash

import "testing"

func TestHashPassword(t *testing.T) {
	h, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if h == "s3cret" {
		t.Fatalf("HashPassword() returned the plain password")
	}
	if !CheckPasswordHash("s3cret", h) {
		t.Fatalf("CheckPasswordHash() = false for the right password")
	}
	if CheckPasswordHash("wrong", h) {
		t.Fatalf("CheckPasswordHash() = true for a wrong password")
	}
}
