package services

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestAuthLoginAndValidate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	svc := NewAuthService("test-secret", string(hash))

	token, err := svc.Login("hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.ValidateToken(token); err != nil {
		t.Fatalf("validate: %v", err)
	}

	if _, err := svc.Login("wrong"); err == nil {
		t.Fatal("expected login with wrong password to fail")
	}
	if err := svc.ValidateToken("not-a-token"); err == nil {
		t.Fatal("expected garbage token to fail validation")
	}
}

func TestAuthLoginDisabledWithoutHash(t *testing.T) {
	svc := NewAuthService("test-secret", "")
	if _, err := svc.Login("anything"); err == nil {
		t.Fatal("expected login to be disabled when no hash is configured")
	}
}
