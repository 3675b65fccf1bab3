package service

import (
	"errors"
	"testing"
	"time"
)

func TestUserJWTRoundTrip(t *testing.T) {
	token, expiresAt, err := GenerateUserJWT("secret-key", 42, "glow@example.com", time.Hour)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expiry should be in the future")
	}
	claims, err := ParseUserJWT("secret-key", token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "glow@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseUserJWTRejects(t *testing.T) {
	token, _, err := GenerateUserJWT("secret-key", 42, "", time.Hour)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	if _, err := ParseUserJWT("other-key", token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("wrong key want ErrTokenInvalid got %v", err)
	}
	if _, err := ParseUserJWT("", token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("empty secret want ErrTokenInvalid got %v", err)
	}
	if _, _, err := GenerateUserJWT("secret-key", 0, "", time.Hour); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("zero user want ErrTokenInvalid got %v", err)
	}
}
