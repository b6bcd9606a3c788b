package service

import (
	"errors"
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("p1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if !CheckPassword("p1", hash) {
		t.Fatalf("correct password did not verify")
	}
	if CheckPassword("wrong", hash) {
		t.Fatalf("wrong password verified")
	}
}

func TestHashPassword_Empty(t *testing.T) {
	if _, err := HashPassword(""); !errors.Is(err, ErrEmptyPassword) {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	h1, err := HashPassword("same")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h2, err := HashPassword("same")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	// each digest embeds its own salt, so two hashes of the same
	// plaintext differ but both verify
	if h1 == h2 {
		t.Fatalf("expected distinct digests for repeated hashing")
	}
	if !CheckPassword("same", h1) || !CheckPassword("same", h2) {
		t.Fatalf("digests did not verify")
	}
}

func TestCheckPassword_MalformedDigest(t *testing.T) {
	cases := []string{"", "garbage", "$2a$banana", "plaintext-stored-by-mistake"}
	for _, digest := range cases {
		if CheckPassword("anything", digest) {
			t.Fatalf("malformed digest %q verified", digest)
		}
	}
}
