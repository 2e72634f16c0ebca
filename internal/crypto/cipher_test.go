package crypto

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key, err := NewMessageKey()
	if err != nil {
		t.Fatalf("new key: %v", err)
	}
	for _, plaintext := range [][]byte{
		[]byte("hello"),
		{},
		[]byte(strings.Repeat("clipboard ", 1000)),
		{0x00, 0xff, 0x10, 0x80},
	} {
		nonce, ciphertext, err := Encrypt(plaintext, key)
		if err != nil {
			t.Fatalf("encrypt: %v", err)
		}
		if len(nonce) != NonceSize {
			t.Fatalf("nonce length = %d, want %d", len(nonce), NonceSize)
		}
		if len(ciphertext) != len(plaintext)+TagSize {
			t.Fatalf("ciphertext length = %d, want %d", len(ciphertext), len(plaintext)+TagSize)
		}
		got, err := Decrypt(nonce, ciphertext, key)
		if err != nil {
			t.Fatalf("decrypt: %v", err)
		}
		if !bytes.Equal(got, plaintext) {
			t.Fatal("round trip mismatch")
		}
	}
}

func TestDecryptWrongKeyFailsOpaque(t *testing.T) {
	key, _ := NewMessageKey()
	other, _ := NewMessageKey()
	nonce, ciphertext, err := Encrypt([]byte("secret"), key)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if _, err := Decrypt(nonce, ciphertext, other); !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
}

// Flipping any single bit in nonce or ciphertext (tag included) must fail
// closed, never produce wrong plaintext.
func TestDecryptTamperDetection(t *testing.T) {
	key, _ := NewMessageKey()
	nonce, ciphertext, err := Encrypt([]byte("tamper target"), key)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	for i := range ciphertext {
		mangled := append([]byte(nil), ciphertext...)
		mangled[i] ^= 0x01
		if _, err := Decrypt(nonce, mangled, key); !errors.Is(err, ErrAuthFailed) {
			t.Fatalf("bit flip at ciphertext[%d] not detected: %v", i, err)
		}
	}
	for i := range nonce {
		mangled := append([]byte(nil), nonce...)
		mangled[i] ^= 0x01
		if _, err := Decrypt(mangled, ciphertext, key); !errors.Is(err, ErrAuthFailed) {
			t.Fatalf("bit flip at nonce[%d] not detected: %v", i, err)
		}
	}
}

func TestDecryptRejectsShortInput(t *testing.T) {
	key, _ := NewMessageKey()
	if _, err := Decrypt([]byte{1, 2, 3}, make([]byte, TagSize), key); !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed for short nonce, got %v", err)
	}
	if _, err := Decrypt(make([]byte, NonceSize), []byte{1, 2, 3}, key); !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed for short ciphertext, got %v", err)
	}
}

func TestEncryptNonceUniqueness(t *testing.T) {
	key, _ := NewMessageKey()
	const rounds = 10000
	seen := make(map[string]struct{}, rounds)
	for i := 0; i < rounds; i++ {
		nonce, _, err := Encrypt(nil, key)
		if err != nil {
			t.Fatalf("encrypt: %v", err)
		}
		if _, dup := seen[string(nonce)]; dup {
			t.Fatalf("nonce collision after %d encryptions", i)
		}
		seen[string(nonce)] = struct{}{}
	}
}

func TestCompressOnlyWhenItPays(t *testing.T) {
	redundant := []byte(strings.Repeat("the same clipboard line over and over\n", 200))
	compressed, ok := Compress(redundant)
	if !ok {
		t.Fatal("highly redundant text should compress")
	}
	if len(compressed) >= len(redundant) {
		t.Fatal("compressed output is not smaller")
	}
	restored, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(restored, redundant) {
		t.Fatal("compress round trip mismatch")
	}

	// Tiny inputs do not clear the 90% bar and must pass through untouched.
	tiny := []byte("hi")
	out, ok := Compress(tiny)
	if ok {
		t.Fatal("two bytes should not be flagged compressed")
	}
	if !bytes.Equal(out, tiny) {
		t.Fatal("incompressible input must come back unchanged")
	}
}
