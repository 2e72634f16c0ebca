package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

const (
	// NonceSize is the GCM nonce length. A nonce is drawn fresh from the
	// CSPRNG on every Encrypt call; reusing one under the same key destroys
	// GCM's guarantees entirely, so no API here accepts a caller nonce.
	NonceSize = 12

	// TagSize is the GCM tag length, appended to the ciphertext.
	TagSize = 16

	compressionLevel = 6
)

// Encrypt seals plaintext under a 256-bit key with AES-256-GCM. The returned
// ciphertext carries the 16-byte tag appended per Go AEAD convention.
func Encrypt(plaintext, key []byte) (nonce, ciphertext []byte, err error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}
	nonce = make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, err
	}
	return nonce, aead.Seal(nil, nonce, plaintext, nil), nil
}

// Decrypt opens an AES-256-GCM ciphertext. Every failure mode collapses into
// ErrAuthFailed; no partial plaintext ever escapes.
func Decrypt(nonce, ciphertext, key []byte) ([]byte, error) {
	if len(nonce) != NonceSize || len(ciphertext) < TagSize {
		return nil, ErrAuthFailed
	}
	aead, err := newGCM(key)
	if err != nil {
		return nil, ErrAuthFailed
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes", ErrKeyDerivation, KeySize)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Compress runs the optional pre-encryption pass. It returns the compressed
// bytes and true only when compression actually pays for itself (output under
// 90% of input); otherwise the input comes back untouched.
func Compress(data []byte) ([]byte, bool) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, compressionLevel)
	if err != nil {
		return data, false
	}
	if _, err := w.Write(data); err != nil {
		return data, false
	}
	if err := w.Close(); err != nil {
		return data, false
	}
	if 10*buf.Len() >= 9*len(data) {
		return data, false
	}
	return buf.Bytes(), true
}

// Decompress reverses Compress after a successful decrypt.
func Decompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	return out, nil
}
