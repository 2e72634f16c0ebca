// Package relay implements the cloud-relay envelope: a single room-wide
// symmetric key derived from room ID and password, no pairing, no per-peer
// wrapping, no signatures. Interoperability only requires that two devices
// agree byte for byte on room ID and password.
package relay

import (
	"errors"
	"fmt"

	"clipsync/go-backend/internal/crypto"
)

var (
	ErrSerialization = errors.New("malformed relay packet")
	ErrNoCipher      = errors.New("room cipher not configured")
)

// RoomCipher binds the derived room key. Any device computing the same
// (roomID, password) derives the same cipher; no per-device state exists on
// this path. An absent password is the empty string.
type RoomCipher struct {
	key []byte
}

func NewRoomCipher(roomID, password string) *RoomCipher {
	return &RoomCipher{key: crypto.DeriveRoomKey(roomID, password)}
}

// Seal encrypts content into the wire blob: nonce || ciphertext || tag.
func (c *RoomCipher) Seal(content []byte) ([]byte, error) {
	if c == nil {
		return nil, ErrNoCipher
	}
	nonce, ciphertext, err := crypto.Encrypt(content, c.key)
	if err != nil {
		return nil, err
	}
	return append(nonce, ciphertext...), nil
}

// Open splits and decrypts a wire blob. The nonce is always the first 12
// bytes, the tag the last 16.
func (c *RoomCipher) Open(blob []byte) ([]byte, error) {
	if c == nil {
		return nil, ErrNoCipher
	}
	if len(blob) < crypto.NonceSize+crypto.TagSize {
		return nil, fmt.Errorf("%w: blob too short", ErrSerialization)
	}
	return crypto.Decrypt(blob[:crypto.NonceSize], blob[crypto.NonceSize:], c.key)
}
