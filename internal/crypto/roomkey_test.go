package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"
)

// Pinned cross-implementation vectors. These must match the relay web client
// and any other implementation byte for byte; do not regenerate them.
func TestDeriveRoomKeyPinnedVectors(t *testing.T) {
	vectors := []struct {
		roomID   string
		password string
		hexKey   string
	}{
		{"test-room", "test123", "e65421233e213485d54df4bad090889087ff90bf2b0652cbf6ba866e4c04f962"},
		{"room1", "pw", "2391b748ba256c08a0a27fd923d157ffb284f5f588c3bf5621a21f0acd4aea50"},
		{"r", "", "3ba509fa049248142f7e05bd5e9722e1f60e65c2b1ddf97058b192def7a21e54"},
	}
	for _, v := range vectors {
		want, err := hex.DecodeString(v.hexKey)
		if err != nil {
			t.Fatalf("bad vector %q: %v", v.hexKey, err)
		}
		got := DeriveRoomKey(v.roomID, v.password)
		if !bytes.Equal(got, want) {
			t.Fatalf("DeriveRoomKey(%q, %q) = %x, want %s", v.roomID, v.password, got, v.hexKey)
		}
	}
}

func TestDeriveRoomKeyDeterministic(t *testing.T) {
	a := DeriveRoomKey("office", "hunter2")
	b := DeriveRoomKey("office", "hunter2")
	if !bytes.Equal(a, b) {
		t.Fatal("same inputs must yield the same key")
	}
	if len(a) != KeySize {
		t.Fatalf("key length = %d, want %d", len(a), KeySize)
	}
}

// A device that never supplies a password and a device supplying "" must land
// in the same room key. This is an explicit convention, not an accident.
func TestDeriveRoomKeyEmptyPasswordEquivalence(t *testing.T) {
	withEmpty := DeriveRoomKey("r", "")
	omitted := deriveRoomKeyNoPassword("r")
	if !bytes.Equal(withEmpty, omitted) {
		t.Fatal("empty password and absent password must derive the same key")
	}
}

// Models a caller that has no password field at all.
func deriveRoomKeyNoPassword(roomID string) []byte {
	password := ""
	return DeriveRoomKey(roomID, password)
}

func TestDeriveRoomKeyRoomSeparation(t *testing.T) {
	if bytes.Equal(DeriveRoomKey("a", "pw"), DeriveRoomKey("b", "pw")) {
		t.Fatal("different rooms must not share a key")
	}
	if bytes.Equal(DeriveRoomKey("a", "pw"), DeriveRoomKey("a", "pw2")) {
		t.Fatal("different passwords must not share a key")
	}
}
