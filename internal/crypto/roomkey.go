package crypto

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"
)

const (
	roomKeyIterations = 100_000
	roomKeySaltPrefix = "clipboard-sync-"
)

// DeriveRoomKey turns a relay room ID and optional password into the room's
// AES-256 key. Deterministic and an interoperability contract: every
// implementation must produce byte-identical output for identical inputs, and
// an absent password must be treated as the empty string, not as "skip
// encryption". The pinned vector lives in the tests.
func DeriveRoomKey(roomID, password string) []byte {
	material := []byte(roomID + password)
	salt := []byte(roomKeySaltPrefix + roomID)
	return pbkdf2.Key(material, salt, roomKeyIterations, KeySize, sha256.New)
}
