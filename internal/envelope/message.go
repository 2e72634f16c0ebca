// Package envelope builds and opens the P2P wire unit: one AES-GCM
// ciphertext, a wrapped content key per paired peer, and an ECDSA signature
// over the plaintext digest.
package envelope

import (
	"encoding/json"
	"errors"
	"fmt"

	"clipsync/go-backend/internal/crypto"
	"clipsync/go-backend/pkg/models"
)

// ErrSerialization marks malformed wire input. A transport-level problem, not
// a crypto one: decoding fails fast before any key material is touched.
var ErrSerialization = errors.New("malformed envelope")

// Message is the JSON wire shape. []byte fields marshal as standard base64
// per encoding/json, which is the cross-implementation contract.
type Message struct {
	SenderID        string                       `json:"sender_id"`
	SenderPublicKey string                       `json:"sender_public_key"`
	ContentType     models.ContentType           `json:"content_type"`
	Nonce           []byte                       `json:"nonce"`
	Ciphertext      []byte                       `json:"ciphertext"`
	WrappedKeys     map[string]crypto.WrappedKey `json:"wrapped_keys"`
	Signature       []byte                       `json:"signature"`
	Compressed      bool                         `json:"compressed"`
	Timestamp       int64                        `json:"timestamp"`
}

func Encode(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

func Decode(raw []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	if err := validate(msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}

func validate(msg Message) error {
	if msg.SenderID == "" || msg.SenderPublicKey == "" {
		return fmt.Errorf("%w: missing sender", ErrSerialization)
	}
	if !msg.ContentType.IsValid() {
		return fmt.Errorf("%w: content type %q", ErrSerialization, msg.ContentType)
	}
	if len(msg.Nonce) != crypto.NonceSize {
		return fmt.Errorf("%w: nonce length %d", ErrSerialization, len(msg.Nonce))
	}
	if len(msg.Ciphertext) < crypto.TagSize {
		return fmt.Errorf("%w: ciphertext too short", ErrSerialization)
	}
	return nil
}
