package envelope

import (
	"crypto/ecdsa"
	"time"

	"clipsync/go-backend/internal/crypto"
	"clipsync/go-backend/pkg/models"
)

// Result is what Open hands back to the clipboard-apply side. Verified only
// reports the signature check; whether an unverified message is applied or
// merely flagged is the application's policy.
type Result struct {
	Plaintext   []byte
	ContentType models.ContentType
	SenderID    string
	Verified    bool
}

// Seal runs the full send path: optional compression, a fresh content key
// under AES-GCM, a ChaCha20-Poly1305 wrap of that key per recipient, and an
// ECDSA signature over the plaintext digest. recipients is a snapshot taken
// by the caller; an empty snapshot is valid and produces an envelope nobody
// can read.
func Seal(plaintext []byte, contentType models.ContentType, senderID string, senderKey *ecdsa.PrivateKey, recipients []models.Peer) (Message, error) {
	body := plaintext
	compressed := false
	if contentType.Compressible() {
		body, compressed = crypto.Compress(plaintext)
	}

	messageKey, err := crypto.NewMessageKey()
	if err != nil {
		return Message{}, err
	}
	nonce, ciphertext, err := crypto.Encrypt(body, messageKey)
	if err != nil {
		return Message{}, err
	}
	wrapped, err := crypto.WrapKeyForPeers(messageKey, recipients, senderKey)
	if err != nil {
		return Message{}, err
	}
	// The signature covers the original plaintext, so receivers verify after
	// decompression.
	signature, err := crypto.SignDigest(plaintext, senderKey)
	if err != nil {
		return Message{}, err
	}
	senderPub, err := crypto.EncodePublicKey(&senderKey.PublicKey)
	if err != nil {
		return Message{}, err
	}

	return Message{
		SenderID:        senderID,
		SenderPublicKey: senderPub,
		ContentType:     contentType,
		Nonce:           nonce,
		Ciphertext:      ciphertext,
		WrappedKeys:     wrapped,
		Signature:       signature,
		Compressed:      compressed,
		Timestamp:       time.Now().UnixMilli(),
	}, nil
}

// Open reverses Seal for one recipient: unwrap the content key with our own
// pairwise secret, decrypt, decompress if flagged, then verify the signature
// over the recovered plaintext.
func Open(msg Message, ownID string, ownKey *ecdsa.PrivateKey) (Result, error) {
	if err := validate(msg); err != nil {
		return Result{}, err
	}
	senderPub, err := crypto.DecodePublicKey(msg.SenderPublicKey)
	if err != nil {
		return Result{}, err
	}
	messageKey, err := crypto.UnwrapKey(msg.WrappedKeys, ownID, ownKey, senderPub)
	if err != nil {
		return Result{}, err
	}
	body, err := crypto.Decrypt(msg.Nonce, msg.Ciphertext, messageKey)
	if err != nil {
		return Result{}, err
	}
	plaintext := body
	if msg.Compressed {
		if plaintext, err = crypto.Decompress(body); err != nil {
			return Result{}, err
		}
	}

	return Result{
		Plaintext:   plaintext,
		ContentType: msg.ContentType,
		SenderID:    msg.SenderID,
		Verified:    crypto.VerifyDigest(plaintext, msg.Signature, senderPub),
	}, nil
}
