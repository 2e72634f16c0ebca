package crypto

import (
	"crypto/ecdsa"
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	"clipsync/go-backend/pkg/models"
)

// WrappedKey is one per-recipient encryption of a message key: a 12-byte
// nonce followed by the ChaCha20-Poly1305 sealed key. ChaCha is a deliberate
// choice distinct from the AES-GCM used for content, keeping the wrap domain
// separated from the bulk domain.
type WrappedKey []byte

// WrapKeyForPeers encrypts messageKey once per paired peer, keyed by the
// pairwise ECDH secret with that peer. The peers slice is a snapshot taken by
// the caller; this function holds no locks and touches no shared state. An
// empty snapshot yields an empty map, which is valid: a solo device produces
// an envelope nobody can read, and whether to send it is the transport's
// call.
func WrapKeyForPeers(messageKey []byte, peers []models.Peer, own *ecdsa.PrivateKey) (map[string]WrappedKey, error) {
	wrapped := make(map[string]WrappedKey, len(peers))
	for _, peer := range peers {
		pub, err := ParsePublicKey(peer.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("peer %s: %w", peer.ID, err)
		}
		entry, err := wrapKey(messageKey, own, pub)
		if err != nil {
			return nil, fmt.Errorf("peer %s: %w", peer.ID, err)
		}
		wrapped[peer.ID] = entry
	}
	return wrapped, nil
}

// UnwrapKey recovers the message key from a wrapped-key map. A missing entry
// for ownID is ErrNotForMe; an entry that fails to open is ErrAuthFailed.
func UnwrapKey(wrapped map[string]WrappedKey, ownID string, own *ecdsa.PrivateKey, senderPub *ecdsa.PublicKey) ([]byte, error) {
	entry, ok := wrapped[ownID]
	if !ok {
		return nil, ErrNotForMe
	}
	if len(entry) < chacha20poly1305.NonceSize+TagSize {
		return nil, ErrAuthFailed
	}
	pairwise, err := DerivePairwiseKey(own, senderPub)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(pairwise)
	if err != nil {
		return nil, ErrAuthFailed
	}
	nonce, sealed := entry[:chacha20poly1305.NonceSize], entry[chacha20poly1305.NonceSize:]
	key, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}
	return key, nil
}

func wrapKey(messageKey []byte, own *ecdsa.PrivateKey, peerPub *ecdsa.PublicKey) (WrappedKey, error) {
	pairwise, err := DerivePairwiseKey(own, peerPub)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(pairwise)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return WrappedKey(aead.Seal(nonce, nonce, messageKey, nil)), nil
}
