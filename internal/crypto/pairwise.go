package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const pairwiseInfo = "clipboard-sync"

// DerivePairwiseKey runs ECDH on P-384 and expands the x-coordinate through
// HKDF-SHA256 into a 256-bit key dedicated to key wrapping. Symmetric by
// construction: (A_priv, B_pub) and (B_priv, A_pub) yield the same key. The
// HKDF info string separates this key from every other cipher domain.
func DerivePairwiseKey(own *ecdsa.PrivateKey, peer *ecdsa.PublicKey) ([]byte, error) {
	if own == nil || peer == nil {
		return nil, fmt.Errorf("%w: missing key", ErrKeyDerivation)
	}
	if own.Curve != elliptic.P384() || peer.Curve != elliptic.P384() {
		return nil, fmt.Errorf("%w: key is not P-384", ErrKeyDerivation)
	}
	ownECDH, err := own.ECDH()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyDerivation, err)
	}
	peerECDH, err := peer.ECDH()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyDerivation, err)
	}
	shared, err := ownECDH.ECDH(peerECDH)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyDerivation, err)
	}

	reader := hkdf.New(sha256.New, shared, nil, []byte(pairwiseInfo))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, err
	}
	return key, nil
}
