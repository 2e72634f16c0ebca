package identity

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"errors"
	"io"
	"math/big"

	"golang.org/x/crypto/hkdf"
)

const hkdfInfoIdentity = "clipsync/identity/p384/v1"

var errSeedExhausted = errors.New("could not derive a valid scalar from seed")

// PrivateKeyFromSeed maps a seed to a P-384 private key deterministically, so
// an identity restored from its recovery phrase lands on the same keypair.
// Candidate scalars are drawn from counter-separated HKDF streams and
// rejected until one falls in [1, n-1]; for P-384 the first candidate is
// accepted with overwhelming probability.
func PrivateKeyFromSeed(seed []byte) (*ecdsa.PrivateKey, error) {
	curve := elliptic.P384()
	n := curve.Params().N
	byteLen := (curve.Params().BitSize + 7) / 8

	for counter := byte(0); counter < 64; counter++ {
		info := append([]byte(hkdfInfoIdentity), '/', counter)
		candidate := make([]byte, byteLen)
		if _, err := io.ReadFull(hkdf.New(sha256.New, seed, nil, info), candidate); err != nil {
			return nil, err
		}
		d := new(big.Int).SetBytes(candidate)
		if d.Sign() == 0 || d.Cmp(n) >= 0 {
			continue
		}
		priv := &ecdsa.PrivateKey{
			PublicKey: ecdsa.PublicKey{Curve: curve},
			D:         d,
		}
		priv.X, priv.Y = curve.ScalarBaseMult(candidate)
		return priv, nil
	}
	return nil, errSeedExhausted
}
