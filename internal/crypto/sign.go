package crypto

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
)

// SignDigest signs SHA-256(plaintext) with the device's long-lived identity
// key, producing an ASN.1/DER ECDSA signature.
func SignDigest(plaintext []byte, priv *ecdsa.PrivateKey) ([]byte, error) {
	if priv == nil {
		return nil, ErrKeyDerivation
	}
	digest := sha256.Sum256(plaintext)
	return ecdsa.SignASN1(rand.Reader, priv, digest[:])
}

// VerifyDigest checks an ECDSA signature over SHA-256(plaintext). It only
// reports the result; whether a failed verification blocks delivery is the
// application's policy, not this package's.
func VerifyDigest(plaintext, signature []byte, pub *ecdsa.PublicKey) bool {
	if pub == nil || len(signature) == 0 {
		return false
	}
	digest := sha256.Sum256(plaintext)
	return ecdsa.VerifyASN1(pub, digest[:], signature)
}
