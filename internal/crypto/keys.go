package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"fmt"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

const (
	// KeySize is the symmetric key length shared by every derivation path.
	KeySize = 32

	deviceIDPrefix = "clip1"
)

// GenerateKey creates a fresh P-384 identity keypair. The private key is used
// for ECDH key agreement and ECDSA signing only, never for bulk encryption.
func GenerateKey() (*ecdsa.PrivateKey, error) {
	return ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
}

// NewMessageKey draws a fresh random 256-bit content key.
func NewMessageKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

// MarshalPublicKey encodes a public key as PKIX/SPKI DER, the wire form
// exchanged during pairing and carried in envelopes.
func MarshalPublicKey(pub *ecdsa.PublicKey) ([]byte, error) {
	if pub == nil || pub.Curve != elliptic.P384() {
		return nil, fmt.Errorf("%w: public key is not P-384", ErrKeyDerivation)
	}
	return x509.MarshalPKIXPublicKey(pub)
}

// ParsePublicKey decodes PKIX/SPKI DER and rejects anything that is not an
// EC public key on P-384.
func ParsePublicKey(der []byte) (*ecdsa.PublicKey, error) {
	parsed, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyDerivation, err)
	}
	pub, ok := parsed.(*ecdsa.PublicKey)
	if !ok || pub.Curve != elliptic.P384() {
		return nil, fmt.Errorf("%w: public key is not P-384", ErrKeyDerivation)
	}
	return pub, nil
}

// EncodePublicKey returns the base64 form of the SPKI DER encoding.
func EncodePublicKey(pub *ecdsa.PublicKey) (string, error) {
	der, err := MarshalPublicKey(pub)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(der), nil
}

// DecodePublicKey reverses EncodePublicKey.
func DecodePublicKey(encoded string) (*ecdsa.PublicKey, error) {
	der, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyDerivation, err)
	}
	return ParsePublicKey(der)
}

// DeviceID derives the stable device identifier from a public key.
func DeviceID(pub *ecdsa.PublicKey) (string, error) {
	der, err := MarshalPublicKey(pub)
	if err != nil {
		return "", err
	}
	h := blake2b.Sum256(der)
	return deviceIDPrefix + base58.Encode(h[:]), nil
}
