package identity

import (
	"crypto/x509"
	"time"

	"clipsync/go-backend/internal/securestore"
)

type keystoreRecord struct {
	DisplayName string    `json:"display_name"`
	PrivateKey  []byte    `json:"private_key"` // SEC 1 DER
	CreatedAt   time.Time `json:"created_at"`
}

// SaveToFile persists the identity key inside a securestore envelope. This is
// the only serialized form the private key ever takes.
func (m *Manager) SaveToFile(path, passphrase string) error {
	m.mu.RLock()
	priv := m.priv
	name := m.name
	createdAt := m.identity.CreatedAt
	m.mu.RUnlock()

	if priv == nil {
		return ErrNoIdentity
	}
	der, err := x509.MarshalECPrivateKey(priv)
	if err != nil {
		return err
	}
	return securestore.WriteEncryptedJSON(path, passphrase, keystoreRecord{
		DisplayName: name,
		PrivateKey:  der,
		CreatedAt:   createdAt,
	})
}

// LoadFromFile restores a manager from an encrypted keystore file.
func LoadFromFile(path, passphrase string) (*Manager, error) {
	var record keystoreRecord
	if err := securestore.ReadDecryptedJSON(path, passphrase, &record); err != nil {
		return nil, err
	}
	priv, err := x509.ParseECPrivateKey(record.PrivateKey)
	if err != nil {
		return nil, err
	}
	m, err := newManagerFromKey(record.DisplayName, priv)
	if err != nil {
		return nil, err
	}
	if !record.CreatedAt.IsZero() {
		m.identity.CreatedAt = record.CreatedAt
	}
	return m, nil
}
