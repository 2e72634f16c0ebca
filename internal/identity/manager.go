// Package identity owns the device's long-lived P-384 keypair. The private
// key is used for ECDH key agreement and ECDSA signing only, is read-only
// after creation, and never leaves the process unencrypted.
package identity

import (
	"crypto/ecdsa"
	"errors"
	"strings"
	"sync"
	"time"

	"clipsync/go-backend/internal/crypto"
	"clipsync/go-backend/pkg/models"
)

var ErrNoIdentity = errors.New("no device identity")

type Manager struct {
	mu       sync.RWMutex
	identity models.Identity
	name     string
	priv     *ecdsa.PrivateKey
	seeds    *SeedManager
}

// NewManager creates a manager with a fresh random identity.
func NewManager(displayName string) (*Manager, error) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	return newManagerFromKey(displayName, priv)
}

func newManagerFromKey(displayName string, priv *ecdsa.PrivateKey) (*Manager, error) {
	der, err := crypto.MarshalPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, err
	}
	id, err := crypto.DeviceID(&priv.PublicKey)
	if err != nil {
		return nil, err
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = "device-" + id[len(id)-6:]
	}
	return &Manager{
		identity: models.Identity{
			ID:        id,
			PublicKey: der,
			CreatedAt: time.Now().UTC(),
		},
		name:  displayName,
		priv:  priv,
		seeds: NewSeedManager(),
	}, nil
}

// CreateIdentity replaces the current identity with one backed by a new
// recovery phrase.
func (m *Manager) CreateIdentity(password string) (models.Identity, string, error) {
	mnemonic, priv, err := m.seeds.Create(password)
	if err != nil {
		return models.Identity{}, "", err
	}
	if err := m.adopt(priv); err != nil {
		return models.Identity{}, "", err
	}
	return m.Identity(), mnemonic, nil
}

// ImportIdentity restores the identity from a recovery phrase. The same
// phrase always restores the same keypair and device ID.
func (m *Manager) ImportIdentity(mnemonic, password string) (models.Identity, error) {
	_, priv, err := m.seeds.Import(mnemonic, password)
	if err != nil {
		return models.Identity{}, err
	}
	if err := m.adopt(priv); err != nil {
		return models.Identity{}, err
	}
	return m.Identity(), nil
}

func (m *Manager) adopt(priv *ecdsa.PrivateKey) error {
	der, err := crypto.MarshalPublicKey(&priv.PublicKey)
	if err != nil {
		return err
	}
	id, err := crypto.DeviceID(&priv.PublicKey)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.identity = models.Identity{ID: id, PublicKey: der, CreatedAt: time.Now().UTC()}
	m.priv = priv
	m.mu.Unlock()
	return nil
}

func (m *Manager) Identity() models.Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.identity
	out.PublicKey = append([]byte(nil), m.identity.PublicKey...)
	return out
}

func (m *Manager) ID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.identity.ID
}

func (m *Manager) DisplayName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.name
}

// PrivateKey exposes the identity key for the crypto core. Callers must
// treat it as read-only.
func (m *Manager) PrivateKey() *ecdsa.PrivateKey {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.priv
}

// ExportPublicKey returns the base64 SPKI form shared in pairing payloads.
func (m *Manager) ExportPublicKey() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.priv == nil {
		return "", ErrNoIdentity
	}
	return crypto.EncodePublicKey(&m.priv.PublicKey)
}

func (m *Manager) ExportSeed(password string) (string, error) {
	return m.seeds.Export(password)
}

func (m *Manager) ChangePassword(oldPassword, newPassword string) error {
	return m.seeds.ChangePassword(oldPassword, newPassword)
}

func (m *Manager) ValidateMnemonic(mnemonic string) bool {
	return m.seeds.ValidateMnemonic(mnemonic)
}
