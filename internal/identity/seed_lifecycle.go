package identity

import (
	"crypto/ecdsa"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/tyler-smith/go-bip39"

	"clipsync/go-backend/internal/securestore"
)

var (
	ErrInvalidMnemonic  = errors.New("invalid mnemonic")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrSeedNotAvailable = errors.New("seed is not available")
	ErrPasswordRequired = errors.New("password is required")
	ErrMnemonicRequired = errors.New("mnemonic is required")
	ErrPasswordLocked   = errors.New("password attempts are temporarily locked")
)

const (
	maxPasswordAttempts = 5
	passwordLockWindow  = 5 * time.Minute
)

// SeedManager owns the bip39 recovery phrase backing a device identity. The
// phrase is held only inside a passphrase-encrypted envelope; revealing it
// requires the password and is throttled after repeated failures.
type SeedManager struct {
	mu             sync.RWMutex
	envelope       *securestore.Envelope
	failedAttempts int
	lockedUntil    time.Time
	now            func() time.Time
}

func NewSeedManager() *SeedManager {
	return &SeedManager{now: time.Now}
}

func newSeedManagerWithClock(now func() time.Time) *SeedManager {
	return &SeedManager{now: now}
}

// Create generates a fresh 256-bit mnemonic and derives the identity key
// from it.
func (s *SeedManager) Create(password string) (string, *ecdsa.PrivateKey, error) {
	if strings.TrimSpace(password) == "" {
		return "", nil, ErrPasswordRequired
	}
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", nil, err
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", nil, err
	}
	return s.Import(mnemonic, password)
}

// Import restores an identity from a recovery phrase and re-seals the phrase
// under the given password.
func (s *SeedManager) Import(mnemonic, password string) (string, *ecdsa.PrivateKey, error) {
	mnemonic = strings.TrimSpace(mnemonic)
	if mnemonic == "" {
		return "", nil, ErrMnemonicRequired
	}
	if strings.TrimSpace(password) == "" {
		return "", nil, ErrPasswordRequired
	}
	if !bip39.IsMnemonicValid(mnemonic) {
		return "", nil, ErrInvalidMnemonic
	}

	priv, err := PrivateKeyFromSeed(bip39.NewSeed(mnemonic, ""))
	if err != nil {
		return "", nil, err
	}
	envelope, err := securestore.EncryptEnvelope(password, []byte(mnemonic))
	if err != nil {
		return "", nil, err
	}

	s.mu.Lock()
	s.envelope = envelope
	s.failedAttempts = 0
	s.lockedUntil = time.Time{}
	s.mu.Unlock()
	return mnemonic, priv, nil
}

// Export reveals the recovery phrase after password verification.
func (s *SeedManager) Export(password string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.envelope == nil {
		return "", ErrSeedNotAvailable
	}
	now := s.now()
	if now.Before(s.lockedUntil) {
		return "", ErrPasswordLocked
	}

	plain, err := securestore.DecryptEnvelope(password, s.envelope)
	if err != nil {
		s.failedAttempts++
		if s.failedAttempts >= maxPasswordAttempts {
			s.lockedUntil = now.Add(passwordLockWindow)
			s.failedAttempts = 0
		}
		return "", ErrInvalidPassword
	}
	s.failedAttempts = 0
	return string(plain), nil
}

// ChangePassword re-seals the phrase under a new password.
func (s *SeedManager) ChangePassword(oldPassword, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return ErrPasswordRequired
	}
	mnemonic, err := s.Export(oldPassword)
	if err != nil {
		return err
	}
	envelope, err := securestore.EncryptEnvelope(newPassword, []byte(mnemonic))
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.envelope = envelope
	s.mu.Unlock()
	return nil
}

func (s *SeedManager) ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(strings.TrimSpace(mnemonic))
}
