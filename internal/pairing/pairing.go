// Package pairing implements the one-time handshake that establishes mutual
// knowledge of public keys between two devices. The initiator serializes its
// payload into a QR code; the responder scans it and returns its own payload
// over the reversed channel. The payload is not secret but everything in it
// is authenticated after pairing by the signature layer.
package pairing

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"clipsync/go-backend/internal/crypto"
	"clipsync/go-backend/internal/platform/ratelimiter"
	"clipsync/go-backend/pkg/models"
)

var (
	ErrInvalidPairingData = errors.New("invalid pairing data")
	ErrThrottled          = errors.New("pairing attempts throttled")
	ErrWrongState         = errors.New("operation not valid in current state")
)

type State int

const (
	StateIdle State = iota
	StateAwaitingScan  // initiator, QR shown
	StateAwaitingEntry // responder, waiting for a scanned payload
	StateKeysExchanged
	StatePaired
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingScan:
		return "awaiting_scan"
	case StateAwaitingEntry:
		return "awaiting_entry"
	case StateKeysExchanged:
		return "keys_exchanged"
	case StatePaired:
		return "paired"
	default:
		return "unknown"
	}
}

type Role int

const (
	RoleInitiator Role = iota
	RoleResponder
)

// Payload is the QR/return-channel unit. network_address fields let the peer
// connect back; they are transport hints, not trusted data.
type Payload struct {
	DeviceID   string    `json:"device_id"`
	DeviceName string    `json:"device_name"`
	IP         string    `json:"ip"`
	Port       int       `json:"port"`
	PublicKey  string    `json:"public_key"`
	Timestamp  time.Time `json:"timestamp"`
}

// Session drives one pairing attempt. The caller owns timeouts: on expiry it
// calls Reset and the session returns to idle. No timers run here.
type Session struct {
	mu      sync.Mutex
	role    Role
	state   State
	self    Payload
	peer    *models.Peer
	limiter *ratelimiter.MapLimiter
}

// Pairing payload floods are cheap to mount by pointing a camera at garbage;
// cap validation attempts per remote device.
const (
	attemptRPS   = 1
	attemptBurst = 5
)

func NewInitiator(self Payload) *Session {
	return &Session{
		role:    RoleInitiator,
		state:   StateAwaitingScan,
		self:    self,
		limiter: ratelimiter.New(attemptRPS, attemptBurst, 10*time.Minute),
	}
}

func NewResponder(self Payload) *Session {
	return &Session{
		role:    RoleResponder,
		state:   StateAwaitingEntry,
		self:    self,
		limiter: ratelimiter.New(attemptRPS, attemptBurst, 10*time.Minute),
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// QRPayload serializes this side's payload for display or the return call.
func (s *Session) QRPayload() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := json.Marshal(s.self)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Submit feeds the remote payload into the state machine: the responder's
// scanned QR data, or the responder payload returned to the initiator. On
// success the session moves to KeysExchanged. A malformed payload leaves the
// state untouched.
func (s *Session) Submit(raw string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.role == RoleInitiator && s.state == StateAwaitingScan:
	case s.role == RoleResponder && s.state == StateAwaitingEntry:
	default:
		return fmt.Errorf("%w: %s", ErrWrongState, s.state)
	}

	payload, err := parsePayload(raw)
	if err != nil {
		return err
	}
	if !s.limiter.Allow(payload.DeviceID, now) {
		return ErrThrottled
	}
	if payload.DeviceID == s.self.DeviceID {
		return fmt.Errorf("%w: cannot pair with self", ErrInvalidPairingData)
	}
	pub, err := crypto.DecodePublicKey(payload.PublicKey)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPairingData, err)
	}
	der, err := crypto.MarshalPublicKey(pub)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPairingData, err)
	}

	s.peer = &models.Peer{
		ID:          payload.DeviceID,
		DisplayName: payload.DeviceName,
		PublicKey:   der,
		PairedAt:    now.UTC(),
	}
	s.state = StateKeysExchanged
	return nil
}

// Complete finishes the handshake and hands back the peer entry for the
// store. Terminal: the session stays Paired until Reset.
func (s *Session) Complete() (models.Peer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateKeysExchanged || s.peer == nil {
		return models.Peer{}, fmt.Errorf("%w: %s", ErrWrongState, s.state)
	}
	s.state = StatePaired
	peer := *s.peer
	peer.PublicKey = append([]byte(nil), s.peer.PublicKey...)
	return peer, nil
}

// Reset returns to idle, e.g. after a caller-side timeout.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle
	s.peer = nil
}

func parsePayload(raw string) (Payload, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Payload{}, fmt.Errorf("%w: empty payload", ErrInvalidPairingData)
	}
	var payload Payload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPairingData, err)
	}
	if strings.TrimSpace(payload.DeviceID) == "" {
		return Payload{}, fmt.Errorf("%w: missing device_id", ErrInvalidPairingData)
	}
	if strings.TrimSpace(payload.PublicKey) == "" {
		return Payload{}, fmt.Errorf("%w: missing public_key", ErrInvalidPairingData)
	}
	return payload, nil
}
