package models

import "time"

// ContentType tags clipboard payloads at the envelope boundary. The type is
// resolved before encryption and travels as cleartext metadata; it is never
// inferred from ciphertext.
type ContentType string

const (
	ContentTypeText  ContentType = "text"
	ContentTypeImage ContentType = "image"
)

func (t ContentType) IsValid() bool {
	return t == ContentTypeText || t == ContentTypeImage
}

// Compressible reports whether a pre-encryption compression pass may help.
// Image payloads are assumed to already be in a compressed format.
func (t ContentType) Compressible() bool {
	return t == ContentTypeText
}

type Identity struct {
	ID        string    `json:"id"`
	PublicKey []byte    `json:"public_key"`
	CreatedAt time.Time `json:"created_at"`
}

// Peer is a paired device. PublicKey holds the PKIX/SPKI DER encoding of the
// peer's P-384 public key, exactly as exchanged during pairing.
type Peer struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	PublicKey   []byte    `json:"public_key"`
	PairedAt    time.Time `json:"paired_at"`
}

// SyncEvent is a history record of one sync action. It carries metadata only;
// clipboard plaintext is never retained here.
type SyncEvent struct {
	Action      string      `json:"action"`
	ContentType ContentType `json:"content_type"`
	PeerCount   int         `json:"peer_count"`
	Verified    bool        `json:"verified"`
	Size        int         `json:"size"`
	Timestamp   time.Time   `json:"timestamp"`
}

const (
	SyncActionSent     = "sent"
	SyncActionReceived = "received"
)
