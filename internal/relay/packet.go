package relay

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"clipsync/go-backend/pkg/models"
)

// Packet is the relay wire unit. When Encrypted is false, EncryptedContent is
// bare base64 of the UTF-8 plaintext, the legacy no-password mode, kept for
// backward compatibility and produced only when no cipher is configured.
type Packet struct {
	EncryptedContent string             `json:"encrypted_content"`
	ContentType      models.ContentType `json:"content_type"`
	Encrypted        bool               `json:"encrypted"`
	Timestamp        int64              `json:"timestamp"`
}

// SealPacket produces the outbound packet for a room. A nil cipher falls back
// to the legacy unencrypted encoding.
func SealPacket(cipher *RoomCipher, content []byte, contentType models.ContentType) (Packet, error) {
	now := time.Now().UnixMilli()
	if cipher == nil {
		return Packet{
			EncryptedContent: base64.StdEncoding.EncodeToString(content),
			ContentType:      contentType,
			Encrypted:        false,
			Timestamp:        now,
		}, nil
	}
	blob, err := cipher.Seal(content)
	if err != nil {
		return Packet{}, err
	}
	return Packet{
		EncryptedContent: base64.StdEncoding.EncodeToString(blob),
		ContentType:      contentType,
		Encrypted:        true,
		Timestamp:        now,
	}, nil
}

// OpenPacket recovers the content of an inbound packet. Decoding failures
// surface as ErrSerialization without touching the cipher; an encrypted
// packet with no configured cipher is ErrNoCipher.
func OpenPacket(cipher *RoomCipher, pkt Packet) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(pkt.EncryptedContent)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	if !pkt.Encrypted {
		return raw, nil
	}
	if cipher == nil {
		return nil, ErrNoCipher
	}
	return cipher.Open(raw)
}

func EncodePacket(pkt Packet) ([]byte, error) {
	return json.Marshal(pkt)
}

func DecodePacket(raw []byte) (Packet, error) {
	var pkt Packet
	if err := json.Unmarshal(raw, &pkt); err != nil {
		return Packet{}, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	if pkt.EncryptedContent == "" {
		return Packet{}, fmt.Errorf("%w: missing content", ErrSerialization)
	}
	if !pkt.ContentType.IsValid() {
		return Packet{}, fmt.Errorf("%w: content type %q", ErrSerialization, pkt.ContentType)
	}
	return pkt, nil
}
