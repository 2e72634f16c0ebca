package envelope

import (
	"bytes"
	"crypto/ecdsa"
	"errors"
	"strings"
	"testing"
	"time"

	"clipsync/go-backend/internal/crypto"
	"clipsync/go-backend/pkg/models"
)

type device struct {
	id   string
	priv *ecdsa.PrivateKey
	peer models.Peer
}

func newDevice(t *testing.T, name string) device {
	t.Helper()
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	id, err := crypto.DeviceID(&priv.PublicKey)
	if err != nil {
		t.Fatalf("device id: %v", err)
	}
	der, err := crypto.MarshalPublicKey(&priv.PublicKey)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}
	return device{
		id:   id,
		priv: priv,
		peer: models.Peer{ID: id, DisplayName: name, PublicKey: der, PairedAt: time.Now()},
	}
}

// Device A, paired with B, sends "hello"; B recovers exactly "hello" with a
// verified signature.
func TestEndToEndHello(t *testing.T) {
	a := newDevice(t, "a")
	b := newDevice(t, "b")

	msg, err := Seal([]byte("hello"), models.ContentTypeText, a.id, a.priv, []models.Peer{b.peer})
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if len(msg.WrappedKeys) != 1 {
		t.Fatalf("wrapped keys = %d, want 1", len(msg.WrappedKeys))
	}
	if _, ok := msg.WrappedKeys[b.id]; !ok {
		t.Fatal("missing wrapped key for B")
	}

	raw, err := Encode(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	res, err := Open(decoded, b.id, b.priv)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if string(res.Plaintext) != "hello" {
		t.Fatalf("plaintext = %q", res.Plaintext)
	}
	if !res.Verified {
		t.Fatal("signature must verify")
	}
	if res.SenderID != a.id || res.ContentType != models.ContentTypeText {
		t.Fatal("metadata mismatch")
	}
}

func TestSealMultiRecipient(t *testing.T) {
	sender := newDevice(t, "sender")
	x := newDevice(t, "x")
	y := newDevice(t, "y")
	z := newDevice(t, "z")
	outsider := newDevice(t, "w")

	plaintext := []byte("fan out")
	msg, err := Seal(plaintext, models.ContentTypeText, sender.id, sender.priv,
		[]models.Peer{x.peer, y.peer, z.peer})
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if len(msg.WrappedKeys) != 3 {
		t.Fatalf("wrapped keys = %d, want 3", len(msg.WrappedKeys))
	}
	for _, recipient := range []device{x, y, z} {
		res, err := Open(msg, recipient.id, recipient.priv)
		if err != nil {
			t.Fatalf("open for %s: %v", recipient.peer.DisplayName, err)
		}
		if !bytes.Equal(res.Plaintext, plaintext) {
			t.Fatalf("recipient %s recovered wrong plaintext", recipient.peer.DisplayName)
		}
		if !res.Verified {
			t.Fatalf("recipient %s: signature must verify", recipient.peer.DisplayName)
		}
	}
	if _, err := Open(msg, outsider.id, outsider.priv); !errors.Is(err, crypto.ErrNotForMe) {
		t.Fatalf("outsider expected ErrNotForMe, got %v", err)
	}
}

func TestSealEmptyPeerSet(t *testing.T) {
	a := newDevice(t, "solo")
	msg, err := Seal([]byte("unreadable"), models.ContentTypeText, a.id, a.priv, nil)
	if err != nil {
		t.Fatalf("seal with no peers must not error: %v", err)
	}
	if len(msg.WrappedKeys) != 0 {
		t.Fatalf("wrapped keys = %d, want 0", len(msg.WrappedKeys))
	}
	// Not even the sender can open it: the content key was never wrapped
	// for anyone.
	if _, err := Open(msg, a.id, a.priv); !errors.Is(err, crypto.ErrNotForMe) {
		t.Fatalf("expected ErrNotForMe, got %v", err)
	}
}

func TestCompressionRoundTripThroughEnvelope(t *testing.T) {
	a := newDevice(t, "a")
	b := newDevice(t, "b")
	plaintext := []byte(strings.Repeat("clipboard clipboard clipboard\n", 500))

	msg, err := Seal(plaintext, models.ContentTypeText, a.id, a.priv, []models.Peer{b.peer})
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if !msg.Compressed {
		t.Fatal("redundant text should travel compressed")
	}
	if len(msg.Ciphertext) >= len(plaintext) {
		t.Fatal("ciphertext should be smaller than the raw plaintext")
	}
	res, err := Open(msg, b.id, b.priv)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(res.Plaintext, plaintext) {
		t.Fatal("round trip mismatch")
	}
	if !res.Verified {
		t.Fatal("signature must verify over the decompressed plaintext")
	}
}

func TestImageContentIsNotCompressed(t *testing.T) {
	a := newDevice(t, "a")
	b := newDevice(t, "b")
	image := bytes.Repeat([]byte{0x89, 0x50, 0x4e, 0x47}, 256)

	msg, err := Seal(image, models.ContentTypeImage, a.id, a.priv, []models.Peer{b.peer})
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if msg.Compressed {
		t.Fatal("image payloads must skip the compression pass")
	}
	res, err := Open(msg, b.id, b.priv)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(res.Plaintext, image) {
		t.Fatal("round trip mismatch")
	}
}

func TestTamperedCiphertextFailsAuth(t *testing.T) {
	a := newDevice(t, "a")
	b := newDevice(t, "b")
	msg, err := Seal([]byte("payload"), models.ContentTypeText, a.id, a.priv, []models.Peer{b.peer})
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	msg.Ciphertext[0] ^= 0x01
	if _, err := Open(msg, b.id, b.priv); !errors.Is(err, crypto.ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
}

func TestForgedSignatureReportsUnverified(t *testing.T) {
	a := newDevice(t, "a")
	b := newDevice(t, "b")
	msg, err := Seal([]byte("payload"), models.ContentTypeText, a.id, a.priv, []models.Peer{b.peer})
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	msg.Signature = []byte("forged")

	// Delivery still happens; only the verification flag flips.
	res, err := Open(msg, b.id, b.priv)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if res.Verified {
		t.Fatal("forged signature must not verify")
	}
	if string(res.Plaintext) != "payload" {
		t.Fatal("plaintext must still be delivered")
	}
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	cases := [][]byte{
		[]byte("not json"),
		[]byte(`{}`),
		[]byte(`{"sender_id":"a","sender_public_key":"k","content_type":"text","nonce":"AAA=","ciphertext":"AAAA"}`),
		[]byte(`{"sender_id":"a","sender_public_key":"k","content_type":"bogus","nonce":"AAAAAAAAAAAAAAAA","ciphertext":"AAAAAAAAAAAAAAAAAAAAAAAAAAAA"}`),
	}
	for _, raw := range cases {
		if _, err := Decode(raw); !errors.Is(err, ErrSerialization) {
			t.Fatalf("input %q: expected ErrSerialization, got %v", raw, err)
		}
	}
}
