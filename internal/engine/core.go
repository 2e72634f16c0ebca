// Package engine glues the crypto core to its external collaborators: the
// clipboard monitor feeds OnClipboardChange, the transport feeds
// HandleEnvelope and HandleRelayPacket, and sealed output leaves through the
// Wire and RelayLink ports. Every call is synchronous; the engine owns no
// goroutines.
package engine

import (
	"context"
	"crypto/sha256"
	"errors"
	"log/slog"
	"sync"

	"clipsync/go-backend/internal/crypto"
	"clipsync/go-backend/internal/envelope"
	"clipsync/go-backend/internal/identity"
	"clipsync/go-backend/internal/metrics"
	"clipsync/go-backend/internal/relay"
	"clipsync/go-backend/pkg/models"
)

type Core struct {
	identity *identity.Manager
	peers    PeerView
	wire     Wire
	relay    RelayLink
	room     *relay.RoomCipher
	sink     ClipboardSink
	settings Settings
	history  *History
	log      *slog.Logger

	mu          sync.Mutex
	lastApplied [sha256.Size]byte
	haveApplied bool
}

type Config struct {
	Identity *identity.Manager
	Peers    PeerView
	Wire     Wire      // optional
	Relay    RelayLink // optional
	// Room is the relay cipher; nil means the legacy unencrypted relay mode.
	Room     *relay.RoomCipher
	Sink     ClipboardSink
	Settings Settings
	History  *History // optional
	Logger   *slog.Logger
}

func New(cfg Config) (*Core, error) {
	if cfg.Identity == nil {
		return nil, errors.New("engine: identity is required")
	}
	if cfg.Peers == nil {
		return nil, errors.New("engine: peer view is required")
	}
	if cfg.History == nil {
		cfg.History = NewHistory(defaultHistoryLimit)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Core{
		identity: cfg.Identity,
		peers:    cfg.Peers,
		wire:     cfg.Wire,
		relay:    cfg.Relay,
		room:     cfg.Room,
		sink:     cfg.Sink,
		settings: cfg.Settings,
		history:  cfg.History,
		log:      cfg.Logger,
	}, nil
}

func (c *Core) History() *History {
	return c.history
}

// OnClipboardChange seals the new local clipboard content for every paired
// peer and for the relay room. Content that came from a peer a moment ago is
// recognized by checksum and not echoed back.
func (c *Core) OnClipboardChange(ctx context.Context, content []byte, contentType models.ContentType) error {
	if c.consumeEcho(content) {
		return nil
	}
	if !c.settings.allows(contentType, len(content)) {
		c.log.Debug("clipboard change skipped by settings", "type", string(contentType), "size", len(content))
		return nil
	}

	sent := false
	if c.wire != nil {
		snapshot, err := c.peers.Snapshot()
		if err != nil {
			return err
		}
		msg, err := envelope.Seal(content, contentType, c.identity.ID(), c.identity.PrivateKey(), snapshot)
		if err != nil {
			return err
		}
		metrics.EnvelopesSealed.Inc()
		metrics.WrappedKeysProduced.Add(float64(len(msg.WrappedKeys)))
		if err := c.wire.Broadcast(ctx, msg); err != nil {
			return err
		}
		sent = true
		c.history.Add(models.SyncEvent{
			Action:      models.SyncActionSent,
			ContentType: contentType,
			PeerCount:   len(msg.WrappedKeys),
			Verified:    true,
			Size:        len(content),
		})
	}
	if c.relay != nil {
		pkt, err := relay.SealPacket(c.room, content, contentType)
		if err != nil {
			return err
		}
		metrics.RelayPacketsSealed.Inc()
		if err := c.relay.Publish(ctx, pkt); err != nil {
			return err
		}
		sent = true
	}
	if sent {
		c.log.Info("clipboard change synced", "type", string(contentType), "size", len(content))
	}
	return nil
}

// HandleEnvelope processes one inbound P2P envelope. An envelope not
// addressed to this device is dropped silently: a routing fact, not an error.
func (c *Core) HandleEnvelope(ctx context.Context, raw []byte) error {
	msg, err := envelope.Decode(raw)
	if err != nil {
		metrics.EnvelopeOpenFailures.WithLabelValues(metrics.ReasonSerialization).Inc()
		return err
	}
	res, err := envelope.Open(msg, c.identity.ID(), c.identity.PrivateKey())
	if err != nil {
		if errors.Is(err, crypto.ErrNotForMe) {
			metrics.EnvelopeOpenFailures.WithLabelValues(metrics.ReasonNotForMe).Inc()
			c.log.Debug("envelope not addressed to this device", "sender_id", msg.SenderID)
			return nil
		}
		metrics.EnvelopeOpenFailures.WithLabelValues(openFailureReason(err)).Inc()
		return err
	}
	metrics.EnvelopesOpened.Inc()
	if !res.Verified {
		// Delivery proceeds; reject-vs-warn is the application's call.
		metrics.SignatureFailures.Inc()
		c.log.Warn("envelope signature did not verify", "sender_id", res.SenderID)
	}

	if err := c.apply(ctx, res.Plaintext, res.ContentType); err != nil {
		return err
	}
	c.history.Add(models.SyncEvent{
		Action:      models.SyncActionReceived,
		ContentType: res.ContentType,
		PeerCount:   1,
		Verified:    res.Verified,
		Size:        len(res.Plaintext),
	})
	return nil
}

// HandleRelayPacket processes one inbound relay packet.
func (c *Core) HandleRelayPacket(ctx context.Context, raw []byte) error {
	pkt, err := relay.DecodePacket(raw)
	if err != nil {
		metrics.RelayOpenFailures.WithLabelValues(metrics.ReasonSerialization).Inc()
		return err
	}
	content, err := relay.OpenPacket(c.room, pkt)
	if err != nil {
		metrics.RelayOpenFailures.WithLabelValues(openFailureReason(err)).Inc()
		return err
	}
	metrics.RelayPacketsOpened.Inc()

	if err := c.apply(ctx, content, pkt.ContentType); err != nil {
		return err
	}
	c.history.Add(models.SyncEvent{
		Action:      models.SyncActionReceived,
		ContentType: pkt.ContentType,
		Verified:    pkt.Encrypted,
		Size:        len(content),
	})
	return nil
}

func (c *Core) apply(ctx context.Context, content []byte, contentType models.ContentType) error {
	c.recordEcho(content)
	if c.sink == nil {
		return nil
	}
	return c.sink.Apply(ctx, content, contentType)
}

// recordEcho remembers the checksum of content just applied locally so the
// monitor's follow-up change notification is not synced back out.
func (c *Core) recordEcho(content []byte) {
	sum := sha256.Sum256(content)
	c.mu.Lock()
	c.lastApplied = sum
	c.haveApplied = true
	c.mu.Unlock()
}

func (c *Core) consumeEcho(content []byte) bool {
	sum := sha256.Sum256(content)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.haveApplied && c.lastApplied == sum {
		c.haveApplied = false
		return true
	}
	return false
}

func openFailureReason(err error) string {
	switch {
	case errors.Is(err, crypto.ErrAuthFailed):
		return metrics.ReasonAuth
	case errors.Is(err, crypto.ErrKeyDerivation):
		return metrics.ReasonKeyDerivation
	case errors.Is(err, envelope.ErrSerialization), errors.Is(err, relay.ErrSerialization):
		return metrics.ReasonSerialization
	default:
		return metrics.ReasonOther
	}
}
