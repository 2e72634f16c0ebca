package engine

import (
	"context"

	"clipsync/go-backend/internal/envelope"
	"clipsync/go-backend/internal/relay"
	"clipsync/go-backend/pkg/models"
)

// The core computes bytes; everything that moves them lives behind these
// ports. None of them are called while any lock is held.

// Wire carries sealed envelopes to paired peers. The transport decides
// whether an envelope with no wrapped keys is worth sending.
type Wire interface {
	Broadcast(ctx context.Context, msg envelope.Message) error
}

// RelayLink carries packets to the relay room.
type RelayLink interface {
	Publish(ctx context.Context, pkt relay.Packet) error
}

// ClipboardSink applies received content to the local clipboard.
type ClipboardSink interface {
	Apply(ctx context.Context, content []byte, contentType models.ContentType) error
}

// PeerView is the read-only view of the paired peer set the core takes a
// snapshot from at send time.
type PeerView interface {
	Snapshot() ([]models.Peer, error)
}
