package engine

import (
	"context"

	"clipsync/go-backend/internal/envelope"
)

// LoopbackWire hands every broadcast envelope straight back to a local
// handler, standing in for a real transport. An envelope addressed to no key
// this device holds is dropped by the receiving side, so looping a broadcast
// back to its own core is harmless.
type LoopbackWire struct {
	Handler func(ctx context.Context, raw []byte) error
}

func (w *LoopbackWire) Broadcast(ctx context.Context, msg envelope.Message) error {
	if w.Handler == nil {
		return nil
	}
	raw, err := envelope.Encode(msg)
	if err != nil {
		return err
	}
	return w.Handler(ctx, raw)
}
