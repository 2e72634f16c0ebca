// Package metrics exposes operation counters on the default Prometheus
// registerer. Counters carry volumes and failure categories only, never
// identifiers or content.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EnvelopesSealed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clipsync_envelopes_sealed_total",
		Help: "P2P envelopes produced for the transport.",
	})
	EnvelopesOpened = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clipsync_envelopes_opened_total",
		Help: "Inbound P2P envelopes decrypted successfully.",
	})
	EnvelopeOpenFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clipsync_envelope_open_failures_total",
		Help: "Inbound P2P envelopes that could not be opened, by reason.",
	}, []string{"reason"})
	WrappedKeysProduced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clipsync_wrapped_keys_total",
		Help: "Per-peer key wrap operations across all sealed envelopes.",
	})
	SignatureFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clipsync_signature_failures_total",
		Help: "Opened envelopes whose plaintext signature did not verify.",
	})
	RelayPacketsSealed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clipsync_relay_packets_sealed_total",
		Help: "Relay packets produced for the relay link.",
	})
	RelayPacketsOpened = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clipsync_relay_packets_opened_total",
		Help: "Inbound relay packets recovered successfully.",
	})
	RelayOpenFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clipsync_relay_open_failures_total",
		Help: "Inbound relay packets that could not be recovered, by reason.",
	}, []string{"reason"})
)

const (
	ReasonSerialization = "serialization"
	ReasonAuth          = "auth"
	ReasonNotForMe      = "not_for_me"
	ReasonKeyDerivation = "key_derivation"
	ReasonOther         = "other"
)
