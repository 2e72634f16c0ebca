package crypto

import "errors"

var (
	// ErrKeyDerivation covers malformed inputs to ECDH or key parsing, such
	// as a key on the wrong curve. Not retryable with the same inputs.
	ErrKeyDerivation = errors.New("key derivation failed")

	// ErrAuthFailed is the single opaque failure for every AEAD open that
	// does not verify. Wrong key, corrupted ciphertext, tampered tag and a
	// mangled nonce all collapse into this one value so the failure path
	// never reveals which check tripped.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrNotForMe means the wrapped-key map carries no entry for this
	// device. A routing fact, not a crypto failure; callers should drop the
	// message silently.
	ErrNotForMe = errors.New("no wrapped key for this device")
)
