package domain

import "errors"

// Error taxonomy for the capture and cracking pipeline (spec §7).
//
// ErrInputInvalid is defined in handshake.go alongside the validation it
// guards.
var (
	// ErrCaptureTransient marks a recoverable capture-layer hiccup (read
	// timeout, transient driver error). The assembler absorbs these and
	// keeps looping; they never reach the caller.
	ErrCaptureTransient = errors.New("capture: transient error")

	// ErrCaptureFatal marks an unrecoverable capture-layer failure (device
	// disappeared, permission denied, interface not in monitor mode).
	ErrCaptureFatal = errors.New("capture: fatal error")

	// ErrNoHandshake marks a capture window that elapsed without a
	// complete M1/M2 (or M2/M3, M3/M4) pairing. Distinct from CaptureFatal:
	// the caller may retry with more time or with injection enabled.
	ErrNoHandshake = errors.New("capture: no handshake observed before deadline")

	// ErrInternal marks a worker panic or a violated invariant mid-run.
	// Fatal: callers must not attempt to salvage a partial result.
	ErrInternal = errors.New("internal error")
)
