// Package ports declares the interfaces the core crack/assembly services
// depend on, fulfilling the hexagonal boundary between internal/core and
// internal/adapters: the core never imports an adapter package directly.
package ports

import (
	"context"
	"time"

	"github.com/hashlock/wpacrack/internal/core/domain"
)

// WordlistSource lazily yields candidate passphrases, in file order, from a
// line-delimited dictionary. It satisfies cracker.Source.
type WordlistSource interface {
	Next() (candidate string, ok bool, err error)
}

// ProgressSink receives periodic attempt-count/elapsed-time updates from a
// running crack job; it is the same shape as domain.ProgressFunc so an
// adapter (websocket broadcaster, CLI spinner) can be passed directly.
type ProgressSink = domain.ProgressFunc

// CaptureSource abstracts a live or offline 802.11 frame source: a pcap
// interface in monitor mode, or a replayed capture file. Read blocks until a
// frame arrives, ctx is cancelled, or the deadline set by SetReadTimeout
// elapses.
type CaptureSource interface {
	// Read returns the next raw 802.11 frame (including the radiotap
	// header, if present) or an error wrapping domain.ErrCaptureTransient
	// / domain.ErrCaptureFatal.
	Read(ctx context.Context) ([]byte, error)

	// WriteRaw injects a raw 802.11 frame (used by the deauth provocation
	// adapter); it never blocks on frame arrival.
	WriteRaw(frame []byte) error

	// SetReadTimeout bounds how long Read may block before returning
	// domain.ErrCaptureTransient, so callers can interleave deauth bursts
	// with capture polling.
	SetReadTimeout(d time.Duration)

	Close() error
}

// TraceWriter persists captured frames to a pcap file for later replay or
// audit, independent of the live CaptureSource.
type TraceWriter interface {
	WriteFrame(frame []byte, capturedAt time.Time) error
	Close() error
}

// JobStore persists crack-job metadata and outcomes (job history, not the
// handshake bytes themselves).
type JobStore interface {
	CreateJob(ctx context.Context, job domain.CrackJob) error
	UpdateJobResult(ctx context.Context, jobID string, result domain.CrackResult, status domain.JobStatus) error
	GetJob(ctx context.Context, jobID string) (domain.CrackJob, error)
	ListJobs(ctx context.Context) ([]domain.CrackJob, error)
}

// HandshakeStore persists assembled handshakes keyed by session ID so
// a capture session can be resumed or replayed without re-sniffing.
type HandshakeStore interface {
	SaveHandshake(ctx context.Context, sessionID string, hs *domain.Handshake) error
	LoadHandshake(ctx context.Context, sessionID string) (*domain.Handshake, error)
	ListSessions(ctx context.Context) ([]string, error)
}

// ReportWriter renders a finished crack job as a durable artefact (PDF,
// in this module's case).
type ReportWriter interface {
	WriteReport(ctx context.Context, job domain.CrackJob, result domain.CrackResult) ([]byte, error)
}
