// Package capture adapts gopacket/pcap to the ports.CaptureSource boundary:
// a monitor-mode live capture, or an offline pcap file replayed as if it
// were live (spec §4.C).
package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"
	"github.com/google/gopacket/pcapgo"

	"github.com/hashlock/wpacrack/internal/core/domain"
)

// LiveSource wraps a single pcap.Handle opened on a monitor-mode interface.
// Grounded on the Injector's pcap.OpenLive/BPF-filter usage in
// internal/adapters/sniffer/injector.go.
type LiveSource struct {
	handle *pcap.Handle
	iface  string

	mu      sync.Mutex
	timeout time.Duration
}

// NewLiveSource opens iface in monitor mode with an 802.11-management-and-
// EAPOL BPF filter so non-handshake traffic never reaches the assembler.
func NewLiveSource(iface string) (*LiveSource, error) {
	handle, err := pcap.OpenLive(iface, 65536, true, pcap.BlockForever)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrCaptureFatal, iface, err)
	}
	if err := handle.SetBPFFilter("ether proto 0x888e or type mgt"); err != nil {
		handle.Close()
		return nil, fmt.Errorf("%w: bpf filter on %s: %v", domain.ErrCaptureFatal, iface, err)
	}
	return &LiveSource{handle: handle, iface: iface, timeout: 2 * time.Second}, nil
}

// SetReadTimeout bounds how long Read blocks on a single poll before
// returning domain.ErrCaptureTransient, so the injection loop can interleave
// deauth bursts with capture polling.
func (s *LiveSource) SetReadTimeout(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeout = d
}

// Read blocks for up to the configured timeout waiting for the next frame.
// pcap.Handle exposes no runtime-adjustable poll deadline once opened, so the
// bound is enforced with a helper goroutine rather than by reopening the
// handle on every SetReadTimeout call.
func (s *LiveSource) Read(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	timeout := s.timeout
	s.mu.Unlock()

	type result struct {
		data []byte
		err  error
	}
	out := make(chan result, 1)
	go func() {
		data, _, err := s.handle.ReadPacketData()
		out <- result{data, err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", domain.ErrCaptureTransient, ctx.Err())
	case <-time.After(timeout):
		return nil, fmt.Errorf("%w: read timed out after %s", domain.ErrCaptureTransient, timeout)
	case r := <-out:
		if r.err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrCaptureFatal, r.err)
		}
		return r.data, nil
	}
}

// WriteRaw injects a raw frame onto the same handle used for capture.
func (s *LiveSource) WriteRaw(frame []byte) error {
	if err := s.handle.WritePacketData(frame); err != nil {
		return fmt.Errorf("%w: inject: %v", domain.ErrCaptureTransient, err)
	}
	return nil
}

func (s *LiveSource) Close() error {
	s.handle.Close()
	return nil
}

// FileSource replays a previously captured pcap file as a CaptureSource,
// used for offline handshake extraction and in tests.
type FileSource struct {
	reader *pcapgo.Reader
	closer interface{ Close() error }
}

// NewFileSource opens an existing pcap file for sequential replay.
func NewFileSource(f interface {
	Close() error
}, reader *pcapgo.Reader) *FileSource {
	return &FileSource{reader: reader, closer: f}
}

func (s *FileSource) Read(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", domain.ErrCaptureTransient, ctx.Err())
	default:
	}
	data, _, err := s.reader.ReadPacketData()
	if err != nil {
		return nil, fmt.Errorf("%w: end of trace: %v", domain.ErrCaptureFatal, err)
	}
	return data, nil
}

// WriteRaw is a no-op for a replayed file: injection has no meaning against
// a static trace.
func (s *FileSource) WriteRaw(frame []byte) error { return nil }

func (s *FileSource) SetReadTimeout(d time.Duration) {}

func (s *FileSource) Close() error { return s.closer.Close() }

// PcapTraceWriter persists raw frames to a pcap file for audit/replay,
// grounded on the pcapgo.NewWriter usage in
// internal/adapters/sniffer/handshake/handshake_manager.go.
type PcapTraceWriter struct {
	mu     sync.Mutex
	w      *pcapgo.Writer
	closer interface{ Close() error }
}

// NewPcapTraceWriter writes a pcap global header to f and returns a writer
// ready to receive frames.
func NewPcapTraceWriter(f interface {
	Close() error
}, w *pcapgo.Writer, snaplen uint32) (*PcapTraceWriter, error) {
	if err := w.WriteFileHeader(snaplen, gopacket.LinkTypeIEEE802_11Radio); err != nil {
		return nil, fmt.Errorf("%w: pcap header: %v", domain.ErrCaptureFatal, err)
	}
	return &PcapTraceWriter{w: w, closer: f}, nil
}

func (t *PcapTraceWriter) WriteFrame(frame []byte, capturedAt time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	ci := gopacket.CaptureInfo{
		Timestamp:     capturedAt,
		CaptureLength: len(frame),
		Length:        len(frame),
	}
	if err := t.w.WritePacket(ci, frame); err != nil {
		return fmt.Errorf("%w: write trace frame: %v", domain.ErrCaptureTransient, err)
	}
	return nil
}

func (t *PcapTraceWriter) Close() error {
	return t.closer.Close()
}
