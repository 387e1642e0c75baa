package injection

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCaptureSource struct {
	mu     sync.Mutex
	frames [][]byte
}

func (f *fakeCaptureSource) Read(ctx context.Context) ([]byte, error) { return nil, nil }

func (f *fakeCaptureSource) WriteRaw(frame []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]byte, len(frame))
	copy(cp, frame)
	f.frames = append(f.frames, cp)
	return nil
}

func (f *fakeCaptureSource) SetReadTimeout(d time.Duration) {}
func (f *fakeCaptureSource) Close() error                   { return nil }

func (f *fakeCaptureSource) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func TestProvoker_BurstSendsBroadcastAndUnicast(t *testing.T) {
	out := &fakeCaptureSource{}
	p := NewProvoker(out, "wlan0mon")

	bssid, err := net.ParseMAC("00:11:22:33:44:55")
	require.NoError(t, err)
	client, err := net.ParseMAC("aa:bb:cc:dd:ee:ff")
	require.NoError(t, err)

	require.NoError(t, p.burst(bssid, []net.HardwareAddr{client}))
	assert.Equal(t, 2, out.count()) // one broadcast + one unicast
	assert.Equal(t, uint64(1), p.FramesSent())
}

func TestProvoker_RunStopsOnContextCancel(t *testing.T) {
	out := &fakeCaptureSource{}
	p := NewProvoker(out, "wlan0mon")
	bssid, _ := net.ParseMAC("00:11:22:33:44:55")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := p.Run(ctx, bssid, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, p.FramesSent(), uint64(0))
}
