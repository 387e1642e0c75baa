package capture

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcapgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashlock/wpacrack/internal/core/domain"
)

type nopCloser struct{ *bytes.Buffer }

func (nopCloser) Close() error { return nil }

func TestPcapTraceWriter_WritesFrames(t *testing.T) {
	buf := &bytes.Buffer{}
	w := pcapgo.NewWriter(buf)
	tw, err := NewPcapTraceWriter(nopCloser{buf}, w, 65536)
	require.NoError(t, err)

	err = tw.WriteFrame([]byte{0x01, 0x02, 0x03}, time.Unix(0, 0))
	require.NoError(t, err)
	assert.Greater(t, buf.Len(), 0)
	require.NoError(t, tw.Close())
}

func TestFileSource_ReadsBackWrittenFrames(t *testing.T) {
	buf := &bytes.Buffer{}
	w := pcapgo.NewWriter(buf)
	require.NoError(t, w.WriteFileHeader(65536, gopacket.LinkTypeIEEE802_11Radio))
	ci := gopacket.CaptureInfo{Timestamp: time.Unix(1, 0), CaptureLength: 4, Length: 4}
	require.NoError(t, w.WritePacket(ci, []byte{0xde, 0xad, 0xbe, 0xef}))

	reader, err := pcapgo.NewReader(buf)
	require.NoError(t, err)

	src := NewFileSource(nopCloser{buf}, reader)
	data, err := src.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, data)

	_, err = src.Read(context.Background())
	assert.ErrorIs(t, err, domain.ErrCaptureFatal)

	assert.NoError(t, src.WriteRaw([]byte{0x01}))
	src.SetReadTimeout(time.Second)
	require.NoError(t, src.Close())
}

func TestFileSource_RespectsCancelledContext(t *testing.T) {
	buf := &bytes.Buffer{}
	w := pcapgo.NewWriter(buf)
	require.NoError(t, w.WriteFileHeader(65536, gopacket.LinkTypeIEEE802_11Radio))
	reader, err := pcapgo.NewReader(buf)
	require.NoError(t, err)

	src := NewFileSource(nopCloser{buf}, reader)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = src.Read(ctx)
	assert.ErrorIs(t, err, domain.ErrCaptureTransient)
}
