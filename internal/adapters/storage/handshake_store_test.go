package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashlock/wpacrack/internal/core/domain"
)

func newTestHandshakeStore(t *testing.T) *SQLiteHandshakeStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "handshakes.db")
	store, err := NewSQLiteHandshakeStore(path)
	require.NoError(t, err)
	return store
}

func sampleStoredHandshake() *domain.Handshake {
	hs := &domain.Handshake{
		SSID:       []byte("TestNetwork"),
		EAPOLFrame: []byte{0x01, 0x02, 0x03, 0x04, 0x05},
		KeyVersion: domain.KeyVersionCCMP,
	}
	for i := range hs.APMac {
		hs.APMac[i] = byte(i + 1)
	}
	for i := range hs.ClientMac {
		hs.ClientMac[i] = byte(0xa0 + i)
	}
	for i := range hs.ANonce {
		hs.ANonce[i] = byte(i)
	}
	for i := range hs.SNonce {
		hs.SNonce[i] = byte(255 - i)
	}
	for i := range hs.MIC {
		hs.MIC[i] = byte(i * 2)
	}
	return hs
}

func TestSQLiteHandshakeStore_SaveAndLoad(t *testing.T) {
	store := newTestHandshakeStore(t)
	ctx := context.Background()
	hs := sampleStoredHandshake()

	require.NoError(t, store.SaveHandshake(ctx, "session-1", hs))

	got, err := store.LoadHandshake(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, hs, got)
}

func TestSQLiteHandshakeStore_LoadMissingReturnsInputInvalid(t *testing.T) {
	store := newTestHandshakeStore(t)
	_, err := store.LoadHandshake(context.Background(), "does-not-exist")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInputInvalid)
}

func TestSQLiteHandshakeStore_ListSessions(t *testing.T) {
	store := newTestHandshakeStore(t)
	ctx := context.Background()

	for _, id := range []string{"s1", "s2", "s3"} {
		require.NoError(t, store.SaveHandshake(ctx, id, sampleStoredHandshake()))
	}

	ids, err := store.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 3)
}

func TestSQLiteHandshakeStore_SaveOverwritesExistingSession(t *testing.T) {
	store := newTestHandshakeStore(t)
	ctx := context.Background()

	first := sampleStoredHandshake()
	require.NoError(t, store.SaveHandshake(ctx, "session-1", first))

	second := sampleStoredHandshake()
	second.SSID = []byte("OtherNetwork")
	require.NoError(t, store.SaveHandshake(ctx, "session-1", second))

	got, err := store.LoadHandshake(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "OtherNetwork", string(got.SSID))

	ids, err := store.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}
