package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashlock/wpacrack/internal/core/domain"
)

func newTestJobStore(t *testing.T) *SQLiteJobStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.db")
	store, err := NewSQLiteJobStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteJobStore_CreateAndGet(t *testing.T) {
	store := newTestJobStore(t)
	ctx := context.Background()

	job := domain.CrackJob{
		ID:         "job-1",
		SSID:       "TestNetwork",
		APMac:      "00:11:22:33:44:55",
		ClientMac:  "aa:bb:cc:dd:ee:ff",
		KeyVersion: domain.KeyVersionCCMP,
		SourceKind: "wordlist",
		SourceDesc: "rockyou.txt",
		Status:     domain.JobStatusRunning,
		StartedAt:  time.Now().Truncate(time.Second),
	}
	require.NoError(t, store.CreateJob(ctx, job))

	got, err := store.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, job.SSID, got.SSID)
	assert.Equal(t, domain.JobStatusRunning, got.Status)
	assert.Nil(t, got.Password)
	assert.Nil(t, got.FinishedAt)
}

func TestSQLiteJobStore_UpdateJobResult(t *testing.T) {
	store := newTestJobStore(t)
	ctx := context.Background()

	job := domain.CrackJob{ID: "job-2", SSID: "Net", APMac: "a", ClientMac: "b",
		KeyVersion: domain.KeyVersionTKIP, SourceKind: "numeric", SourceDesc: "8-8",
		Status: domain.JobStatusRunning, StartedAt: time.Now()}
	require.NoError(t, store.CreateJob(ctx, job))

	password := "12345678"
	result := domain.CrackResult{Password: &password, Attempts: 42, Rate: 1000}
	require.NoError(t, store.UpdateJobResult(ctx, "job-2", result, domain.JobStatusFound))

	got, err := store.GetJob(ctx, "job-2")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusFound, got.Status)
	require.NotNil(t, got.Password)
	assert.Equal(t, password, *got.Password)
	assert.Equal(t, uint64(42), got.Attempts)
	assert.NotNil(t, got.FinishedAt)
}

func TestSQLiteJobStore_ListJobs(t *testing.T) {
	store := newTestJobStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		job := domain.CrackJob{ID: fmt.Sprintf("job-%d", i), SSID: "Net", APMac: "a", ClientMac: "b",
			SourceKind: "numeric", SourceDesc: "8-8", Status: domain.JobStatusPending, StartedAt: time.Now()}
		require.NoError(t, store.CreateJob(ctx, job))
	}

	jobs, err := store.ListJobs(ctx)
	require.NoError(t, err)
	assert.Len(t, jobs, 3)
}

func TestSQLiteJobStore_GetMissingJobReturnsInputInvalid(t *testing.T) {
	store := newTestJobStore(t)
	_, err := store.GetJob(context.Background(), "does-not-exist")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInputInvalid)
}
