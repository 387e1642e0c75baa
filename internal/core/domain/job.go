package domain

import "time"

// JobStatus tracks a crack job's lifecycle for persistence and reporting.
type JobStatus string

const (
	JobStatusPending JobStatus = "pending"
	JobStatusRunning JobStatus = "running"
	JobStatusFound   JobStatus = "found"
	JobStatusExhausted JobStatus = "exhausted"
	JobStatusFailed  JobStatus = "failed"
)

// CrackJob is the persisted record of a single crack attempt: the handshake
// it targeted, the candidate source used, and (once finished) its outcome.
type CrackJob struct {
	ID          string
	SSID        string
	APMac       string
	ClientMac   string
	KeyVersion  KeyVersion
	SourceKind  string // "wordlist" or "numeric"
	SourceDesc  string // wordlist path, or "min-max" digit range
	Status      JobStatus
	Attempts    uint64
	Rate        float64
	Password    *string
	StartedAt   time.Time
	FinishedAt  *time.Time
}
