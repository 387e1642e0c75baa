package storage

import (
	"context"
	_ "embed"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hashlock/wpacrack/internal/core/domain"
)

//go:embed job_schema.sql
var jobSchemaSQL string

// SQLiteJobStore persists crack-job history with raw database/sql, using
// the repository's connection-open/schema-embed pattern.
type SQLiteJobStore struct {
	db *sql.DB
}

// NewSQLiteJobStore opens (or creates) the job database at dbPath.
func NewSQLiteJobStore(dbPath string) (*SQLiteJobStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open job database: %v", domain.ErrInternal, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("%w: enable WAL: %v", domain.ErrInternal, err)
	}
	if _, err := db.Exec(jobSchemaSQL); err != nil {
		return nil, fmt.Errorf("%w: initialize job schema: %v", domain.ErrInternal, err)
	}
	return &SQLiteJobStore{db: db}, nil
}

func (s *SQLiteJobStore) CreateJob(ctx context.Context, job domain.CrackJob) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO crack_jobs (id, ssid, ap_mac, client_mac, key_version, source_kind, source_desc, status, attempts, rate, password, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.SSID, job.APMac, job.ClientMac, job.KeyVersion, job.SourceKind, job.SourceDesc,
		job.Status, job.Attempts, job.Rate, job.Password, job.StartedAt, job.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: insert job %s: %v", domain.ErrInternal, job.ID, err)
	}
	return nil
}

func (s *SQLiteJobStore) UpdateJobResult(ctx context.Context, jobID string, result domain.CrackResult, status domain.JobStatus) error {
	now := time.Now()
	_, err := s.db.ExecContext(ctx, `
		UPDATE crack_jobs SET status = ?, attempts = ?, rate = ?, password = ?, finished_at = ?
		WHERE id = ?`,
		status, result.Attempts, result.Rate, result.Password, now, jobID,
	)
	if err != nil {
		return fmt.Errorf("%w: update job %s: %v", domain.ErrInternal, jobID, err)
	}
	return nil
}

func (s *SQLiteJobStore) GetJob(ctx context.Context, jobID string) (domain.CrackJob, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, ssid, ap_mac, client_mac, key_version, source_kind, source_desc, status, attempts, rate, password, started_at, finished_at
		FROM crack_jobs WHERE id = ?`, jobID)
	return scanJob(row)
}

func (s *SQLiteJobStore) ListJobs(ctx context.Context) ([]domain.CrackJob, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ssid, ap_mac, client_mac, key_version, source_kind, source_desc, status, attempts, rate, password, started_at, finished_at
		FROM crack_jobs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: list jobs: %v", domain.ErrInternal, err)
	}
	defer rows.Close()

	var jobs []domain.CrackJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// rowScanner abstracts *sql.Row and *sql.Rows, which share a Scan method
// but no common interface in database/sql.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (domain.CrackJob, error) {
	var job domain.CrackJob
	var password sql.NullString
	var finishedAt sql.NullTime

	err := row.Scan(&job.ID, &job.SSID, &job.APMac, &job.ClientMac, &job.KeyVersion,
		&job.SourceKind, &job.SourceDesc, &job.Status, &job.Attempts, &job.Rate,
		&password, &job.StartedAt, &finishedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.CrackJob{}, fmt.Errorf("%w: job not found", domain.ErrInputInvalid)
		}
		return domain.CrackJob{}, fmt.Errorf("%w: scan job row: %v", domain.ErrInternal, err)
	}
	if password.Valid {
		job.Password = &password.String
	}
	if finishedAt.Valid {
		job.FinishedAt = &finishedAt.Time
	}
	return job, nil
}

func (s *SQLiteJobStore) Close() error {
	return s.db.Close()
}
