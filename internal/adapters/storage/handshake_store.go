package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/hashlock/wpacrack/internal/adapters/serialize"
	"github.com/hashlock/wpacrack/internal/core/domain"
)

// HandshakeModel is the GORM row for a persisted handshake session. The
// handshake's binary fields are stored as a single JSON blob via
// serialize.HandshakeRecord rather than one column per byte array, since
// nothing in this domain ever queries into those bytes.
type HandshakeModel struct {
	SessionID string `gorm:"primaryKey"`
	SSID      string `gorm:"index"`
	APMac     string `gorm:"index"`
	ClientMac string
	RecordJSON string
	SavedAt   time.Time
}

// SQLiteHandshakeStore persists assembled handshakes with GORM, grounded on
// the AutoMigrate/WAL setup of internal/adapters/storage/sqlite.go (kept
// distinct from SQLiteJobStore's raw database/sql style so this module
// exercises both of the teacher's SQLite access patterns).
type SQLiteHandshakeStore struct {
	db *gorm.DB
}

// NewSQLiteHandshakeStore opens (or creates) the handshake database at path.
func NewSQLiteHandshakeStore(path string) (*SQLiteHandshakeStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: open handshake database: %v", domain.ErrInternal, err)
	}

	if err := db.AutoMigrate(&HandshakeModel{}); err != nil {
		return nil, fmt.Errorf("%w: migrate handshake schema: %v", domain.ErrInternal, err)
	}

	if err := db.Use(tracing.NewPlugin()); err != nil {
		return nil, fmt.Errorf("%w: attach tracing plugin: %v", domain.ErrInternal, err)
	}

	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA busy_timeout=5000;")
	db.Exec("PRAGMA synchronous=NORMAL;")

	return &SQLiteHandshakeStore{db: db}, nil
}

func (s *SQLiteHandshakeStore) SaveHandshake(ctx context.Context, sessionID string, hs *domain.Handshake) error {
	rec := serialize.ToRecord(hs)
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: marshal handshake: %v", domain.ErrInternal, err)
	}

	model := HandshakeModel{
		SessionID:  sessionID,
		SSID:       string(hs.SSID),
		APMac:      macString(hs.APMac),
		ClientMac:  macString(hs.ClientMac),
		RecordJSON: string(data),
		SavedAt:    time.Now(),
	}
	if err := s.db.WithContext(ctx).Save(&model).Error; err != nil {
		return fmt.Errorf("%w: save handshake %s: %v", domain.ErrInternal, sessionID, err)
	}
	return nil
}

func (s *SQLiteHandshakeStore) LoadHandshake(ctx context.Context, sessionID string) (*domain.Handshake, error) {
	var model HandshakeModel
	if err := s.db.WithContext(ctx).First(&model, "session_id = ?", sessionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: handshake session %s not found", domain.ErrInputInvalid, sessionID)
		}
		return nil, fmt.Errorf("%w: load handshake %s: %v", domain.ErrInternal, sessionID, err)
	}

	var rec serialize.HandshakeRecord
	if err := json.Unmarshal([]byte(model.RecordJSON), &rec); err != nil {
		return nil, fmt.Errorf("%w: decode handshake %s: %v", domain.ErrInternal, sessionID, err)
	}
	return rec.ToHandshake(), nil
}

func (s *SQLiteHandshakeStore) ListSessions(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&HandshakeModel{}).Order("saved_at DESC").Pluck("session_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("%w: list handshake sessions: %v", domain.ErrInternal, err)
	}
	return ids, nil
}

func macString(mac [6]byte) string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", mac[0], mac[1], mac[2], mac[3], mac[4], mac[5])
}
