package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"giftshop/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage is the sqlite-backed event journal of the storefront sequencer.
type Storage struct {
	db *gorm.DB
}

// NewStorage opens (or creates) the journal at dbPath. An empty path
// resolves to the per-user data directory.
func NewStorage(dbPath string) (*Storage, error) {
	if dbPath == "" {
		var err error
		dbPath, err = DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve DB path: %w", err)
		}
	}

	// Ensure directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto Migration
	if err := db.AutoMigrate(&domain.JournalEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// DefaultDBPath resolves the journal file path based on OS
func DefaultDBPath() (string, error) {
	var configDir string
	var err error

	if runtime.GOOS == "windows" {
		configDir = os.Getenv("LOCALAPPDATA")
		if configDir == "" {
			configDir, err = os.UserConfigDir()
		}
	} else {
		configDir, err = os.UserConfigDir()
	}

	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "GiftShop", "data", "journal.db"), nil
}

// ======================================================================================
// Journal Operations
// ======================================================================================

// SaveEvent appends a sequenced event. Sequence numbers are unique.
func (s *Storage) SaveEvent(ctx context.Context, entry *domain.JournalEntry) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

// LoadEvents returns every journaled event in sequence order.
func (s *Storage) LoadEvents(ctx context.Context) ([]domain.JournalEntry, error) {
	var entries []domain.JournalEntry
	err := s.db.WithContext(ctx).Order("seq asc").Find(&entries).Error
	return entries, err
}

// DeleteSessions removes every event of the given sessions.
func (s *Storage) DeleteSessions(ctx context.Context, sessionIDs []string) error {
	if len(sessionIDs) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Where("session_id IN ?", sessionIDs).
		Delete(&domain.JournalEntry{}).Error
}

// LastSeq returns the highest journaled sequence number, 0 when empty.
func (s *Storage) LastSeq(ctx context.Context) (uint64, error) {
	var last uint64
	err := s.db.WithContext(ctx).
		Model(&domain.JournalEntry{}).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&last).Error
	return last, err
}

// Close releases the underlying connection pool.
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
