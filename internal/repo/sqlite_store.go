package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-checkin-backend/internal/domain"
)

// SQLiteStore keeps records in the checkins table, indexed by
// (code, received_unix) so latest-by-code is a single index seek.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore migrates the schema and wraps db.
func NewSQLiteStore(db *gorm.DB) (*SQLiteStore, error) {
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate checkins: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Append implements Store.
func (s *SQLiteStore) Append(ctx context.Context, rec domain.Record) (string, error) {
	received, err := rec.ReceivedTime()
	if err != nil {
		return "", err
	}
	return appendUnique(ctx, rec, func(ctx context.Context, key string, doc []byte) error {
		row := &domain.CheckinRow{
			Key:          key,
			Code:         rec.Code,
			UserLabel:    rec.UserLabel,
			Device:       rec.Device,
			SentAt:       rec.SentAt,
			ReceivedAt:   rec.ReceivedAt,
			ReceivedUnix: received.UnixMicro(),
			OnTime:       rec.OnTime,
			Document:     doc,
		}
		if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrKeyExists
			}
			return fmt.Errorf("insert checkin: %w", err)
		}
		return nil
	})
}

// FindLatestByCode implements Store.
func (s *SQLiteStore) FindLatestByCode(ctx context.Context, code string) (*domain.Record, error) {
	var row domain.CheckinRow
	err := s.db.WithContext(ctx).
		Where("code = ?", code).
		Order("received_unix DESC, key DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rec := row.Record()
	return &rec, nil
}

// ListAll implements Store, ordered by key.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]string, error) {
	var keys []string
	err := s.db.WithContext(ctx).
		Model(&domain.CheckinRow{}).
		Order("key ASC").
		Pluck("key", &keys).Error
	return keys, err
}

// Fetch implements Store.
func (s *SQLiteStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	if !ValidKey(key) {
		return nil, ErrInvalidKey
	}
	var row domain.CheckinRow
	err := s.db.WithContext(ctx).Select("document").Where("key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.Document, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// isUniqueViolation matches primary key conflicts; glebarez/sqlite often
// returns plain-text errors for them.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique")
}
