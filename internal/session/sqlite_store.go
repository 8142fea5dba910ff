package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fleet-dashboard/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type clientStorageEntry struct {
	Key       string `gorm:"column:storage_key;primaryKey;size:128"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (clientStorageEntry) TableName() string { return ClientStorageCollection }

// SQLiteIdentityStore keeps the slot as a row of a key/value table.
type SQLiteIdentityStore struct {
	db  *gorm.DB
	key string
}

func NewSQLiteIdentityStore(db *gorm.DB, key string) (*SQLiteIdentityStore, error) {
	if key == "" {
		key = DefaultStorageKey
	}
	if err := db.AutoMigrate(&clientStorageEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate %s: %w", ClientStorageCollection, err)
	}
	return &SQLiteIdentityStore{db: db, key: key}, nil
}

func (s *SQLiteIdentityStore) Load(ctx context.Context) (*models.User, error) {
	var entry clientStorageEntry
	err := s.db.WithContext(ctx).Where("storage_key = ?", s.key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read identity from sqlite: %w", err)
	}
	return decodeIdentity(entry.Value)
}

func (s *SQLiteIdentityStore) Save(ctx context.Context, user models.User) error {
	value, err := encodeIdentity(user)
	if err != nil {
		return err
	}

	entry := clientStorageEntry{Key: s.key, Value: value}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write identity to sqlite: %w", err)
	}
	return nil
}

func (s *SQLiteIdentityStore) Clear(ctx context.Context) error {
	err := s.db.WithContext(ctx).Where("storage_key = ?", s.key).Delete(&clientStorageEntry{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear identity in sqlite: %w", err)
	}
	return nil
}

func (s *SQLiteIdentityStore) Name() string { return "sqlite" }
