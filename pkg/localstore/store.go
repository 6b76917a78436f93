package localstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rosamendez/emberglow-backend/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is one storage slot: a well-known key holding a single JSON value.
// The cart, the product catalog snapshot, and each page's content blocks all
// live under their own key.
type Entry struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName pins the table created by the storage_entries migration.
func (Entry) TableName() string {
	return "storage_entries"
}

// Store reads and writes whole values under well-known keys. Readers treat a
// missing key as empty; corrupt values are the caller's concern since the
// store holds opaque JSON.
type Store struct {
	client *db.Client
}

func New(client *db.Client) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &Store{client: client}, nil
}

// Get returns the stored value and whether the key exists.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var entry Entry
	err := s.client.DB().WithContext(ctx).First(&entry, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("load %q: %w", key, err)
	}
	return entry.Value, true, nil
}

// Put replaces the full value stored under key.
func (s *Store) Put(ctx context.Context, key, value string) error {
	entry := Entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := s.client.DB().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
	if err != nil {
		return fmt.Errorf("store %q: %w", key, err)
	}
	return nil
}

// Delete removes the key; deleting an absent key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.DB().WithContext(ctx).Delete(&Entry{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// AutoMigrate creates the storage table. Production schemas come from the
// goose migrations; this exists for dev auto-run and tests.
func (s *Store) AutoMigrate() error {
	return s.client.DB().AutoMigrate(&Entry{})
}
