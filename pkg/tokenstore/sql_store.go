package tokenstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/storefront/pkg/db"
	"github.com/angelmondragon/storefront/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLStore keeps values in the local sqlite database.
type SQLStore struct {
	client *db.Client
}

// NewSQLStore migrates the kv table and returns a store over it.
func NewSQLStore(ctx context.Context, client *db.Client) (*SQLStore, error) {
	if client == nil {
		return nil, fmt.Errorf("db client is required")
	}
	if err := client.Migrate(ctx, &models.KVEntry{}); err != nil {
		return nil, err
	}
	return &SQLStore{client: client}, nil
}

func (s *SQLStore) Token(ctx context.Context) (string, error) {
	value, _, err := s.Get(ctx, keyAccessToken)
	return value, err
}

func (s *SQLStore) SetToken(ctx context.Context, token string) error {
	return s.Set(ctx, keyAccessToken, token)
}

func (s *SQLStore) ClearToken(ctx context.Context) error {
	return s.Delete(ctx, keyAccessToken)
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	var entry models.KVEntry
	err := s.client.DB().WithContext(ctx).Where("name = ?", key).Take(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("load %s: %w", key, err)
	}
	return entry.Value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	entry := models.KVEntry{Name: key, Value: value}
	err := s.client.DB().WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("name IN ?", keys).Delete(&models.KVEntry{}).Error; err != nil {
			return fmt.Errorf("delete %v: %w", keys, err)
		}
		return nil
	})
}
