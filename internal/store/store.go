// Package store persists AOIs on SQLite through GORM. Geometries arrive
// already normalized; the store does not validate them again.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/evhagen/aoiview/internal/core/model"
)

var ErrNotFound = errors.New("aoi not found")

type Store struct {
	db *gorm.DB
}

// Open connects to the SQLite file at path (created if absent) and runs
// migrations. glebarez/sqlite is pure Go, no CGO needed.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	if err := db.AutoMigrate(&model.AOI{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// New wraps an existing connection; used by tests with an in-memory DB.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, aoi *model.AOI) error {
	if err := s.db.WithContext(ctx).Create(aoi).Error; err != nil {
		return fmt.Errorf("create aoi: %w", err)
	}
	return nil
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]model.AOI, error) {
	var out []model.AOI
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list aois: %w", err)
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, userID string, id uint) (model.AOI, error) {
	var aoi model.AOI
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&aoi).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.AOI{}, ErrNotFound
	}
	if err != nil {
		return model.AOI{}, fmt.Errorf("get aoi %d: %w", id, err)
	}
	return aoi, nil
}

func (s *Store) Delete(ctx context.Context, userID string, id uint) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&model.AOI{})
	if res.Error != nil {
		return fmt.Errorf("delete aoi %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping backs the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.WithContext(ctx).DB()
	if err != nil {
		return fmt.Errorf("db handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	return nil
}
