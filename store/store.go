package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/datacite/datafiles-service/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// DatafileStore reads datafile records. Writes happen out-of-band.
type DatafileStore interface {
	All(ctx context.Context) ([]models.Datafile, error)
	BySlug(ctx context.Context, slug string) (*models.Datafile, error)
}

// RequesterStore persists requester records. MarkAccessed stamps the
// access time at most once; later calls are no-ops.
type RequesterStore interface {
	Create(ctx context.Context, r *models.Requester) error
	ByID(ctx context.Context, id uint) (*models.Requester, error)
	MarkAccessed(ctx context.Context, id uint, at time.Time) error
}

type gormDatafileStore struct {
	db *gorm.DB
}

// NewDatafileStore returns a gorm backed DatafileStore.
func NewDatafileStore(db *gorm.DB) DatafileStore {
	return &gormDatafileStore{db: db}
}

func (s *gormDatafileStore) All(ctx context.Context) ([]models.Datafile, error) {
	var files []models.Datafile
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

func (s *gormDatafileStore) BySlug(ctx context.Context, slug string) (*models.Datafile, error) {
	var file models.Datafile
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &file, nil
}

type gormRequesterStore struct {
	db *gorm.DB
}

// NewRequesterStore returns a gorm backed RequesterStore.
func NewRequesterStore(db *gorm.DB) RequesterStore {
	return &gormRequesterStore{db: db}
}

func (s *gormRequesterStore) Create(ctx context.Context, r *models.Requester) error {
	// Referential integrity: a requester must point at an existing datafile.
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Datafile{}).Where("id = ?", r.DatafileID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return s.db.WithContext(ctx).Create(r).Error
}

func (s *gormRequesterStore) ByID(ctx context.Context, id uint) (*models.Requester, error) {
	var r models.Requester
	err := s.db.WithContext(ctx).First(&r, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (s *gormRequesterStore) MarkAccessed(ctx context.Context, id uint, at time.Time) error {
	// Guarded update keeps the first redemption timestamp.
	return s.db.WithContext(ctx).
		Model(&models.Requester{}).
		Where("id = ? AND accessed_at IS NULL", id).
		Update("accessed_at", at).Error
}
