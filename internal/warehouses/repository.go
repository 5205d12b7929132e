package warehouses

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fulfilment-application/monolith/pkg/db/models"
)

// Repository implements warehouse persistence on top of GORM. Archived rows
// stay in the table; most queries filter them out.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// GetAll returns every active warehouse.
func (r *Repository) GetAll(ctx context.Context) ([]models.Warehouse, error) {
	var rows []models.Warehouse
	err := r.db.WithContext(ctx).
		Where("archived_at IS NULL").
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// Create inserts a new warehouse version and fills in its generated ID.
func (r *Repository) Create(ctx context.Context, warehouse *models.Warehouse) error {
	if warehouse.ID == uuid.Nil {
		warehouse.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(warehouse).Error
}

// Update persists all mutable fields of an existing version.
func (r *Repository) Update(ctx context.Context, warehouse *models.Warehouse) error {
	result := r.db.WithContext(ctx).
		Model(&models.Warehouse{}).
		Where("id = ?", warehouse.ID).
		Updates(map[string]any{
			"business_unit_code": warehouse.BusinessUnitCode,
			"location":           warehouse.Location,
			"capacity":           warehouse.Capacity,
			"stock":              warehouse.Stock,
			"archived_at":        warehouse.ArchivedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByBusinessUnitCode returns the most recent version under the code,
// active or archived, or nil when the code was never used.
func (r *Repository) FindByBusinessUnitCode(ctx context.Context, code string) (*models.Warehouse, error) {
	var row models.Warehouse
	err := r.db.WithContext(ctx).
		Where("business_unit_code = ?", code).
		Order("created_at DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindActiveByBusinessUnitCode returns the active version under the code, or
// nil when none exists.
func (r *Repository) FindActiveByBusinessUnitCode(ctx context.Context, code string) (*models.Warehouse, error) {
	var row models.Warehouse
	err := r.db.WithContext(ctx).
		Where("business_unit_code = ? AND archived_at IS NULL", code).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ExistsByBusinessUnitCode reports whether an active version uses the code.
func (r *Repository) ExistsByBusinessUnitCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Warehouse{}).
		Where("business_unit_code = ? AND archived_at IS NULL", code).
		Count(&count).Error
	return count > 0, err
}

// CountByLocation counts active warehouses at the location.
func (r *Repository) CountByLocation(ctx context.Context, location string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Warehouse{}).
		Where("location = ? AND archived_at IS NULL", location).
		Count(&count).Error
	return int(count), err
}
