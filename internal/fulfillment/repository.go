package fulfillment

import (
	"context"

	"gorm.io/gorm"

	"github.com/fulfilment-application/monolith/pkg/db/models"
)

// Repository implements association persistence on top of GORM.
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

func (r *Repository) ListAll(ctx context.Context) ([]models.StoreProductWarehouse, error) {
	var rows []models.StoreProductWarehouse
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *Repository) FindByStore(ctx context.Context, storeID int64) ([]models.StoreProductWarehouse, error) {
	var rows []models.StoreProductWarehouse
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) FindByProduct(ctx context.Context, productID int64) ([]models.StoreProductWarehouse, error) {
	var rows []models.StoreProductWarehouse
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) FindByWarehouse(ctx context.Context, code string) ([]models.StoreProductWarehouse, error) {
	var rows []models.StoreProductWarehouse
	err := r.db.WithContext(ctx).
		Where("warehouse_business_unit_code = ?", code).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// CountByStoreAndProduct counts the warehouses already fulfilling the product
// for the store.
func (r *Repository) CountByStoreAndProduct(ctx context.Context, storeID, productID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.StoreProductWarehouse{}).
		Where("store_id = ? AND product_id = ?", storeID, productID).
		Count(&count).Error
	return count, err
}

// CountDistinctWarehousesByStore counts the distinct warehouses associated
// with the store across all products.
func (r *Repository) CountDistinctWarehousesByStore(ctx context.Context, storeID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.StoreProductWarehouse{}).
		Where("store_id = ?", storeID).
		Distinct("warehouse_business_unit_code").
		Count(&count).Error
	return count, err
}

// CountProductsByWarehouse counts the distinct products stored in the
// warehouse across all stores.
func (r *Repository) CountProductsByWarehouse(ctx context.Context, code string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.StoreProductWarehouse{}).
		Where("warehouse_business_unit_code = ?", code).
		Distinct("product_id").
		Count(&count).Error
	return count, err
}

func (r *Repository) Exists(ctx context.Context, storeID, productID int64, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.StoreProductWarehouse{}).
		Where("store_id = ? AND product_id = ? AND warehouse_business_unit_code = ?", storeID, productID, code).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) Persist(ctx context.Context, association *models.StoreProductWarehouse) error {
	return r.db.WithContext(ctx).Create(association).Error
}

func (r *Repository) DeleteByStoreAndProductAndWarehouse(ctx context.Context, storeID, productID int64, code string) error {
	return r.db.WithContext(ctx).
		Where("store_id = ? AND product_id = ? AND warehouse_business_unit_code = ?", storeID, productID, code).
		Delete(&models.StoreProductWarehouse{}).Error
}
