package models

import "time"

// StoreProductWarehouse asserts that a warehouse fulfils a product for a
// store. The (store, product, warehouse) triple is unique; rows are created
// and deleted, never updated.
type StoreProductWarehouse struct {
	ID                        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	StoreID                   int64     `gorm:"column:store_id;not null;uniqueIndex:ux_store_product_warehouse;index"`
	ProductID                 int64     `gorm:"column:product_id;not null;uniqueIndex:ux_store_product_warehouse"`
	WarehouseBusinessUnitCode string    `gorm:"column:warehouse_business_unit_code;size:50;not null;uniqueIndex:ux_store_product_warehouse;index"`
	CreatedAt                 time.Time `gorm:"column:created_at;autoCreateTime"`
}
