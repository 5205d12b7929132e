package models

import "time"

// Store represents a retail store served by the fulfilment network.
type Store struct {
	ID                      int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name                    string    `gorm:"column:name;size:40;not null;uniqueIndex:ux_stores_name"`
	QuantityProductsInStock int       `gorm:"column:quantity_products_in_stock;not null;default:0"`
	CreatedAt               time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt               time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
