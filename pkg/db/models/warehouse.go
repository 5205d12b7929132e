package models

import (
	"time"

	"github.com/google/uuid"
)

// Warehouse is one version in a business unit code's lifecycle chain. A code
// has at most one row with a null archived_at at any instant; replace archives
// the current row and inserts a fresh active one under the same code.
type Warehouse struct {
	ID               uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	BusinessUnitCode string     `gorm:"column:business_unit_code;size:50;not null;index"`
	Location         string     `gorm:"column:location;not null"`
	Capacity         int        `gorm:"column:capacity;not null"`
	Stock            int        `gorm:"column:stock;not null;default:0"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
	ArchivedAt       *time.Time `gorm:"column:archived_at"`
}

// Archived reports whether this version has been retired.
func (w *Warehouse) Archived() bool {
	return w != nil && w.ArchivedAt != nil
}
