package fulfillment

import (
	"time"

	"github.com/fulfilment-application/monolith/pkg/db/models"
)

// AssociationDTO is the read model for a store-product-warehouse association.
type AssociationDTO struct {
	ID                        int64     `json:"id"`
	StoreID                   int64     `json:"storeId"`
	ProductID                 int64     `json:"productId"`
	WarehouseBusinessUnitCode string    `json:"warehouseBusinessUnitCode"`
	CreatedAt                 time.Time `json:"createdAt"`
}

// CreateAssociationInput identifies the triple to associate.
type CreateAssociationInput struct {
	StoreID                   int64
	ProductID                 int64
	WarehouseBusinessUnitCode string
}

func toAssociationDTO(a *models.StoreProductWarehouse) *AssociationDTO {
	if a == nil {
		return nil
	}
	return &AssociationDTO{
		ID:                        a.ID,
		StoreID:                   a.StoreID,
		ProductID:                 a.ProductID,
		WarehouseBusinessUnitCode: a.WarehouseBusinessUnitCode,
		CreatedAt:                 a.CreatedAt,
	}
}

func toAssociationDTOs(rows []models.StoreProductWarehouse) []AssociationDTO {
	out := make([]AssociationDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toAssociationDTO(&rows[i]))
	}
	return out
}
