package warehouses

import "github.com/fulfilment-application/monolith/pkg/db/models"

// WarehouseDTO is the read model exposed by the service.
type WarehouseDTO struct {
	BusinessUnitCode string `json:"businessUnitCode"`
	Location         string `json:"location"`
	Capacity         int    `json:"capacity"`
	Stock            int    `json:"stock"`
}

// CreateWarehouseInput carries the fields accepted when opening a new
// business unit code.
type CreateWarehouseInput struct {
	BusinessUnitCode string
	Location         string
	Capacity         int
	Stock            int
}

// ReplaceWarehouseInput carries the fields of the version that supersedes the
// current active one.
type ReplaceWarehouseInput struct {
	Location string
	Capacity int
	Stock    int
}

func toWarehouseDTO(w *models.Warehouse) *WarehouseDTO {
	if w == nil {
		return nil
	}
	return &WarehouseDTO{
		BusinessUnitCode: w.BusinessUnitCode,
		Location:         w.Location,
		Capacity:         w.Capacity,
		Stock:            w.Stock,
	}
}
