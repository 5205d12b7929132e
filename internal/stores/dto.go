package stores

import "github.com/fulfilment-application/monolith/pkg/db/models"

// StoreDTO is the read model exposed by the service.
type StoreDTO struct {
	ID                      int64  `json:"id"`
	Name                    string `json:"name"`
	QuantityProductsInStock int    `json:"quantityProductsInStock"`
}

// CreateStoreInput carries the fields accepted when opening a store.
type CreateStoreInput struct {
	Name                    string
	QuantityProductsInStock int
}

// UpdateStoreInput carries the fields of a full store update.
type UpdateStoreInput struct {
	Name                    string
	QuantityProductsInStock int
}

// StorePayload is the event payload synced to the legacy store manager.
type StorePayload struct {
	ID                      int64  `json:"id"`
	Name                    string `json:"name"`
	QuantityProductsInStock int    `json:"quantityProductsInStock"`
}

func toStoreDTO(s *models.Store) *StoreDTO {
	if s == nil {
		return nil
	}
	return &StoreDTO{
		ID:                      s.ID,
		Name:                    s.Name,
		QuantityProductsInStock: s.QuantityProductsInStock,
	}
}

func toStorePayload(s *models.Store) StorePayload {
	return StorePayload{
		ID:                      s.ID,
		Name:                    s.Name,
		QuantityProductsInStock: s.QuantityProductsInStock,
	}
}
