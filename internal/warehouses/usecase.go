package warehouses

import (
	"context"
	"time"

	"github.com/fulfilment-application/monolith/pkg/db/models"
	pkgerrors "github.com/fulfilment-application/monolith/pkg/errors"
)

type warehouseWriter interface {
	Create(ctx context.Context, warehouse *models.Warehouse) error
	Update(ctx context.Context, warehouse *models.Warehouse) error
}

// CreateWarehouse persists a new warehouse version. Its own contract is
// deliberately minimal: location present and capacity positive when supplied.
// Uniqueness, location feasibility, and capacity bounds are preconditions the
// calling orchestration enforces before invoking it.
func CreateWarehouse(ctx context.Context, store warehouseWriter, warehouse *models.Warehouse) error {
	if warehouse.Location == "" {
		return pkgerrors.New(pkgerrors.CodeInvalidArgument, "Warehouse location is required")
	}
	// zero means invalid here, not absent; the capacity field cannot
	// distinguish the two and callers always supply a validated value
	if warehouse.Capacity <= 0 {
		return pkgerrors.New(pkgerrors.CodeInvalidArgument, "Warehouse capacity must be positive")
	}

	// a new version always starts active
	warehouse.ArchivedAt = nil

	if err := store.Create(ctx, warehouse); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create warehouse")
	}
	return nil
}

// ArchiveWarehouse retires the given version. Detecting that the version is
// missing or already archived is the caller's responsibility.
func ArchiveWarehouse(ctx context.Context, store warehouseWriter, warehouse *models.Warehouse) error {
	now := time.Now()
	warehouse.ArchivedAt = &now
	if err := store.Update(ctx, warehouse); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "archive warehouse")
	}
	return nil
}
