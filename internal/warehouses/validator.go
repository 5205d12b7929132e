package warehouses

import (
	"context"
	"fmt"

	"github.com/fulfilment-application/monolith/internal/locations"
	pkgerrors "github.com/fulfilment-application/monolith/pkg/errors"
)

type warehouseReader interface {
	ExistsByBusinessUnitCode(ctx context.Context, code string) (bool, error)
	CountByLocation(ctx context.Context, location string) (int, error)
}

type locationResolver interface {
	Resolve(identification string) (locations.Location, bool)
}

// Validator runs the warehouse lifecycle business rules. Each check fails
// with a validation error naming the violated rule and its operands.
type Validator struct {
	warehouses warehouseReader
	locations  locationResolver
}

func NewValidator(warehouses warehouseReader, locationGateway locationResolver) (*Validator, error) {
	if warehouses == nil {
		return nil, fmt.Errorf("warehouse reader required")
	}
	if locationGateway == nil {
		return nil, fmt.Errorf("location resolver required")
	}
	return &Validator{warehouses: warehouses, locations: locationGateway}, nil
}

// ValidateBusinessUnitCodeUniqueness fails when an active warehouse already
// uses the code. Archived versions do not block reuse.
func (v *Validator) ValidateBusinessUnitCodeUniqueness(ctx context.Context, businessUnitCode string) error {
	exists, err := v.warehouses.ExistsByBusinessUnitCode(ctx, businessUnitCode)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check business unit code uniqueness")
	}
	if exists {
		return pkgerrors.Newf(pkgerrors.CodeValidation,
			"Warehouse with business unit code '%s' already exists", businessUnitCode)
	}
	return nil
}

// ValidateLocation resolves the identifier against the static catalog.
func (v *Validator) ValidateLocation(locationIdentifier string) (locations.Location, error) {
	location, ok := v.locations.Resolve(locationIdentifier)
	if !ok {
		return locations.Location{}, pkgerrors.Newf(pkgerrors.CodeValidation,
			"Invalid location: '%s' does not exist", locationIdentifier)
	}
	return location, nil
}

// ValidateWarehouseCreationFeasibility fails when the location already hosts
// its maximum number of active warehouses.
func (v *Validator) ValidateWarehouseCreationFeasibility(ctx context.Context, locationIdentifier string) error {
	location, err := v.ValidateLocation(locationIdentifier)
	if err != nil {
		return err
	}
	existing, err := v.warehouses.CountByLocation(ctx, locationIdentifier)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count warehouses at location")
	}
	if existing >= location.MaxNumberOfWarehouses {
		return pkgerrors.Newf(pkgerrors.CodeValidation,
			"Cannot create warehouse at location '%s'. Maximum number of warehouses (%d) already reached",
			locationIdentifier, location.MaxNumberOfWarehouses)
	}
	return nil
}

// ValidateCapacityAndStock checks the capacity fits the location and the
// stock fits the capacity.
func (v *Validator) ValidateCapacityAndStock(capacity, stock int, locationIdentifier string) error {
	location, err := v.ValidateLocation(locationIdentifier)
	if err != nil {
		return err
	}
	if capacity > location.MaxCapacity {
		return pkgerrors.Newf(pkgerrors.CodeValidation,
			"Warehouse capacity (%d) exceeds maximum capacity for location (%d)",
			capacity, location.MaxCapacity)
	}
	if stock > capacity {
		return pkgerrors.Newf(pkgerrors.CodeValidation,
			"Stock (%d) cannot exceed warehouse capacity (%d)", stock, capacity)
	}
	return nil
}

// ValidateReplacementCapacity requires the new version to hold what the old
// version currently holds.
func (v *Validator) ValidateReplacementCapacity(newCapacity, existingStock int) error {
	if newCapacity < existingStock {
		return pkgerrors.Newf(pkgerrors.CodeValidation,
			"New warehouse capacity (%d) cannot accommodate existing stock (%d)",
			newCapacity, existingStock)
	}
	return nil
}

// ValidateStockMatching requires the replacement to carry over the stock
// exactly, never reconcile it.
func (v *Validator) ValidateStockMatching(newStock, existingStock int) error {
	if newStock != existingStock {
		return pkgerrors.Newf(pkgerrors.CodeValidation,
			"New warehouse stock (%d) must match existing warehouse stock (%d)",
			newStock, existingStock)
	}
	return nil
}
