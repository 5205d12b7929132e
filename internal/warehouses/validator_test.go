package warehouses

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fulfilment-application/monolith/internal/locations"
	pkgerrors "github.com/fulfilment-application/monolith/pkg/errors"
)

type stubReader struct {
	exists    bool
	existsErr error
	count     int
	countErr  error
}

func (s *stubReader) ExistsByBusinessUnitCode(context.Context, string) (bool, error) {
	return s.exists, s.existsErr
}

func (s *stubReader) CountByLocation(context.Context, string) (int, error) {
	return s.count, s.countErr
}

func newTestValidator(t *testing.T, reader *stubReader) *Validator {
	t.Helper()
	validator, err := NewValidator(reader, locations.NewGateway())
	if err != nil {
		t.Fatalf("building validator: %v", err)
	}
	return validator
}

func expectValidation(t *testing.T, err error, fragment string) {
	t.Helper()
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected app error, got %v", err)
	}
	if appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %s", appErr.Code())
	}
	if !strings.Contains(appErr.Message(), fragment) {
		t.Fatalf("expected message containing %q, got %q", fragment, appErr.Message())
	}
}

func TestValidateBusinessUnitCodeUniqueness(t *testing.T) {
	validator := newTestValidator(t, &stubReader{exists: false})
	if err := validator.ValidateBusinessUnitCodeUniqueness(context.Background(), "MWH.001"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	validator = newTestValidator(t, &stubReader{exists: true})
	err := validator.ValidateBusinessUnitCodeUniqueness(context.Background(), "MWH.001")
	expectValidation(t, err, "Warehouse with business unit code 'MWH.001' already exists")
}

func TestValidateBusinessUnitCodeUniquenessStoreFailure(t *testing.T) {
	validator := newTestValidator(t, &stubReader{existsErr: errors.New("timeout")})
	err := validator.ValidateBusinessUnitCodeUniqueness(context.Background(), "MWH.001")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestValidateLocation(t *testing.T) {
	validator := newTestValidator(t, &stubReader{})

	location, err := validator.ValidateLocation("ZWOLLE-001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if location.MaxCapacity != 40 {
		t.Fatalf("unexpected location: %+v", location)
	}

	_, err = validator.ValidateLocation("ROTTERDAM-001")
	expectValidation(t, err, "Invalid location: 'ROTTERDAM-001' does not exist")
}

func TestValidateWarehouseCreationFeasibility(t *testing.T) {
	validator := newTestValidator(t, &stubReader{count: 0})
	if err := validator.ValidateWarehouseCreationFeasibility(context.Background(), "ZWOLLE-001"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// ZWOLLE-001 allows a single warehouse
	validator = newTestValidator(t, &stubReader{count: 1})
	err := validator.ValidateWarehouseCreationFeasibility(context.Background(), "ZWOLLE-001")
	expectValidation(t, err, "Maximum number of warehouses (1) already reached")
}

func TestValidateCapacityAndStock(t *testing.T) {
	validator := newTestValidator(t, &stubReader{})

	if err := validator.ValidateCapacityAndStock(40, 10, "ZWOLLE-001"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := validator.ValidateCapacityAndStock(50, 10, "ZWOLLE-001")
	expectValidation(t, err, "Warehouse capacity (50) exceeds maximum capacity for location (40)")

	err = validator.ValidateCapacityAndStock(40, 45, "ZWOLLE-001")
	expectValidation(t, err, "Stock (45) cannot exceed warehouse capacity (40)")
}

func TestValidateReplacementCapacity(t *testing.T) {
	validator := newTestValidator(t, &stubReader{})

	if err := validator.ValidateReplacementCapacity(40, 30); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := validator.ValidateReplacementCapacity(20, 30)
	expectValidation(t, err, "New warehouse capacity (20) cannot accommodate existing stock (30)")
}

func TestValidateStockMatching(t *testing.T) {
	validator := newTestValidator(t, &stubReader{})

	if err := validator.ValidateStockMatching(30, 30); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := validator.ValidateStockMatching(25, 30)
	expectValidation(t, err, "New warehouse stock (25) must match existing warehouse stock (30)")
}
