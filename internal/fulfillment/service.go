package fulfillment

import (
	"context"
	"fmt"

	"github.com/fulfilment-application/monolith/pkg/db"
	"github.com/fulfilment-application/monolith/pkg/db/models"
	pkgerrors "github.com/fulfilment-application/monolith/pkg/errors"
	"github.com/fulfilment-application/monolith/pkg/logger"
	"github.com/fulfilment-application/monolith/pkg/redis"
)

const (
	maxWarehousesPerProductPerStore = 2
	maxWarehousesPerStore           = 3
	maxProductsPerWarehouse         = 5
)

// The warehouse scope matches the lifecycle service's lock keys, so a create
// here and an archive there contend on the same key.
const (
	lockScopeStore     = "store"
	lockScopeWarehouse = "warehouse"
)

type associationStore interface {
	ListAll(ctx context.Context) ([]models.StoreProductWarehouse, error)
	FindByStore(ctx context.Context, storeID int64) ([]models.StoreProductWarehouse, error)
	FindByProduct(ctx context.Context, productID int64) ([]models.StoreProductWarehouse, error)
	FindByWarehouse(ctx context.Context, code string) ([]models.StoreProductWarehouse, error)
	CountByStoreAndProduct(ctx context.Context, storeID, productID int64) (int64, error)
	CountDistinctWarehousesByStore(ctx context.Context, storeID int64) (int64, error)
	CountProductsByWarehouse(ctx context.Context, code string) (int64, error)
	Exists(ctx context.Context, storeID, productID int64, code string) (bool, error)
	Persist(ctx context.Context, association *models.StoreProductWarehouse) error
	DeleteByStoreAndProductAndWarehouse(ctx context.Context, storeID, productID int64, code string) error
}

type warehouseFinder interface {
	FindActiveByBusinessUnitCode(ctx context.Context, code string) (*models.Warehouse, error)
}

type mutationLocker interface {
	Key(scope string, parts ...string) string
	Acquire(ctx context.Context, key string) (*redis.Lease, error)
}

// Service exposes fulfillment association operations.
type Service interface {
	ListAll(ctx context.Context) ([]AssociationDTO, error)
	GetByStore(ctx context.Context, storeID int64) ([]AssociationDTO, error)
	GetByProduct(ctx context.Context, productID int64) ([]AssociationDTO, error)
	GetByWarehouse(ctx context.Context, code string) ([]AssociationDTO, error)
	Create(ctx context.Context, input CreateAssociationInput) (*AssociationDTO, error)
	Delete(ctx context.Context, storeID, productID int64, code string) error
}

// ServiceParams collects the dependencies of the fulfillment service.
type ServiceParams struct {
	Repository associationStore
	Warehouses warehouseFinder
	Locks      mutationLocker
	Logger     *logger.Logger
}

type service struct {
	repo       associationStore
	warehouses warehouseFinder
	locks      mutationLocker
	logg       *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("association repository required")
	}
	if params.Warehouses == nil {
		return nil, fmt.Errorf("warehouse finder required")
	}
	if params.Locks == nil {
		return nil, fmt.Errorf("mutation locks required")
	}
	return &service{
		repo:       params.Repository,
		warehouses: params.Warehouses,
		locks:      params.Locks,
		logg:       params.Logger,
	}, nil
}

func (s *service) ListAll(ctx context.Context) ([]AssociationDTO, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list associations")
	}
	return toAssociationDTOs(rows), nil
}

func (s *service) GetByStore(ctx context.Context, storeID int64) ([]AssociationDTO, error) {
	rows, err := s.repo.FindByStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list associations by store")
	}
	return toAssociationDTOs(rows), nil
}

func (s *service) GetByProduct(ctx context.Context, productID int64) ([]AssociationDTO, error) {
	rows, err := s.repo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list associations by product")
	}
	return toAssociationDTOs(rows), nil
}

func (s *service) GetByWarehouse(ctx context.Context, code string) ([]AssociationDTO, error) {
	rows, err := s.repo.FindByWarehouse(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list associations by warehouse")
	}
	return toAssociationDTOs(rows), nil
}

// Create validates the triple against all cardinality rules and persists it.
// The per-store lock covers the store-scoped counts; the warehouse lock
// covers the product count shared across stores and the active check racing
// an archive. Lock order is store, then warehouse, everywhere both are held.
func (s *service) Create(ctx context.Context, input CreateAssociationInput) (*AssociationDTO, error) {
	storeLease, err := s.locks.Acquire(ctx, s.locks.Key(lockScopeStore, fmt.Sprintf("%d", input.StoreID)))
	if err != nil {
		return nil, err
	}
	defer storeLease.Release(ctx)

	warehouseLease, err := s.locks.Acquire(ctx, s.locks.Key(lockScopeWarehouse, input.WarehouseBusinessUnitCode))
	if err != nil {
		return nil, err
	}
	defer warehouseLease.Release(ctx)

	if err := s.validateAssociation(ctx, input.StoreID, input.ProductID, input.WarehouseBusinessUnitCode); err != nil {
		return nil, err
	}

	association := &models.StoreProductWarehouse{
		StoreID:                   input.StoreID,
		ProductID:                 input.ProductID,
		WarehouseBusinessUnitCode: input.WarehouseBusinessUnitCode,
	}
	if err := s.repo.Persist(ctx, association); err != nil {
		if db.IsUniqueViolation(err, "ux_store_product_warehouse") {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation,
				"Association already exists for Store %d, Product %d, and Warehouse %s",
				input.StoreID, input.ProductID, input.WarehouseBusinessUnitCode)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist association")
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"store_id":   input.StoreID,
			"product_id": input.ProductID,
			"warehouse":  input.WarehouseBusinessUnitCode,
		})
		s.logg.Info(logCtx, "fulfillment association created")
	}
	return toAssociationDTO(association), nil
}

func (s *service) Delete(ctx context.Context, storeID, productID int64, code string) error {
	lease, err := s.locks.Acquire(ctx, s.locks.Key(lockScopeStore, fmt.Sprintf("%d", storeID)))
	if err != nil {
		return err
	}
	defer lease.Release(ctx)

	exists, err := s.repo.Exists(ctx, storeID, productID, code)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check association")
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Association not found")
	}

	if err := s.repo.DeleteByStoreAndProductAndWarehouse(ctx, storeID, productID, code); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete association")
	}
	return nil
}

// validateAssociation runs the checks in a fixed order and fails on the first
// violation. The order determines which error the caller sees.
func (s *service) validateAssociation(ctx context.Context, storeID, productID int64, code string) error {
	if err := s.validateWarehouseActive(ctx, code); err != nil {
		return err
	}
	if err := s.validateNoDuplicate(ctx, storeID, productID, code); err != nil {
		return err
	}
	if err := s.validateWarehousesPerProductPerStore(ctx, storeID, productID); err != nil {
		return err
	}
	if err := s.validateWarehousesPerStore(ctx, storeID, code); err != nil {
		return err
	}
	return s.validateProductsPerWarehouse(ctx, code, productID)
}

func (s *service) validateWarehouseActive(ctx context.Context, code string) error {
	warehouse, err := s.warehouses.FindActiveByBusinessUnitCode(ctx, code)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find warehouse")
	}
	if warehouse == nil || warehouse.Archived() {
		return pkgerrors.Newf(pkgerrors.CodeValidation,
			"Warehouse with business unit code '%s' does not exist or is archived", code)
	}
	return nil
}

func (s *service) validateNoDuplicate(ctx context.Context, storeID, productID int64, code string) error {
	exists, err := s.repo.Exists(ctx, storeID, productID, code)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check association")
	}
	if exists {
		return pkgerrors.Newf(pkgerrors.CodeValidation,
			"Association already exists for Store %d, Product %d, and Warehouse %s",
			storeID, productID, code)
	}
	return nil
}

// Each product can be fulfilled by at most 2 different warehouses per store.
func (s *service) validateWarehousesPerProductPerStore(ctx context.Context, storeID, productID int64) error {
	count, err := s.repo.CountByStoreAndProduct(ctx, storeID, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count warehouses for product")
	}
	if count >= maxWarehousesPerProductPerStore {
		return pkgerrors.Newf(pkgerrors.CodeValidation,
			"Product %d in Store %d already has the maximum of %d warehouses",
			productID, storeID, maxWarehousesPerProductPerStore)
	}
	return nil
}

// Each store can be fulfilled by at most 3 different warehouses. A warehouse
// already associated with the store does not count as new, so the cap does
// not apply to it.
func (s *service) validateWarehousesPerStore(ctx context.Context, storeID int64, code string) error {
	distinct, err := s.repo.CountDistinctWarehousesByStore(ctx, storeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count warehouses for store")
	}
	existing, err := s.repo.FindByStore(ctx, storeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list associations by store")
	}
	alreadyAssociated := false
	for _, row := range existing {
		if row.WarehouseBusinessUnitCode == code {
			alreadyAssociated = true
			break
		}
	}
	if !alreadyAssociated && distinct >= maxWarehousesPerStore {
		return pkgerrors.Newf(pkgerrors.CodeValidation,
			"Store %d already has the maximum of %d different warehouses",
			storeID, maxWarehousesPerStore)
	}
	return nil
}

// Each warehouse can store at most 5 types of products. A product already in
// the warehouse does not count as new.
func (s *service) validateProductsPerWarehouse(ctx context.Context, code string, productID int64) error {
	count, err := s.repo.CountProductsByWarehouse(ctx, code)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products in warehouse")
	}
	existing, err := s.repo.FindByWarehouse(ctx, code)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list associations by warehouse")
	}
	alreadyStored := false
	for _, row := range existing {
		if row.ProductID == productID {
			alreadyStored = true
			break
		}
	}
	if !alreadyStored && count >= maxProductsPerWarehouse {
		return pkgerrors.Newf(pkgerrors.CodeValidation,
			"Warehouse %s already stores the maximum of %d different products",
			code, maxProductsPerWarehouse)
	}
	return nil
}
