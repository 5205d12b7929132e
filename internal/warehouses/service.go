package warehouses

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/fulfilment-application/monolith/pkg/db/models"
	pkgerrors "github.com/fulfilment-application/monolith/pkg/errors"
	"github.com/fulfilment-application/monolith/pkg/logger"
	"github.com/fulfilment-application/monolith/pkg/redis"
)

type warehouseStore interface {
	GetAll(ctx context.Context) ([]models.Warehouse, error)
	Create(ctx context.Context, warehouse *models.Warehouse) error
	Update(ctx context.Context, warehouse *models.Warehouse) error
	FindByBusinessUnitCode(ctx context.Context, code string) (*models.Warehouse, error)
	FindActiveByBusinessUnitCode(ctx context.Context, code string) (*models.Warehouse, error)
	ExistsByBusinessUnitCode(ctx context.Context, code string) (bool, error)
	CountByLocation(ctx context.Context, location string) (int, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type mutationLocker interface {
	Key(scope string, parts ...string) string
	Acquire(ctx context.Context, key string) (*redis.Lease, error)
}

// storeFactory binds the warehouse store to a transaction.
type storeFactory func(tx *gorm.DB) warehouseStore

const (
	lockScopeWarehouse = "warehouse"
	lockScopeLocation  = "location"
)

// Service exposes the warehouse lifecycle operations.
type Service interface {
	List(ctx context.Context) ([]WarehouseDTO, error)
	Get(ctx context.Context, businessUnitCode string) (*WarehouseDTO, error)
	Create(ctx context.Context, input CreateWarehouseInput) (*WarehouseDTO, error)
	Replace(ctx context.Context, businessUnitCode string, input ReplaceWarehouseInput) (*WarehouseDTO, error)
	Archive(ctx context.Context, businessUnitCode string) error
}

// ServiceParams collects the dependencies of the warehouse service.
type ServiceParams struct {
	Repository warehouseStore
	Validator  *Validator
	DB         txRunner
	Locks      mutationLocker
	Logger     *logger.Logger
	// StoreFor overrides how tx-bound stores are built; nil uses the default
	// GORM repository.
	StoreFor storeFactory
}

type service struct {
	repo      warehouseStore
	validator *Validator
	db        txRunner
	locks     mutationLocker
	logg      *logger.Logger
	storeFor  storeFactory
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("warehouse repository required")
	}
	if params.Validator == nil {
		return nil, fmt.Errorf("warehouse validator required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("database runner required")
	}
	if params.Locks == nil {
		return nil, fmt.Errorf("mutation locks required")
	}
	storeFor := params.StoreFor
	if storeFor == nil {
		storeFor = func(tx *gorm.DB) warehouseStore { return NewRepository(tx) }
	}
	return &service{
		repo:      params.Repository,
		validator: params.Validator,
		db:        params.DB,
		locks:     params.Locks,
		logg:      params.Logger,
		storeFor:  storeFor,
	}, nil
}

func (s *service) List(ctx context.Context) ([]WarehouseDTO, error) {
	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list warehouses")
	}
	out := make([]WarehouseDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toWarehouseDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, businessUnitCode string) (*WarehouseDTO, error) {
	warehouse, err := s.repo.FindActiveByBusinessUnitCode(ctx, businessUnitCode)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find warehouse")
	}
	if warehouse == nil || warehouse.Archived() {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound,
			"Warehouse with business unit code '%s' not found", businessUnitCode)
	}
	return toWarehouseDTO(warehouse), nil
}

// Create runs the full precondition chain before delegating to the minimal
// creation contract: uniqueness, location existence, feasibility at the
// location, then capacity and stock bounds, in that order.
func (s *service) Create(ctx context.Context, input CreateWarehouseInput) (*WarehouseDTO, error) {
	codeLease, err := s.locks.Acquire(ctx, s.locks.Key(lockScopeWarehouse, input.BusinessUnitCode))
	if err != nil {
		return nil, err
	}
	defer codeLease.Release(ctx)

	locationLease, err := s.locks.Acquire(ctx, s.locks.Key(lockScopeLocation, input.Location))
	if err != nil {
		return nil, err
	}
	defer locationLease.Release(ctx)

	if err := s.validator.ValidateBusinessUnitCodeUniqueness(ctx, input.BusinessUnitCode); err != nil {
		return nil, err
	}
	if _, err := s.validator.ValidateLocation(input.Location); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateWarehouseCreationFeasibility(ctx, input.Location); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateCapacityAndStock(input.Capacity, input.Stock, input.Location); err != nil {
		return nil, err
	}

	warehouse := &models.Warehouse{
		BusinessUnitCode: input.BusinessUnitCode,
		Location:         input.Location,
		Capacity:         input.Capacity,
		Stock:            input.Stock,
	}
	if err := CreateWarehouse(ctx, s.repo, warehouse); err != nil {
		return nil, err
	}

	s.logInfo(ctx, "warehouse created", warehouse.BusinessUnitCode)
	return toWarehouseDTO(warehouse), nil
}

// Replace archives the current active version and opens a new one under the
// same code. The checks run in a fixed order and the first violation wins.
func (s *service) Replace(ctx context.Context, businessUnitCode string, input ReplaceWarehouseInput) (*WarehouseDTO, error) {
	codeLease, err := s.locks.Acquire(ctx, s.locks.Key(lockScopeWarehouse, businessUnitCode))
	if err != nil {
		return nil, err
	}
	defer codeLease.Release(ctx)

	locationLease, err := s.locks.Acquire(ctx, s.locks.Key(lockScopeLocation, input.Location))
	if err != nil {
		return nil, err
	}
	defer locationLease.Release(ctx)

	existing, err := s.repo.FindByBusinessUnitCode(ctx, businessUnitCode)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find warehouse")
	}
	if existing == nil || existing.Archived() {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound,
			"Active warehouse with business unit code '%s' not found", businessUnitCode)
	}

	if _, err := s.validator.ValidateLocation(input.Location); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateWarehouseCreationFeasibility(ctx, input.Location); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateReplacementCapacity(input.Capacity, existing.Stock); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateStockMatching(input.Stock, existing.Stock); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateCapacityAndStock(input.Capacity, input.Stock, input.Location); err != nil {
		return nil, err
	}

	next := &models.Warehouse{
		BusinessUnitCode: businessUnitCode,
		Location:         input.Location,
		Capacity:         input.Capacity,
		Stock:            input.Stock,
	}
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		store := s.storeFor(tx)
		if err := ArchiveWarehouse(ctx, store, existing); err != nil {
			return err
		}
		return CreateWarehouse(ctx, store, next)
	})
	if err != nil {
		return nil, err
	}

	s.logInfo(ctx, "warehouse replaced", businessUnitCode)
	return toWarehouseDTO(next), nil
}

func (s *service) Archive(ctx context.Context, businessUnitCode string) error {
	lease, err := s.locks.Acquire(ctx, s.locks.Key(lockScopeWarehouse, businessUnitCode))
	if err != nil {
		return err
	}
	defer lease.Release(ctx)

	warehouse, err := s.repo.FindByBusinessUnitCode(ctx, businessUnitCode)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find warehouse")
	}
	if warehouse == nil || warehouse.Archived() {
		return pkgerrors.Newf(pkgerrors.CodeNotFound,
			"Warehouse with business unit code '%s' not found", businessUnitCode)
	}

	if err := ArchiveWarehouse(ctx, s.repo, warehouse); err != nil {
		return err
	}

	s.logInfo(ctx, "warehouse archived", businessUnitCode)
	return nil
}

func (s *service) logInfo(ctx context.Context, msg, businessUnitCode string) {
	if s.logg == nil {
		return
	}
	s.logg.Info(s.logg.WithWarehouseCode(ctx, businessUnitCode), msg)
}
