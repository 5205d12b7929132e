package warehouses

import (
	"context"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/fulfilment-application/monolith/internal/locations"
	"github.com/fulfilment-application/monolith/pkg/db/models"
	pkgerrors "github.com/fulfilment-application/monolith/pkg/errors"
	"github.com/fulfilment-application/monolith/pkg/redis"
)

type stubStore struct {
	warehouses []models.Warehouse
	created    []*models.Warehouse
	updated    []*models.Warehouse
}

func (s *stubStore) GetAll(context.Context) ([]models.Warehouse, error) {
	var out []models.Warehouse
	for _, w := range s.warehouses {
		if w.ArchivedAt == nil {
			out = append(out, w)
		}
	}
	return out, nil
}

func (s *stubStore) Create(_ context.Context, w *models.Warehouse) error {
	s.created = append(s.created, w)
	s.warehouses = append(s.warehouses, *w)
	return nil
}

func (s *stubStore) Update(_ context.Context, w *models.Warehouse) error {
	s.updated = append(s.updated, w)
	for i := range s.warehouses {
		if s.warehouses[i].BusinessUnitCode == w.BusinessUnitCode {
			s.warehouses[i] = *w
		}
	}
	return nil
}

func (s *stubStore) FindByBusinessUnitCode(_ context.Context, code string) (*models.Warehouse, error) {
	for i := range s.warehouses {
		if s.warehouses[i].BusinessUnitCode == code {
			w := s.warehouses[i]
			return &w, nil
		}
	}
	return nil, nil
}

func (s *stubStore) FindActiveByBusinessUnitCode(_ context.Context, code string) (*models.Warehouse, error) {
	for i := range s.warehouses {
		if s.warehouses[i].BusinessUnitCode == code && s.warehouses[i].ArchivedAt == nil {
			w := s.warehouses[i]
			return &w, nil
		}
	}
	return nil, nil
}

func (s *stubStore) ExistsByBusinessUnitCode(_ context.Context, code string) (bool, error) {
	w, _ := s.FindActiveByBusinessUnitCode(context.Background(), code)
	return w != nil, nil
}

func (s *stubStore) CountByLocation(_ context.Context, location string) (int, error) {
	count := 0
	for _, w := range s.warehouses {
		if w.Location == location && w.ArchivedAt == nil {
			count++
		}
	}
	return count, nil
}

type stubLocker struct {
	acquired []string
	err      error
}

func (s *stubLocker) Key(scope string, parts ...string) string {
	return strings.Join(append([]string{"ffm", "mutation", scope}, parts...), ":")
}

func (s *stubLocker) Acquire(_ context.Context, key string) (*redis.Lease, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.acquired = append(s.acquired, key)
	return nil, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, store *stubStore) (Service, *stubLocker) {
	t.Helper()
	validator, err := NewValidator(store, locations.NewGateway())
	if err != nil {
		t.Fatalf("building validator: %v", err)
	}
	locker := &stubLocker{}
	svc, err := NewService(ServiceParams{
		Repository: store,
		Validator:  validator,
		DB:         stubTxRunner{},
		Locks:      locker,
		StoreFor:   func(*gorm.DB) warehouseStore { return store },
	})
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc, locker
}

func activeWarehouse(code, location string, capacity, stock int) models.Warehouse {
	return models.Warehouse{
		BusinessUnitCode: code,
		Location:         location,
		Capacity:         capacity,
		Stock:            stock,
		CreatedAt:        time.Now(),
	}
}

func TestServiceCreateHappyPath(t *testing.T) {
	store := &stubStore{}
	svc, locker := newTestService(t, store)

	dto, err := svc.Create(context.Background(), CreateWarehouseInput{
		BusinessUnitCode: "MWH.001",
		Location:         "ZWOLLE-001",
		Capacity:         40,
		Stock:            10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dto.BusinessUnitCode != "MWH.001" || dto.Capacity != 40 {
		t.Fatalf("unexpected dto: %+v", dto)
	}
	if len(store.created) != 1 {
		t.Fatalf("expected one create, got %d", len(store.created))
	}
	if len(locker.acquired) != 2 {
		t.Fatalf("expected warehouse and location locks, got %v", locker.acquired)
	}
}

func TestServiceCreateRejectsDuplicateCode(t *testing.T) {
	store := &stubStore{warehouses: []models.Warehouse{
		activeWarehouse("MWH.001", "AMSTERDAM-001", 50, 10),
	}}
	svc, _ := newTestService(t, store)

	_, err := svc.Create(context.Background(), CreateWarehouseInput{
		BusinessUnitCode: "MWH.001",
		Location:         "ZWOLLE-001",
		Capacity:         40,
		Stock:            10,
	})
	expectValidation(t, err, "already exists")
}

func TestServiceCreateRejectsFullLocation(t *testing.T) {
	store := &stubStore{warehouses: []models.Warehouse{
		activeWarehouse("MWH.001", "ZWOLLE-001", 40, 10),
	}}
	svc, _ := newTestService(t, store)

	_, err := svc.Create(context.Background(), CreateWarehouseInput{
		BusinessUnitCode: "MWH.002",
		Location:         "ZWOLLE-001",
		Capacity:         40,
		Stock:            10,
	})
	expectValidation(t, err, "Maximum number of warehouses (1) already reached")
}

func TestServiceCreateAllowsReusingArchivedCode(t *testing.T) {
	archived := time.Now()
	old := activeWarehouse("MWH.001", "ZWOLLE-001", 40, 10)
	old.ArchivedAt = &archived
	store := &stubStore{warehouses: []models.Warehouse{old}}
	svc, _ := newTestService(t, store)

	_, err := svc.Create(context.Background(), CreateWarehouseInput{
		BusinessUnitCode: "MWH.001",
		Location:         "ZWOLLE-001",
		Capacity:         40,
		Stock:            10,
	})
	if err != nil {
		t.Fatalf("archived code should be reusable: %v", err)
	}
}

func TestServiceGet(t *testing.T) {
	store := &stubStore{warehouses: []models.Warehouse{
		activeWarehouse("MWH.001", "ZWOLLE-001", 40, 10),
	}}
	svc, _ := newTestService(t, store)

	dto, err := svc.Get(context.Background(), "MWH.001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dto.Location != "ZWOLLE-001" {
		t.Fatalf("unexpected dto: %+v", dto)
	}

	_, err = svc.Get(context.Background(), "MWH.404")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceArchive(t *testing.T) {
	store := &stubStore{warehouses: []models.Warehouse{
		activeWarehouse("MWH.001", "ZWOLLE-001", 40, 10),
	}}
	svc, _ := newTestService(t, store)

	if err := svc.Archive(context.Background(), "MWH.001"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.updated) != 1 {
		t.Fatalf("expected one update, got %d", len(store.updated))
	}
	if store.updated[0].ArchivedAt == nil {
		t.Fatalf("expected archive timestamp to be set")
	}

	// archiving again reports not found
	err := svc.Archive(context.Background(), "MWH.001")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found on second archive, got %v", err)
	}
}

func TestServiceReplaceHappyPath(t *testing.T) {
	store := &stubStore{warehouses: []models.Warehouse{
		activeWarehouse("MWH.001", "AMSTERDAM-001", 50, 10),
	}}
	svc, _ := newTestService(t, store)

	dto, err := svc.Replace(context.Background(), "MWH.001", ReplaceWarehouseInput{
		Location: "AMSTERDAM-002",
		Capacity: 30,
		Stock:    10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dto.Location != "AMSTERDAM-002" || dto.Stock != 10 {
		t.Fatalf("unexpected dto: %+v", dto)
	}

	// old version archived, new version active under the same code
	active, _ := store.FindActiveByBusinessUnitCode(context.Background(), "MWH.001")
	if active == nil || active.Location != "AMSTERDAM-002" {
		t.Fatalf("expected new active version, got %+v", active)
	}
	if len(store.updated) != 1 || store.updated[0].ArchivedAt == nil {
		t.Fatalf("expected old version to be archived")
	}
}

func TestServiceReplaceNotFound(t *testing.T) {
	svc, _ := newTestService(t, &stubStore{})

	_, err := svc.Replace(context.Background(), "MWH.404", ReplaceWarehouseInput{
		Location: "ZWOLLE-001",
		Capacity: 40,
		Stock:    0,
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if !strings.Contains(appErr.Message(), "Active warehouse with business unit code 'MWH.404' not found") {
		t.Fatalf("unexpected message: %q", appErr.Message())
	}
}

func TestServiceReplaceCapacityCannotHoldStock(t *testing.T) {
	store := &stubStore{warehouses: []models.Warehouse{
		activeWarehouse("MWH.001", "AMSTERDAM-001", 50, 30),
	}}
	svc, _ := newTestService(t, store)

	_, err := svc.Replace(context.Background(), "MWH.001", ReplaceWarehouseInput{
		Location: "AMSTERDAM-002",
		Capacity: 20,
		Stock:    30,
	})
	expectValidation(t, err, "New warehouse capacity (20) cannot accommodate existing stock (30)")
}

func TestServiceReplaceStockMustMatch(t *testing.T) {
	store := &stubStore{warehouses: []models.Warehouse{
		activeWarehouse("MWH.001", "AMSTERDAM-001", 50, 30),
	}}
	svc, _ := newTestService(t, store)

	_, err := svc.Replace(context.Background(), "MWH.001", ReplaceWarehouseInput{
		Location: "AMSTERDAM-002",
		Capacity: 40,
		Stock:    25,
	})
	expectValidation(t, err, "New warehouse stock (25) must match existing warehouse stock (30)")
}

func TestServiceReplaceChecksNewLocationBounds(t *testing.T) {
	store := &stubStore{warehouses: []models.Warehouse{
		activeWarehouse("MWH.001", "AMSTERDAM-001", 90, 20),
	}}
	svc, _ := newTestService(t, store)

	// ZWOLLE-002 caps capacity at 50
	_, err := svc.Replace(context.Background(), "MWH.001", ReplaceWarehouseInput{
		Location: "ZWOLLE-002",
		Capacity: 60,
		Stock:    20,
	})
	expectValidation(t, err, "Warehouse capacity (60) exceeds maximum capacity for location (50)")
}

func TestServiceMutationsFailWhenLockHeld(t *testing.T) {
	store := &stubStore{warehouses: []models.Warehouse{
		activeWarehouse("MWH.001", "ZWOLLE-001", 40, 10),
	}}
	validator, err := NewValidator(store, locations.NewGateway())
	if err != nil {
		t.Fatalf("building validator: %v", err)
	}
	locker := &stubLocker{err: pkgerrors.New(pkgerrors.CodeConflict, "concurrent modification in progress for ffm:mutation:warehouse:MWH.001")}
	svc, err := NewService(ServiceParams{
		Repository: store,
		Validator:  validator,
		DB:         stubTxRunner{},
		Locks:      locker,
	})
	if err != nil {
		t.Fatalf("building service: %v", err)
	}

	archiveErr := svc.Archive(context.Background(), "MWH.001")
	appErr := pkgerrors.As(archiveErr)
	if appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", archiveErr)
	}
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatalf("expected error for missing dependencies")
	}
}
