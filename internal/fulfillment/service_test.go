package fulfillment

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/fulfilment-application/monolith/pkg/config"
	"github.com/fulfilment-application/monolith/pkg/db/models"
	pkgerrors "github.com/fulfilment-application/monolith/pkg/errors"
	"github.com/fulfilment-application/monolith/pkg/redis"
)

type stubAssociations struct {
	rows   []models.StoreProductWarehouse
	nextID int64
}

func (s *stubAssociations) ListAll(context.Context) ([]models.StoreProductWarehouse, error) {
	return s.rows, nil
}

func (s *stubAssociations) FindByStore(_ context.Context, storeID int64) ([]models.StoreProductWarehouse, error) {
	var out []models.StoreProductWarehouse
	for _, r := range s.rows {
		if r.StoreID == storeID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubAssociations) FindByProduct(_ context.Context, productID int64) ([]models.StoreProductWarehouse, error) {
	var out []models.StoreProductWarehouse
	for _, r := range s.rows {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubAssociations) FindByWarehouse(_ context.Context, code string) ([]models.StoreProductWarehouse, error) {
	var out []models.StoreProductWarehouse
	for _, r := range s.rows {
		if r.WarehouseBusinessUnitCode == code {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubAssociations) CountByStoreAndProduct(_ context.Context, storeID, productID int64) (int64, error) {
	var count int64
	for _, r := range s.rows {
		if r.StoreID == storeID && r.ProductID == productID {
			count++
		}
	}
	return count, nil
}

func (s *stubAssociations) CountDistinctWarehousesByStore(_ context.Context, storeID int64) (int64, error) {
	seen := map[string]bool{}
	for _, r := range s.rows {
		if r.StoreID == storeID {
			seen[r.WarehouseBusinessUnitCode] = true
		}
	}
	return int64(len(seen)), nil
}

func (s *stubAssociations) CountProductsByWarehouse(_ context.Context, code string) (int64, error) {
	seen := map[int64]bool{}
	for _, r := range s.rows {
		if r.WarehouseBusinessUnitCode == code {
			seen[r.ProductID] = true
		}
	}
	return int64(len(seen)), nil
}

func (s *stubAssociations) Exists(_ context.Context, storeID, productID int64, code string) (bool, error) {
	for _, r := range s.rows {
		if r.StoreID == storeID && r.ProductID == productID && r.WarehouseBusinessUnitCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubAssociations) Persist(_ context.Context, a *models.StoreProductWarehouse) error {
	s.nextID++
	a.ID = s.nextID
	a.CreatedAt = time.Now()
	s.rows = append(s.rows, *a)
	return nil
}

func (s *stubAssociations) DeleteByStoreAndProductAndWarehouse(_ context.Context, storeID, productID int64, code string) error {
	out := s.rows[:0]
	for _, r := range s.rows {
		if r.StoreID == storeID && r.ProductID == productID && r.WarehouseBusinessUnitCode == code {
			continue
		}
		out = append(out, r)
	}
	s.rows = out
	return nil
}

type stubWarehouses struct {
	active map[string]bool
}

func (s *stubWarehouses) FindActiveByBusinessUnitCode(_ context.Context, code string) (*models.Warehouse, error) {
	if s.active[code] {
		return &models.Warehouse{BusinessUnitCode: code}, nil
	}
	return nil, nil
}

type stubLocker struct{}

func (stubLocker) Key(scope string, parts ...string) string {
	return strings.Join(append([]string{"ffm", "mutation", scope}, parts...), ":")
}

func (stubLocker) Acquire(context.Context, string) (*redis.Lease, error) {
	return nil, nil
}

func newTestService(t *testing.T, repo *stubAssociations, warehouses *stubWarehouses) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repository: repo,
		Warehouses: warehouses,
		Locks:      stubLocker{},
	})
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc
}

func allActive(codes ...string) *stubWarehouses {
	active := map[string]bool{}
	for _, c := range codes {
		active[c] = true
	}
	return &stubWarehouses{active: active}
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

func mustCreate(t *testing.T, svc Service, storeID, productID int64, code string) {
	t.Helper()
	_, err := svc.Create(context.Background(), CreateAssociationInput{
		StoreID:                   storeID,
		ProductID:                 productID,
		WarehouseBusinessUnitCode: code,
	})
	if err != nil {
		t.Fatalf("create (%d,%d,%s): %v", storeID, productID, code, err)
	}
}

func TestCreateAssociation(t *testing.T) {
	repo := &stubAssociations{}
	svc := newTestService(t, repo, allActive("WH-001"))

	dto, err := svc.Create(context.Background(), CreateAssociationInput{
		StoreID:                   1,
		ProductID:                 10,
		WarehouseBusinessUnitCode: "WH-001",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dto.ID == 0 || dto.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp to be set: %+v", dto)
	}
}

func TestCreateAssociationRejectsArchivedWarehouse(t *testing.T) {
	svc := newTestService(t, &stubAssociations{}, allActive())

	_, err := svc.Create(context.Background(), CreateAssociationInput{
		StoreID:                   1,
		ProductID:                 10,
		WarehouseBusinessUnitCode: "WH-001",
	})
	expectValidation(t, err, "Warehouse with business unit code 'WH-001' does not exist or is archived")
}

func TestCreateAssociationRejectsDuplicate(t *testing.T) {
	repo := &stubAssociations{}
	svc := newTestService(t, repo, allActive("WH-001"))

	mustCreate(t, svc, 1, 10, "WH-001")
	_, err := svc.Create(context.Background(), CreateAssociationInput{
		StoreID:                   1,
		ProductID:                 10,
		WarehouseBusinessUnitCode: "WH-001",
	})
	expectValidation(t, err, "Association already exists for Store 1, Product 10, and Warehouse WH-001")
}

func TestWarehousesPerProductPerStoreCap(t *testing.T) {
	repo := &stubAssociations{}
	svc := newTestService(t, repo, allActive("WH-001", "WH-002", "WH-003"))

	mustCreate(t, svc, 1, 10, "WH-001")
	mustCreate(t, svc, 1, 10, "WH-002")

	_, err := svc.Create(context.Background(), CreateAssociationInput{
		StoreID:                   1,
		ProductID:                 10,
		WarehouseBusinessUnitCode: "WH-003",
	})
	expectValidation(t, err, "Product 10 in Store 1 already has the maximum of 2 warehouses")
}

func TestWarehousesPerStoreCap(t *testing.T) {
	repo := &stubAssociations{}
	svc := newTestService(t, repo, allActive("WH-001", "WH-002", "WH-003", "WH-004"))

	mustCreate(t, svc, 1, 10, "WH-001")
	mustCreate(t, svc, 1, 20, "WH-002")
	mustCreate(t, svc, 1, 30, "WH-003")

	// a fourth distinct warehouse is over the cap
	_, err := svc.Create(context.Background(), CreateAssociationInput{
		StoreID:                   1,
		ProductID:                 40,
		WarehouseBusinessUnitCode: "WH-004",
	})
	expectValidation(t, err, "Store 1 already has the maximum of 3 different warehouses")

	// reusing one of the existing three introduces no new warehouse
	mustCreate(t, svc, 1, 40, "WH-002")
}

func TestProductsPerWarehouseCap(t *testing.T) {
	repo := &stubAssociations{}
	svc := newTestService(t, repo, allActive("WH-001"))

	for i := int64(1); i <= 5; i++ {
		mustCreate(t, svc, i, i*10, "WH-001")
	}

	_, err := svc.Create(context.Background(), CreateAssociationInput{
		StoreID:                   6,
		ProductID:                 60,
		WarehouseBusinessUnitCode: "WH-001",
	})
	expectValidation(t, err, "Warehouse WH-001 already stores the maximum of 5 different products")

	// a product already stored in the warehouse is fine for another store
	mustCreate(t, svc, 6, 10, "WH-001")
}

// memLockStore backs MutationLocks with an in-process map, preserving the
// SETNX semantics of the real client.
type memLockStore struct {
	mu     sync.Mutex
	values map[string]string
}

func (m *memLockStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.values[key]; held {
		return false, nil
	}
	m.values[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memLockStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, held := m.values[key]
	if !held {
		return "", goredis.Nil
	}
	return value, nil
}

func (m *memLockStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

// racingAssociations is a goroutine-safe repo whose warehouse product count
// pauses after reading, widening the window between check and write.
type racingAssociations struct {
	mu         sync.Mutex
	stub       stubAssociations
	countDelay time.Duration
}

func (r *racingAssociations) ListAll(ctx context.Context) ([]models.StoreProductWarehouse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stub.ListAll(ctx)
}

func (r *racingAssociations) FindByStore(ctx context.Context, storeID int64) ([]models.StoreProductWarehouse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stub.FindByStore(ctx, storeID)
}

func (r *racingAssociations) FindByProduct(ctx context.Context, productID int64) ([]models.StoreProductWarehouse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stub.FindByProduct(ctx, productID)
}

func (r *racingAssociations) FindByWarehouse(ctx context.Context, code string) ([]models.StoreProductWarehouse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stub.FindByWarehouse(ctx, code)
}

func (r *racingAssociations) CountByStoreAndProduct(ctx context.Context, storeID, productID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stub.CountByStoreAndProduct(ctx, storeID, productID)
}

func (r *racingAssociations) CountDistinctWarehousesByStore(ctx context.Context, storeID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stub.CountDistinctWarehousesByStore(ctx, storeID)
}

func (r *racingAssociations) CountProductsByWarehouse(ctx context.Context, code string) (int64, error) {
	r.mu.Lock()
	count, err := r.stub.CountProductsByWarehouse(ctx, code)
	r.mu.Unlock()
	time.Sleep(r.countDelay)
	return count, err
}

func (r *racingAssociations) Exists(ctx context.Context, storeID, productID int64, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stub.Exists(ctx, storeID, productID, code)
}

func (r *racingAssociations) Persist(ctx context.Context, a *models.StoreProductWarehouse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stub.Persist(ctx, a)
}

func (r *racingAssociations) DeleteByStoreAndProductAndWarehouse(ctx context.Context, storeID, productID int64, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stub.DeleteByStoreAndProductAndWarehouse(ctx, storeID, productID, code)
}

// Two stores racing to place the fifth and sixth product in one warehouse.
// The warehouse lock must serialize them so only one create lands.
func TestConcurrentCreatesRespectProductsPerWarehouseCap(t *testing.T) {
	repo := &racingAssociations{countDelay: 50 * time.Millisecond}
	for i := int64(1); i <= 4; i++ {
		repo.stub.rows = append(repo.stub.rows, models.StoreProductWarehouse{
			ID:                        i,
			StoreID:                   i,
			ProductID:                 i * 10,
			WarehouseBusinessUnitCode: "WH-001",
		})
	}
	repo.stub.nextID = 4

	locks, err := redis.NewMutationLocks(&memLockStore{values: map[string]string{}}, config.LockConfig{
		TTL:           time.Second,
		RetryInterval: time.Millisecond,
		MaxWait:       2 * time.Second,
	})
	if err != nil {
		t.Fatalf("new locks: %v", err)
	}

	svc, err := NewService(ServiceParams{
		Repository: repo,
		Warehouses: allActive("WH-001"),
		Locks:      locks,
	})
	if err != nil {
		t.Fatalf("building service: %v", err)
	}

	start := make(chan struct{})
	results := make(chan error, 2)
	for _, storeID := range []int64{5, 6} {
		go func(storeID int64) {
			<-start
			_, err := svc.Create(context.Background(), CreateAssociationInput{
				StoreID:                   storeID,
				ProductID:                 storeID * 10,
				WarehouseBusinessUnitCode: "WH-001",
			})
			results <- err
		}(storeID)
	}
	close(start)

	var failures int
	for i := 0; i < 2; i++ {
		if err := <-results; err != nil {
			expectValidation(t, err, "Warehouse WH-001 already stores the maximum of 5 different products")
			failures++
		}
	}
	if failures != 1 {
		t.Fatalf("expected exactly one create to hit the cap, got %d failures", failures)
	}

	count, err := repo.CountProductsByWarehouse(context.Background(), "WH-001")
	if err != nil {
		t.Fatalf("counting products: %v", err)
	}
	if count != maxProductsPerWarehouse {
		t.Fatalf("warehouse WH-001 stores %d distinct products, want %d", count, maxProductsPerWarehouse)
	}
}

func TestDeleteAssociation(t *testing.T) {
	repo := &stubAssociations{}
	svc := newTestService(t, repo, allActive("WH-001", "WH-002"))

	mustCreate(t, svc, 1, 10, "WH-001")
	mustCreate(t, svc, 1, 10, "WH-002")

	if err := svc.Delete(context.Background(), 1, 10, "WH-001"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exists, _ := repo.Exists(context.Background(), 1, 10, "WH-001")
	if exists {
		t.Fatalf("expected association to be removed")
	}
	sibling, _ := repo.Exists(context.Background(), 1, 10, "WH-002")
	if !sibling {
		t.Fatalf("expected sibling association to survive")
	}
}

func TestDeleteMissingAssociation(t *testing.T) {
	svc := newTestService(t, &stubAssociations{}, allActive())

	err := svc.Delete(context.Background(), 1, 10, "WH-001")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if appErr.Message() != "Association not found" {
		t.Fatalf("unexpected message: %q", appErr.Message())
	}
}

func TestCreateThenDeleteRestoresState(t *testing.T) {
	repo := &stubAssociations{}
	svc := newTestService(t, repo, allActive("WH-001"))

	before, _ := repo.CountProductsByWarehouse(context.Background(), "WH-001")
	mustCreate(t, svc, 1, 10, "WH-001")
	if err := svc.Delete(context.Background(), 1, 10, "WH-001"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after, _ := repo.CountProductsByWarehouse(context.Background(), "WH-001")
	if before != after {
		t.Fatalf("expected counts restored, before=%d after=%d", before, after)
	}
}

func TestListFilters(t *testing.T) {
	repo := &stubAssociations{}
	svc := newTestService(t, repo, allActive("WH-001", "WH-002"))

	mustCreate(t, svc, 1, 10, "WH-001")
	mustCreate(t, svc, 2, 10, "WH-002")
	mustCreate(t, svc, 2, 20, "WH-002")

	all, err := svc.ListAll(context.Background())
	if err != nil || len(all) != 3 {
		t.Fatalf("expected 3 associations, got %d err=%v", len(all), err)
	}

	byStore, _ := svc.GetByStore(context.Background(), 2)
	if len(byStore) != 2 {
		t.Fatalf("expected 2 associations for store 2, got %d", len(byStore))
	}

	byProduct, _ := svc.GetByProduct(context.Background(), 10)
	if len(byProduct) != 2 {
		t.Fatalf("expected 2 associations for product 10, got %d", len(byProduct))
	}

	byWarehouse, _ := svc.GetByWarehouse(context.Background(), "WH-001")
	if len(byWarehouse) != 1 {
		t.Fatalf("expected 1 association for WH-001, got %d", len(byWarehouse))
	}
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	cases := []ServiceParams{
		{},
		{Repository: &stubAssociations{}},
		{Repository: &stubAssociations{}, Warehouses: allActive()},
	}
	for i, params := range cases {
		if _, err := NewService(params); err == nil {
			t.Fatalf("case %d: expected error for missing dependencies", i)
		}
	}
}
