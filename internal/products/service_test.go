package products

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fulfilment-application/monolith/pkg/db/models"
	pkgerrors "github.com/fulfilment-application/monolith/pkg/errors"
)

type stubRepo struct {
	products []models.Product
	nextID   int64
}

func (s *stubRepo) List(context.Context) ([]models.Product, error) {
	return s.products, nil
}

func (s *stubRepo) FindByID(_ context.Context, id int64) (*models.Product, error) {
	for i := range s.products {
		if s.products[i].ID == id {
			p := s.products[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) Create(_ context.Context, p *models.Product) error {
	s.nextID++
	p.ID = s.nextID
	s.products = append(s.products, *p)
	return nil
}

func (s *stubRepo) Update(_ context.Context, p *models.Product) error {
	for i := range s.products {
		if s.products[i].ID == p.ID {
			s.products[i] = *p
		}
	}
	return nil
}

func (s *stubRepo) Delete(_ context.Context, id int64) error {
	out := s.products[:0]
	for _, p := range s.products {
		if p.ID != id {
			out = append(out, p)
		}
	}
	s.products = out
	return nil
}

func newTestService(t *testing.T) (Service, *stubRepo) {
	t.Helper()
	repo := &stubRepo{}
	svc, err := NewService(repo, nil)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc, repo
}

func TestProductCreate(t *testing.T) {
	svc, _ := newTestService(t)

	dto, err := svc.Create(context.Background(), UpsertProductInput{
		Name:  "BESTÅ",
		Price: decimal.NewFromFloat(149.99),
		Stock: 12,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dto.ID == 0 || !dto.Price.Equal(decimal.NewFromFloat(149.99)) {
		t.Fatalf("unexpected dto: %+v", dto)
	}
}

func TestProductCreateRequiresName(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), UpsertProductInput{})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeInvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	if appErr.Message() != "Product Name was not set on request." {
		t.Fatalf("unexpected message: %q", appErr.Message())
	}
}

func TestProductGetNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background(), 7)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if appErr.Message() != "Product with id of 7 does not exist." {
		t.Fatalf("unexpected message: %q", appErr.Message())
	}
}

func TestProductUpdate(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(context.Background(), UpsertProductInput{
		Name:  "BESTÅ",
		Price: decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dto, err := svc.Update(context.Background(), created.ID, UpsertProductInput{
		Name:        "BESTÅ Pro",
		Description: "storage combination",
		Price:       decimal.NewFromInt(120),
		Stock:       3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dto.Name != "BESTÅ Pro" || dto.Stock != 3 {
		t.Fatalf("unexpected dto: %+v", dto)
	}
}

func TestProductDelete(t *testing.T) {
	svc, repo := newTestService(t)

	created, err := svc.Create(context.Background(), UpsertProductInput{Name: "BESTÅ"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.products) != 0 {
		t.Fatalf("expected product removed")
	}

	err = svc.Delete(context.Background(), created.ID)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
