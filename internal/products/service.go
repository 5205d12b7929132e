package products

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fulfilment-application/monolith/pkg/db/models"
	pkgerrors "github.com/fulfilment-application/monolith/pkg/errors"
	"github.com/fulfilment-application/monolith/pkg/logger"
)

const (
	productNotFoundFormat = "Product with id of %d does not exist."
	productNameNotSet     = "Product Name was not set on request."
)

type productRepository interface {
	List(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id int64) error
}

// ProductDTO is the read model exposed by the service.
type ProductDTO struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
}

// UpsertProductInput carries the writable product fields.
type UpsertProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
}

// Service exposes product operations.
type Service interface {
	List(ctx context.Context) ([]ProductDTO, error)
	Get(ctx context.Context, id int64) (*ProductDTO, error)
	Create(ctx context.Context, input UpsertProductInput) (*ProductDTO, error)
	Update(ctx context.Context, id int64, input UpsertProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo productRepository
	logg *logger.Logger
}

func NewService(repo productRepository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) List(ctx context.Context) ([]ProductDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toProductDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id int64) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find product")
	}
	if product == nil {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, productNotFoundFormat, id)
	}
	return toProductDTO(product), nil
}

func (s *service) Create(ctx context.Context, input UpsertProductInput) (*ProductDTO, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidArgument, productNameNotSet)
	}

	product := &models.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "product_id", product.ID), "product created")
	}
	return toProductDTO(product), nil
}

func (s *service) Update(ctx context.Context, id int64, input UpsertProductInput) (*ProductDTO, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidArgument, productNameNotSet)
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find product")
	}
	if product == nil {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, productNotFoundFormat, id)
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price
	product.Stock = input.Stock
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return toProductDTO(product), nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find product")
	}
	if product == nil {
		return pkgerrors.Newf(pkgerrors.CodeNotFound, productNotFoundFormat, id)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func toProductDTO(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
	}
}
