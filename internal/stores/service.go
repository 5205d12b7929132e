package stores

import (
	"context"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/fulfilment-application/monolith/pkg/db/models"
	"github.com/fulfilment-application/monolith/pkg/enums"
	pkgerrors "github.com/fulfilment-application/monolith/pkg/errors"
	"github.com/fulfilment-application/monolith/pkg/logger"
	"github.com/fulfilment-application/monolith/pkg/outbox"
)

const (
	storeNotFoundFormat = "Store with id of %d does not exist."
	storeNameNotSet     = "Store Name was not set on request."
)

const legacySyncEventVersion = 1

type storeRepository interface {
	List(ctx context.Context) ([]models.Store, error)
	FindByID(ctx context.Context, id int64) (*models.Store, error)
	Create(ctx context.Context, store *models.Store) error
	Update(ctx context.Context, store *models.Store) error
	Delete(ctx context.Context, id int64) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// repoFactory binds the store repository to a transaction.
type repoFactory func(tx *gorm.DB) storeRepository

// Service exposes store operations. Every mutation queues a legacy sync event
// in the same transaction as the state change.
type Service interface {
	List(ctx context.Context) ([]StoreDTO, error)
	Get(ctx context.Context, id int64) (*StoreDTO, error)
	Create(ctx context.Context, input CreateStoreInput) (*StoreDTO, error)
	Update(ctx context.Context, id int64, input UpdateStoreInput) (*StoreDTO, error)
	Patch(ctx context.Context, id int64, input UpdateStoreInput) (*StoreDTO, error)
	Delete(ctx context.Context, id int64) error
}

// ServiceParams collects the dependencies of the store service.
type ServiceParams struct {
	Repository storeRepository
	DB         txRunner
	Outbox     outboxEmitter
	Logger     *logger.Logger
	// RepoFor overrides how tx-bound repositories are built; nil uses the
	// default GORM repository.
	RepoFor repoFactory
}

type service struct {
	repo    storeRepository
	db      txRunner
	outbox  outboxEmitter
	logg    *logger.Logger
	repoFor repoFactory
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("database runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	repoFor := params.RepoFor
	if repoFor == nil {
		repoFor = func(tx *gorm.DB) storeRepository { return NewRepository(tx) }
	}
	return &service{
		repo:    params.Repository,
		db:      params.DB,
		outbox:  params.Outbox,
		logg:    params.Logger,
		repoFor: repoFor,
	}, nil
}

func (s *service) List(ctx context.Context) ([]StoreDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores")
	}
	out := make([]StoreDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toStoreDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id int64) (*StoreDTO, error) {
	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find store")
	}
	if store == nil {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, storeNotFoundFormat, id)
	}
	return toStoreDTO(store), nil
}

func (s *service) Create(ctx context.Context, input CreateStoreInput) (*StoreDTO, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidArgument, storeNameNotSet)
	}

	store := &models.Store{
		Name:                    input.Name,
		QuantityProductsInStock: input.QuantityProductsInStock,
	}
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repoFor(tx).Create(ctx, store); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create store")
		}
		return s.emitLegacySync(ctx, tx, enums.EventStoreCreated, store)
	})
	if err != nil {
		return nil, err
	}

	s.logInfo(ctx, "store created", store.ID)
	return toStoreDTO(store), nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateStoreInput) (*StoreDTO, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidArgument, storeNameNotSet)
	}

	var updated *models.Store
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repoFor(tx)
		store, err := repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find store")
		}
		if store == nil {
			return pkgerrors.Newf(pkgerrors.CodeNotFound, storeNotFoundFormat, id)
		}

		store.Name = input.Name
		store.QuantityProductsInStock = input.QuantityProductsInStock
		if err := repo.Update(ctx, store); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update store")
		}
		updated = store
		return s.emitLegacySync(ctx, tx, enums.EventStoreUpdated, store)
	})
	if err != nil {
		return nil, err
	}

	s.logInfo(ctx, "store updated", id)
	return toStoreDTO(updated), nil
}

// Patch applies a partial update: the name always wins, the stock quantity
// only replaces a non-zero value.
func (s *service) Patch(ctx context.Context, id int64, input UpdateStoreInput) (*StoreDTO, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidArgument, storeNameNotSet)
	}

	var updated *models.Store
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repoFor(tx)
		store, err := repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find store")
		}
		if store == nil {
			return pkgerrors.Newf(pkgerrors.CodeNotFound, storeNotFoundFormat, id)
		}

		store.Name = input.Name
		if store.QuantityProductsInStock != 0 {
			store.QuantityProductsInStock = input.QuantityProductsInStock
		}
		if err := repo.Update(ctx, store); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update store")
		}
		updated = store
		return s.emitLegacySync(ctx, tx, enums.EventStoreUpdated, store)
	})
	if err != nil {
		return nil, err
	}

	s.logInfo(ctx, "store patched", id)
	return toStoreDTO(updated), nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repoFor(tx)
		store, err := repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find store")
		}
		if store == nil {
			return pkgerrors.Newf(pkgerrors.CodeNotFound, storeNotFoundFormat, id)
		}
		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete store")
		}
		return s.emitLegacySync(ctx, tx, enums.EventStoreDeleted, store)
	})
	if err != nil {
		return err
	}

	s.logInfo(ctx, "store deleted", id)
	return nil
}

func (s *service) emitLegacySync(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, store *models.Store) error {
	err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateStore,
		AggregateID:   strconv.FormatInt(store.ID, 10),
		Data:          toStorePayload(store),
		Version:       legacySyncEventVersion,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue legacy sync event")
	}
	return nil
}

func (s *service) logInfo(ctx context.Context, msg string, storeID int64) {
	if s.logg == nil {
		return
	}
	s.logg.Info(s.logg.WithStoreID(ctx, storeID), msg)
}
