package controllers

import (
	"net/http"

	"github.com/fulfilment-application/monolith/api/responses"
	"github.com/fulfilment-application/monolith/api/validators"
	"github.com/fulfilment-application/monolith/internal/stores"
	pkgerrors "github.com/fulfilment-application/monolith/pkg/errors"
	"github.com/fulfilment-application/monolith/pkg/logger"
)

type storeRequest struct {
	Name                    string `json:"name" validate:"required,max=40"`
	QuantityProductsInStock int    `json:"quantityProductsInStock" validate:"gte=0"`
}

// StoreList returns every store sorted by name.
func StoreList(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// StoreGet returns one store by id.
func StoreGet(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		store, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store)
	}
}

// StoreCreate opens a new store and queues a legacy sync event.
func StoreCreate(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}
		var req storeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		store, err := svc.Create(r.Context(), stores.CreateStoreInput{
			Name:                    req.Name,
			QuantityProductsInStock: req.QuantityProductsInStock,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, store)
	}
}

// StoreUpdate replaces the store's mutable fields.
func StoreUpdate(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return storeMutation(svc, logg, func(r *http.Request, id int64, req storeRequest) (*stores.StoreDTO, error) {
		return svc.Update(r.Context(), id, stores.UpdateStoreInput{
			Name:                    req.Name,
			QuantityProductsInStock: req.QuantityProductsInStock,
		})
	})
}

// StorePatch applies a partial update.
func StorePatch(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return storeMutation(svc, logg, func(r *http.Request, id int64, req storeRequest) (*stores.StoreDTO, error) {
		return svc.Patch(r.Context(), id, stores.UpdateStoreInput{
			Name:                    req.Name,
			QuantityProductsInStock: req.QuantityProductsInStock,
		})
	})
}

func storeMutation(svc stores.Service, logg *logger.Logger, apply func(*http.Request, int64, storeRequest) (*stores.StoreDTO, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req storeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		store, err := apply(r, id, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store)
	}
}

// StoreDelete removes the store and queues a legacy sync event.
func StoreDelete(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
