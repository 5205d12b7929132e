package controllers

import (
	"net/http"

	"github.com/fulfilment-application/monolith/api/responses"
	"github.com/fulfilment-application/monolith/api/validators"
	"github.com/fulfilment-application/monolith/internal/warehouses"
	pkgerrors "github.com/fulfilment-application/monolith/pkg/errors"
	"github.com/fulfilment-application/monolith/pkg/logger"
)

type createWarehouseRequest struct {
	BusinessUnitCode string `json:"businessUnitCode" validate:"required,max=50"`
	Location         string `json:"location" validate:"required"`
	Capacity         int    `json:"capacity" validate:"required,gt=0"`
	Stock            int    `json:"stock" validate:"gte=0"`
}

type replaceWarehouseRequest struct {
	Location string `json:"location" validate:"required"`
	Capacity int    `json:"capacity" validate:"required,gt=0"`
	Stock    int    `json:"stock" validate:"gte=0"`
}

// WarehouseList returns every active warehouse.
func WarehouseList(svc warehouses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "warehouse service unavailable"))
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

// WarehouseGet returns the active warehouse under the business unit code.
func WarehouseGet(svc warehouses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "warehouse service unavailable"))
			return
		}
		code, err := validators.ParseBusinessUnitCode(r, "businessUnitCode")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		warehouse, err := svc.Get(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, warehouse)
	}
}

// WarehouseCreate opens a new business unit code.
func WarehouseCreate(svc warehouses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "warehouse service unavailable"))
			return
		}
		var req createWarehouseRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		warehouse, err := svc.Create(r.Context(), warehouses.CreateWarehouseInput{
			BusinessUnitCode: req.BusinessUnitCode,
			Location:         req.Location,
			Capacity:         req.Capacity,
			Stock:            req.Stock,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, warehouse)
	}
}

// WarehouseReplace supersedes the current active version under the code.
func WarehouseReplace(svc warehouses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "warehouse service unavailable"))
			return
		}
		code, err := validators.ParseBusinessUnitCode(r, "businessUnitCode")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req replaceWarehouseRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		warehouse, err := svc.Replace(r.Context(), code, warehouses.ReplaceWarehouseInput{
			Location: req.Location,
			Capacity: req.Capacity,
			Stock:    req.Stock,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, warehouse)
	}
}

// WarehouseArchive retires the active version under the code.
func WarehouseArchive(svc warehouses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "warehouse service unavailable"))
			return
		}
		code, err := validators.ParseBusinessUnitCode(r, "businessUnitCode")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Archive(r.Context(), code); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
