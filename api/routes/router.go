package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fulfilment-application/monolith/api/controllers"
	"github.com/fulfilment-application/monolith/api/middleware"
	"github.com/fulfilment-application/monolith/internal/fulfillment"
	"github.com/fulfilment-application/monolith/internal/products"
	"github.com/fulfilment-application/monolith/internal/stores"
	"github.com/fulfilment-application/monolith/internal/warehouses"
	"github.com/fulfilment-application/monolith/pkg/config"
	"github.com/fulfilment-application/monolith/pkg/db"
	"github.com/fulfilment-application/monolith/pkg/logger"
	"github.com/fulfilment-application/monolith/pkg/metrics"
	"github.com/fulfilment-application/monolith/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	cacheP redis.Pinger,
	registry *prometheus.Registry,
	httpMetrics *metrics.HTTPMetrics,
	warehouseService warehouses.Service,
	fulfillmentService fulfillment.Service,
	storeService stores.Service,
	productService products.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, cacheP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/warehouse", func(r chi.Router) {
		r.Get("/", controllers.WarehouseList(warehouseService, logg))
		r.Post("/", controllers.WarehouseCreate(warehouseService, logg))
		r.Route("/{businessUnitCode}", func(r chi.Router) {
			r.Get("/", controllers.WarehouseGet(warehouseService, logg))
			r.Put("/", controllers.WarehouseReplace(warehouseService, logg))
			r.Delete("/", controllers.WarehouseArchive(warehouseService, logg))
		})
	})

	r.Route("/fulfillment", func(r chi.Router) {
		r.Get("/", controllers.FulfillmentList(fulfillmentService, logg))
		r.Post("/", controllers.FulfillmentCreate(fulfillmentService, logg))
		r.Get("/store/{storeId}", controllers.FulfillmentListByStore(fulfillmentService, logg))
		r.Get("/product/{productId}", controllers.FulfillmentListByProduct(fulfillmentService, logg))
		r.Get("/warehouse/{businessUnitCode}", controllers.FulfillmentListByWarehouse(fulfillmentService, logg))
		r.Delete("/store/{storeId}/product/{productId}/warehouse/{businessUnitCode}", controllers.FulfillmentDelete(fulfillmentService, logg))
	})

	r.Route("/store", func(r chi.Router) {
		r.Get("/", controllers.StoreList(storeService, logg))
		r.Post("/", controllers.StoreCreate(storeService, logg))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", controllers.StoreGet(storeService, logg))
			r.Put("/", controllers.StoreUpdate(storeService, logg))
			r.Patch("/", controllers.StorePatch(storeService, logg))
			r.Delete("/", controllers.StoreDelete(storeService, logg))
		})
	})

	r.Route("/product", func(r chi.Router) {
		r.Get("/", controllers.ProductList(productService, logg))
		r.Post("/", controllers.ProductCreate(productService, logg))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", controllers.ProductGet(productService, logg))
			r.Put("/", controllers.ProductUpdate(productService, logg))
			r.Delete("/", controllers.ProductDelete(productService, logg))
		})
	})

	return r
}
