package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/uncoverhq/ops-backend/api/controllers"
	"github.com/uncoverhq/ops-backend/api/middleware"
	"github.com/uncoverhq/ops-backend/internal/activity"
	"github.com/uncoverhq/ops-backend/internal/inventory"
	"github.com/uncoverhq/ops-backend/internal/mappings"
	"github.com/uncoverhq/ops-backend/internal/orders"
	"github.com/uncoverhq/ops-backend/internal/requests"
	"github.com/uncoverhq/ops-backend/internal/shipments"
	"github.com/uncoverhq/ops-backend/internal/transfers"
	"github.com/uncoverhq/ops-backend/internal/warehouses"
	"github.com/uncoverhq/ops-backend/pkg/config"
	"github.com/uncoverhq/ops-backend/pkg/db"
	"github.com/uncoverhq/ops-backend/pkg/logger"
	"github.com/uncoverhq/ops-backend/pkg/redis"
)

// Services bundles the domain services the router exposes.
type Services struct {
	Inventory  inventory.Service
	Transfers  transfers.Service
	Orders     orders.Service
	Shipments  shipments.Service
	Warehouses warehouses.Service
	Mappings   mappings.Service
	Requests   requests.Service
	Activity   activity.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	promRegistry *prometheus.Registry,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	var redisP redis.Pinger
	if redisClient != nil {
		redisP = redisClient
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if promRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ActorID(logg))
		if redisClient != nil {
			r.Use(middleware.Idempotency(redisClient, logg))
		}

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(svcs.Inventory, logg))
			r.Post("/", controllers.CreateProduct(svcs.Inventory, logg))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", controllers.GetProduct(svcs.Inventory, logg))
				r.Patch("/", controllers.UpdateProduct(svcs.Inventory, logg))
				r.Delete("/", controllers.DeleteProduct(svcs.Inventory, logg))
				r.Post("/adjust-stock", controllers.AdjustStock(svcs.Inventory, logg))
				r.Put("/warehouse", controllers.SetProductWarehouse(svcs.Inventory, logg))
				r.Get("/mappings", controllers.ListProductMappings(svcs.Mappings, logg))
				r.Put("/mappings", controllers.UpsertProductMapping(svcs.Mappings, logg))
			})
		})

		r.Route("/transfers", func(r chi.Router) {
			r.Post("/", controllers.Transfer(svcs.Transfers, logg))
			r.Post("/bulk", controllers.BulkTransfer(svcs.Transfers, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(svcs.Orders, logg))
			r.Post("/", controllers.CreateOrder(svcs.Orders, logg))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", controllers.GetOrder(svcs.Orders, logg))
				r.Post("/transition", controllers.TransitionOrder(svcs.Orders, logg))
				r.Post("/sync", controllers.SyncOrder(svcs.Orders, logg))
				r.Post("/fulfill", controllers.FulfillOrder(svcs.Orders, logg))
				r.Post("/deliver", controllers.DeliverOrder(svcs.Orders, logg))
			})
		})

		r.Route("/shipments", func(r chi.Router) {
			r.Get("/", controllers.ListShipments(svcs.Shipments, logg))
			r.Post("/", controllers.CreateShipment(svcs.Shipments, logg))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", controllers.GetShipment(svcs.Shipments, logg))
				r.Post("/advance", controllers.AdvanceShipment(svcs.Shipments, logg))
				r.Post("/receive", controllers.ReceiveShipment(svcs.Shipments, logg))
			})
		})

		r.Route("/warehouses", func(r chi.Router) {
			r.Get("/", controllers.ListWarehouses(svcs.Warehouses, logg))
			r.Post("/", controllers.CreateWarehouse(svcs.Warehouses, logg))
			r.Get("/summary", controllers.WarehouseSummary(svcs.Warehouses, logg))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", controllers.GetWarehouse(svcs.Warehouses, logg))
				r.Patch("/", controllers.UpdateWarehouse(svcs.Warehouses, logg))
				r.Delete("/", controllers.DeleteWarehouse(svcs.Warehouses, logg))
			})
		})

		r.Route("/requests", func(r chi.Router) {
			r.Get("/", controllers.ListRequests(svcs.Requests, logg))
			r.Post("/", controllers.CreateRequest(svcs.Requests, logg))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", controllers.GetRequest(svcs.Requests, logg))
				r.Post("/approve", controllers.ApproveRequest(svcs.Requests, logg))
				r.Post("/reject", controllers.RejectRequest(svcs.Requests, logg))
				r.Post("/ready", controllers.ReadyRequest(svcs.Requests, logg))
				r.Post("/collect", controllers.CollectRequest(svcs.Requests, logg))
			})
		})

		r.Get("/activity", controllers.ListActivity(svcs.Activity, logg))
	})

	return r
}
