package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/api-gateway/infra/httpx/middlewares"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.AttachTracingMetadata)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/customers", func(r chi.Router) {
			r.Post("/", handler.CreateCustomer)
			r.Put("/", handler.UpdateCustomer)
			r.Get("/", handler.ListCustomers)
			r.Get("/exists/{id}", handler.CustomerExists)
			r.Get("/{id}", handler.GetCustomer)
			r.Delete("/{id}", handler.DeleteCustomer)
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", handler.CreateProduct)
			r.Post("/purchase", handler.PurchaseProducts)
			r.Get("/", handler.ListProducts)
			r.Get("/{id}", handler.GetProduct)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", handler.CreateOrder)
			r.Get("/", handler.ListOrders)
			r.Get("/{id}", handler.GetOrder)
		})

		r.Get("/order-lines/order/{id}", handler.GetOrderLines)
		r.Post("/payments", handler.CreatePayment)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/sagas/stuck", handler.ListStuckSagas)
			r.Get("/{service}/breakers", handler.ListBreakers)
			r.Post("/{service}/breakers/{name}/reset", handler.ResetBreaker)
		})
	})
	return r
}
