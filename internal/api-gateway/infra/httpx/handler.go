package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/api-gateway/core/ports"
	customerdomain "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/customer/domain"
	orderdomain "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/order/domain"
	paymentdomain "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/payment/domain"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/apperr"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/interceptors"
	productdomain "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/product/domain"
)

// Handler translates HTTP requests into calls on the backend services.
type Handler struct {
	customers ports.CustomerService
	products  ports.ProductService
	orders    ports.OrderService
	payments  ports.PaymentService
	admins    map[string]ports.BreakerAdmin
	log       *slog.Logger
}

// NewHandler wires the service clients. admins is keyed by the service name
// used in the admin routes, e.g. "order".
func NewHandler(
	customers ports.CustomerService,
	products ports.ProductService,
	orders ports.OrderService,
	payments ports.PaymentService,
	admins map[string]ports.BreakerAdmin,
	log *slog.Logger,
) *Handler {
	return &Handler{
		customers: customers,
		products:  products,
		orders:    orders,
		payments:  payments,
		admins:    admins,
		log:       log,
	}
}

// --- customers ---

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerdomain.Customer
	if !h.decode(w, r, &req) {
		return
	}
	id, err := h.customers.Create(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, IDResponse[string]{ID: id})
}

func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerdomain.UpdateRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.customers.Update(r.Context(), req); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	all, err := h.customers.FindAll(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

func (h *Handler) CustomerExists(w http.ResponseWriter, r *http.Request) {
	ok, err := h.customers.Exists(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ExistsResponse{Exists: ok})
}

func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.customers.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.customers.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// --- products ---

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productdomain.Product
	if !h.decode(w, r, &req) {
		return
	}
	id, err := h.products.Create(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, IDResponse[int64]{ID: id})
}

func (h *Handler) PurchaseProducts(w http.ResponseWriter, r *http.Request) {
	var lines []productdomain.PurchaseLine
	if !h.decode(w, r, &lines) {
		return
	}
	res, err := h.products.PurchaseProducts(r.Context(), lines)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	p, err := h.products.FindByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	all, err := h.products.FindAll(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// --- orders ---

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req orderdomain.Request
	if !h.decode(w, r, &req) {
		return
	}

	h.log.InfoContext(r.Context(), "creating order",
		"request_id", interceptors.RequestID(r.Context()),
		"customer_id", req.CustomerID,
		"idempotent", interceptors.IdempotencyKey(r.Context()) != "",
	)

	res, err := h.orders.CreateOrder(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	all, err := h.orders.FindAll(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	o, err := h.orders.FindByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) GetOrderLines(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	lines, err := h.orders.FindLines(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

// --- payments ---

func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentdomain.Request
	if !h.decode(w, r, &req) {
		return
	}
	receipt, err := h.payments.Create(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

// --- admin ---

func (h *Handler) ListBreakers(w http.ResponseWriter, r *http.Request) {
	admin, ok := h.admin(w, r)
	if !ok {
		return
	}
	states, err := admin.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, states)
}

func (h *Handler) ResetBreaker(w http.ResponseWriter, r *http.Request) {
	admin, ok := h.admin(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	if err := admin.Reset(r.Context(), name); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.log.WarnContext(r.Context(), "circuit breaker reset by admin",
		"service", chi.URLParam(r, "service"), "breaker", name)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListStuckSagas(w http.ResponseWriter, r *http.Request) {
	sagas, err := h.orders.FindStuckSagas(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sagas)
}

func (h *Handler) admin(w http.ResponseWriter, r *http.Request) (ports.BreakerAdmin, bool) {
	service := chi.URLParam(r, "service")
	admin, ok := h.admins[service]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown_service", "no breaker admin for service "+service)
	}
	return admin, ok
}

// --- helpers ---

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "id must be an integer, got "+strconv.Quote(raw))
		return 0, false
	}
	return id, true
}

// statusFor maps a failure kind to its HTTP status.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindBusinessRule, apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	msg := err.Error()
	var ae *apperr.Error
	if errors.As(err, &ae) {
		msg = ae.Message
	}
	if kind == apperr.KindInternal {
		h.log.ErrorContext(r.Context(), "request failed",
			"path", r.URL.Path, "request_id", interceptors.RequestID(r.Context()), "error", err)
		msg = "internal error"
	}
	writeError(w, statusFor(kind), string(kind), msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
