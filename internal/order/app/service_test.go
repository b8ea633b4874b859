package app_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/coordinator"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/coordinator/sagalog"
	customerapp "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/customer/app"
	customerdomain "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/customer/domain"
	customerrepo "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/customer/repository"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/order/app"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/order/clients"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/order/domain"
	orderrepo "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/order/repository"
	paymentapp "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/payment/app"
	paymentdomain "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/payment/domain"
	paymentrepo "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/payment/repository"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/apperr"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/breaker"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/cache"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/interceptors/constants"
	productapp "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/product/app"
	productdomain "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/product/domain"
	productrepo "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/product/repository"
)

type notifier struct {
	err  error
	sent int
}

func (n *notifier) Notify(context.Context, paymentdomain.Notification) error {
	if n.err != nil {
		return n.err
	}
	n.sent++
	return nil
}

type publisher struct {
	mu   sync.Mutex
	err  error
	sent []domain.Confirmation
}

func (p *publisher) PublishConfirmation(_ context.Context, c domain.Confirmation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, c)
	return nil
}

// countingProducts records how often the product service was reached.
type countingProducts struct {
	svc   *productapp.Service
	calls int
}

func (c *countingProducts) PurchaseProducts(ctx context.Context, lines []productdomain.PurchaseLine) ([]productdomain.PurchaseResult, error) {
	c.calls++
	return c.svc.PurchaseProducts(ctx, lines)
}

// gatedCustomers can hold customer lookups until the test releases them.
type gatedCustomers struct {
	svc     *customerapp.Service
	entered chan struct{}
	release chan struct{}
}

func (g *gatedCustomers) FindByID(ctx context.Context, id string) (customerdomain.Customer, error) {
	if g.entered != nil {
		g.entered <- struct{}{}
		<-g.release
	}
	return g.svc.FindByID(ctx, id)
}

type harness struct {
	svc       *app.Service
	customers *gatedCustomers
	breakers  *breaker.Registry
	orders    *orderrepo.Memory
	products  *productrepo.Memory
	payments  *paymentrepo.Memory
	sagas     *sagalog.MemoryRepository
	notifier  *notifier
	publisher *publisher
	remote    *countingProducts
}

func newHarness(t *testing.T, policy coordinator.PublishPolicy) *harness {
	t.Helper()
	ctx := context.Background()
	log := slog.Default()

	customers := customerrepo.NewMemory()
	require.NoError(t, customers.Save(ctx, customerdomain.Customer{
		ID: "C1", FirstName: "Jane", LastName: "Doe", Email: "jane@example.com",
	}))

	products := productrepo.NewMemory(productdomain.Category{ID: 1, Name: "Keyboards"})
	_, err := products.Create(ctx, productdomain.Product{
		Name: "P1", Description: "mechanical keyboard", AvailableQuantity: 5,
		Price: decimal.RequireFromString("20"), CategoryID: 1,
	})
	require.NoError(t, err)

	payments := paymentrepo.NewMemory()
	n := &notifier{}

	customerSvc := customerapp.NewService(customers, breaker.NewRegistry(breaker.DefaultConfig()), log)
	productSvc := productapp.NewService(products, breaker.NewRegistry(breaker.DefaultConfig()), log)
	paymentSvc := paymentapp.NewService(payments, n, cache.NewMemoryCache("payment-service"),
		breaker.NewRegistry(breaker.DefaultConfig()), log)

	h := &harness{
		breakers:  breaker.NewRegistry(breaker.DefaultConfig()),
		orders:    orderrepo.NewMemory(),
		products:  products,
		payments:  payments,
		sagas:     sagalog.NewMemoryRepository(),
		notifier:  n,
		publisher: &publisher{},
		remote:    &countingProducts{svc: productSvc},
		customers: &gatedCustomers{svc: customerSvc},
	}
	h.svc = app.NewService(coordinator.Dependencies{
		Customers:     clients.NewCustomer(h.customers, h.breakers, log),
		Products:      clients.NewProduct(h.remote, h.breakers, log),
		Orders:        h.orders,
		Payments:      clients.NewPayment(paymentSvc, h.breakers, log),
		Publisher:     h.publisher,
		PublishPolicy: policy,
		Logger:        log,
	}, h.sagas, cache.NewMemoryCache("order-service"), h.breakers)
	return h
}

func (h *harness) trip(t *testing.T, operation string) {
	t.Helper()
	cb := h.breakers.Get(operation)
	for i := 0; i < 10; i++ {
		_, _ = breaker.Call(context.Background(), cb,
			func(context.Context) (struct{}, error) { return struct{}{}, errors.New("connection refused") }, nil)
	}
	require.Equal(t, breaker.StateOpen, cb.State())
}

func (h *harness) stock(t *testing.T) float64 {
	t.Helper()
	p, err := h.products.FindByID(context.Background(), 1)
	require.NoError(t, err)
	return p.AvailableQuantity
}

func orderRequest(qty float64) domain.Request {
	return domain.Request{
		Reference:     "ORD-1",
		Amount:        decimal.RequireFromString("40"),
		PaymentMethod: paymentdomain.MethodPaypal,
		CustomerID:    "C1",
		Products:      []productdomain.PurchaseLine{{ProductID: 1, Quantity: qty}},
	}
}

func TestCreateOrderHappyPath(t *testing.T) {
	h := newHarness(t, coordinator.PublishFail)
	ctx := context.Background()

	res, err := h.svc.CreateOrder(ctx, orderRequest(2))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCompleted, res.Outcome)
	assert.Empty(t, res.MissingSteps)
	assert.Equal(t, "ORD-1", res.Reference)
	assert.NotEmpty(t, res.SagaID)

	assert.Equal(t, 3.0, h.stock(t))
	assert.Equal(t, 1, h.orders.Count())
	assert.Equal(t, 1, h.payments.Count())
	assert.Equal(t, 1, h.notifier.sent)

	lines, err := h.svc.FindLines(ctx, res.OrderID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 2.0, lines[0].Quantity)

	require.Len(t, h.publisher.sent, 1)
	sent := h.publisher.sent[0]
	assert.Equal(t, "ORD-1", sent.OrderReference)
	assert.Equal(t, "jane@example.com", sent.Customer.Email)
	require.Len(t, sent.Products, 1)
	assert.Equal(t, 2.0, sent.Products[0].Quantity)

	latest, err := h.sagas.GetLatest(ctx, res.SagaID)
	require.NoError(t, err)
	assert.Equal(t, sagalog.StatusCompleted, latest.Status)
	assert.Equal(t, coordinator.StepPublishConfirmation, latest.FurthestStep)
	assert.Equal(t, res.OrderID, latest.OrderID)
}

func TestOutOfStockCreatesNoOrder(t *testing.T) {
	h := newHarness(t, coordinator.PublishFail)

	_, err := h.svc.CreateOrder(context.Background(), orderRequest(9))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindBusinessRule))
	assert.Equal(t, 5.0, h.stock(t))
	assert.Zero(t, h.orders.Count())
	assert.Zero(t, h.payments.Count())
	assert.Empty(t, h.publisher.sent)
}

func TestUnknownCustomerCreatesNoOrder(t *testing.T) {
	h := newHarness(t, coordinator.PublishFail)
	req := orderRequest(1)
	req.CustomerID = "C404"

	_, err := h.svc.CreateOrder(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindBusinessRule))
	assert.Zero(t, h.orders.Count())
	assert.Zero(t, h.remote.calls)
}

func TestOpenCustomerBreakerSkipsProductCall(t *testing.T) {
	h := newHarness(t, coordinator.PublishFail)
	h.trip(t, clients.OpFindCustomer)

	_, err := h.svc.CreateOrder(context.Background(), orderRequest(1))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
	assert.Zero(t, h.remote.calls)
	assert.Zero(t, h.orders.Count())
	assert.Equal(t, 5.0, h.stock(t))
}

func TestOpenPaymentBreakerLeavesUnpaidOrder(t *testing.T) {
	h := newHarness(t, coordinator.PublishFail)
	h.trip(t, clients.OpRequestPayment)
	ctx := context.Background()

	_, err := h.svc.CreateOrder(ctx, orderRequest(2))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))

	assert.Equal(t, 1, h.orders.Count())
	assert.Zero(t, h.payments.Count())
	assert.Equal(t, 3.0, h.stock(t))

	stuck, err := h.svc.FindStuckSagas(ctx)
	require.NoError(t, err)
	require.Len(t, stuck, 1)
	assert.Equal(t, sagalog.StatusFailed, stuck[0].Status)
	assert.Equal(t, coordinator.StepRequestPayment, stuck[0].CurrentStep)
	assert.Equal(t, coordinator.StepPersistOrderLines, stuck[0].FurthestStep)
	assert.NotZero(t, stuck[0].OrderID)
}

func TestSagaInsidePaymentStepIsNotStuckUntilIdle(t *testing.T) {
	h := newHarness(t, coordinator.PublishFail)
	ctx := context.Background()

	inFlight := sagalog.NewEntry(ctx, "in-flight", sagalog.StatusStepDone,
		coordinator.StepPersistOrderLines, coordinator.StepPersistOrderLines)
	require.NoError(t, h.sagas.Save(ctx, inFlight))

	idle := sagalog.NewEntry(ctx, "idle", sagalog.StatusStepDone,
		coordinator.StepPersistOrderLines, coordinator.StepPersistOrderLines)
	idle.UpdatedAt = time.Now().Add(-app.DefaultStuckAfter - time.Minute)
	require.NoError(t, h.sagas.Save(ctx, idle))

	stuck, err := h.svc.FindStuckSagas(ctx)
	require.NoError(t, err)
	require.Len(t, stuck, 1)
	assert.Equal(t, "idle", stuck[0].SagaID)
}

func TestDegradedPaymentCompletesDegraded(t *testing.T) {
	h := newHarness(t, coordinator.PublishFail)
	h.notifier.err = errors.New("kafka: broker not available")

	res, err := h.svc.CreateOrder(context.Background(), orderRequest(1))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCompletedDegraded, res.Outcome)
	assert.Equal(t, []string{paymentdomain.StepNotification}, res.MissingSteps)
	assert.Equal(t, 1, h.payments.Count())
	assert.Len(t, h.publisher.sent, 1)
}

func TestPublishFailurePolicyFail(t *testing.T) {
	h := newHarness(t, coordinator.PublishFail)
	h.publisher.err = errors.New("kafka: leader not available")

	_, err := h.svc.CreateOrder(context.Background(), orderRequest(1))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
	assert.Equal(t, 1, h.orders.Count())
	assert.Equal(t, 1, h.payments.Count())

	stuck, err := h.sagas.ListStuck(context.Background(), time.Now(), coordinator.StepRequestPayment)
	require.NoError(t, err)
	require.Len(t, stuck, 1)
	assert.Equal(t, coordinator.StepPublishConfirmation, stuck[0].CurrentStep)
}

func TestPublishFailurePolicyDegrade(t *testing.T) {
	h := newHarness(t, coordinator.PublishDegrade)
	h.publisher.err = errors.New("kafka: leader not available")

	res, err := h.svc.CreateOrder(context.Background(), orderRequest(1))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCompletedDegraded, res.Outcome)
	assert.Equal(t, []string{coordinator.StepPublishConfirmation}, res.MissingSteps)
}

func TestIdempotencyKeyReplaysResult(t *testing.T) {
	h := newHarness(t, coordinator.PublishFail)
	ctx := context.WithValue(context.Background(), constants.ContextKeyIdempotencyKey, "key-1")

	first, err := h.svc.CreateOrder(ctx, orderRequest(2))
	require.NoError(t, err)
	second, err := h.svc.CreateOrder(ctx, orderRequest(2))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, h.orders.Count())
	assert.Equal(t, 3.0, h.stock(t))
}

func TestConcurrentRequestsWithSameIdempotencyKeyRunOneSaga(t *testing.T) {
	h := newHarness(t, coordinator.PublishFail)
	h.customers.entered = make(chan struct{}, 1)
	h.customers.release = make(chan struct{})
	ctx := context.WithValue(context.Background(), constants.ContextKeyIdempotencyKey, "key-2")
	req := orderRequest(2)
	req.Reference = ""

	type outcome struct {
		res domain.CreateResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := h.svc.CreateOrder(ctx, req)
		done <- outcome{res, err}
	}()
	<-h.customers.entered

	_, err := h.svc.CreateOrder(ctx, req)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindBusinessRule))

	close(h.customers.release)
	first := <-done
	require.NoError(t, first.err)

	replay, err := h.svc.CreateOrder(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.res, replay)
	assert.Equal(t, 1, h.orders.Count())
	assert.Equal(t, 1, h.payments.Count())
	assert.Equal(t, 3.0, h.stock(t))
}

func TestFailedSagaReleasesIdempotencyKey(t *testing.T) {
	h := newHarness(t, coordinator.PublishFail)
	ctx := context.WithValue(context.Background(), constants.ContextKeyIdempotencyKey, "key-3")

	_, err := h.svc.CreateOrder(ctx, orderRequest(9))
	require.True(t, apperr.Is(err, apperr.KindBusinessRule))

	res, err := h.svc.CreateOrder(ctx, orderRequest(2))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCompleted, res.Outcome)
	assert.Equal(t, 3.0, h.stock(t))
}

func TestInvalidRequestIsRejectedBeforeRemoteCalls(t *testing.T) {
	h := newHarness(t, coordinator.PublishFail)
	req := orderRequest(1)
	req.Products = nil
	req.PaymentMethod = "CASH"

	_, err := h.svc.CreateOrder(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Zero(t, h.remote.calls)
	assert.Empty(t, h.breakers.Snapshot())
}

func TestMissingReferenceIsGenerated(t *testing.T) {
	h := newHarness(t, coordinator.PublishFail)
	req := orderRequest(1)
	req.Reference = ""

	res, err := h.svc.CreateOrder(context.Background(), req)
	require.NoError(t, err)
	assert.Regexp(t, `^ORD-[0-9a-f-]{36}$`, res.Reference)
}

func TestFindOrders(t *testing.T) {
	h := newHarness(t, coordinator.PublishFail)
	ctx := context.Background()

	res, err := h.svc.CreateOrder(ctx, orderRequest(1))
	require.NoError(t, err)

	o, err := h.svc.FindByID(ctx, res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "C1", o.CustomerID)
	assert.True(t, o.TotalAmount.Equal(decimal.NewFromInt(40)))

	_, err = h.svc.FindByID(ctx, 999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	all, err := h.svc.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	lines, err := h.svc.FindLines(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, lines)
}
