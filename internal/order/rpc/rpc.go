// Package rpc exposes the order service over gRPC.
package rpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/coordinator/sagalog"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/order/app"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/order/domain"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/rpcjson"
)

const ServiceName = "order.v1.OrderService"

type IDRequest struct {
	ID int64 `json:"id"`
}

type ListResponse struct {
	Orders []domain.Order `json:"orders"`
}

type LinesResponse struct {
	Lines []domain.OrderLine `json:"lines"`
}

type StuckSagasResponse struct {
	Sagas []sagalog.SagaLog `json:"sagas"`
}

type server struct {
	svc *app.Service
}

func (s *server) create(ctx context.Context, req *domain.Request) (*domain.CreateResult, error) {
	res, err := s.svc.CreateOrder(ctx, *req)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *server) findAll(ctx context.Context, _ *rpcjson.Empty) (*ListResponse, error) {
	all, err := s.svc.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return &ListResponse{Orders: all}, nil
}

func (s *server) findByID(ctx context.Context, req *IDRequest) (*domain.Order, error) {
	o, err := s.svc.FindByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *server) findLines(ctx context.Context, req *IDRequest) (*LinesResponse, error) {
	lines, err := s.svc.FindLines(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &LinesResponse{Lines: lines}, nil
}

func (s *server) findStuck(ctx context.Context, _ *rpcjson.Empty) (*StuckSagasResponse, error) {
	sagas, err := s.svc.FindStuckSagas(ctx)
	if err != nil {
		return nil, err
	}
	return &StuckSagasResponse{Sagas: sagas}, nil
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		rpcjson.Unary(ServiceName, "CreateOrder", (*server).create),
		rpcjson.Unary(ServiceName, "FindAllOrders", (*server).findAll),
		rpcjson.Unary(ServiceName, "FindOrderByID", (*server).findByID),
		rpcjson.Unary(ServiceName, "FindOrderLines", (*server).findLines),
		rpcjson.Unary(ServiceName, "FindStuckSagas", (*server).findStuck),
	},
	Metadata: "order/v1/order",
}

func Register(s grpc.ServiceRegistrar, svc *app.Service) {
	s.RegisterService(&serviceDesc, &server{svc: svc})
}

type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) method(name string) string {
	return rpcjson.FullMethod(ServiceName, name)
}

func (c *Client) CreateOrder(ctx context.Context, req domain.Request) (domain.CreateResult, error) {
	resp, err := rpcjson.Invoke[domain.CreateResult](ctx, c.cc, c.method("CreateOrder"), &req)
	if err != nil {
		return domain.CreateResult{}, err
	}
	return *resp, nil
}

func (c *Client) FindAll(ctx context.Context) ([]domain.Order, error) {
	resp, err := rpcjson.Invoke[ListResponse](ctx, c.cc, c.method("FindAllOrders"), &rpcjson.Empty{})
	if err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

func (c *Client) FindByID(ctx context.Context, id int64) (domain.Order, error) {
	resp, err := rpcjson.Invoke[domain.Order](ctx, c.cc, c.method("FindOrderByID"), &IDRequest{ID: id})
	if err != nil {
		return domain.Order{}, err
	}
	return *resp, nil
}

func (c *Client) FindLines(ctx context.Context, orderID int64) ([]domain.OrderLine, error) {
	resp, err := rpcjson.Invoke[LinesResponse](ctx, c.cc, c.method("FindOrderLines"), &IDRequest{ID: orderID})
	if err != nil {
		return nil, err
	}
	return resp.Lines, nil
}

func (c *Client) FindStuckSagas(ctx context.Context) ([]sagalog.SagaLog, error) {
	resp, err := rpcjson.Invoke[StuckSagasResponse](ctx, c.cc, c.method("FindStuckSagas"), &rpcjson.Empty{})
	if err != nil {
		return nil, err
	}
	return resp.Sagas, nil
}
