// Package rpc exposes the payment service over gRPC.
package rpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/payment/app"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/payment/domain"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/rpcjson"
)

const ServiceName = "payment.v1.PaymentService"

type IDRequest struct {
	ID int64 `json:"id"`
}

type server struct {
	svc *app.Service
}

func (s *server) create(ctx context.Context, req *domain.Request) (*domain.Receipt, error) {
	r, err := s.svc.Create(ctx, *req)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *server) findByID(ctx context.Context, req *IDRequest) (*domain.Payment, error) {
	p, err := s.svc.FindByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		rpcjson.Unary(ServiceName, "CreatePayment", (*server).create),
		rpcjson.Unary(ServiceName, "FindPaymentByID", (*server).findByID),
	},
	Metadata: "payment/v1/payment",
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

func (c *Client) Create(ctx context.Context, req domain.Request) (domain.Receipt, error) {
	resp, err := rpcjson.Invoke[domain.Receipt](ctx, c.cc, rpcjson.FullMethod(ServiceName, "CreatePayment"), &req)
	if err != nil {
		return domain.Receipt{}, err
	}
	return *resp, nil
}

func (c *Client) FindByID(ctx context.Context, id int64) (domain.Payment, error) {
	resp, err := rpcjson.Invoke[domain.Payment](ctx, c.cc, rpcjson.FullMethod(ServiceName, "FindPaymentByID"), &IDRequest{ID: id})
	if err != nil {
		return domain.Payment{}, err
	}
	return *resp, nil
}
