// Package rpc exposes the customer service over gRPC.
package rpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/customer/app"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/customer/domain"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/rpcjson"
)

const ServiceName = "customer.v1.CustomerService"

type IDRequest struct {
	ID string `json:"id"`
}

type IDResponse struct {
	ID string `json:"id"`
}

type ExistsResponse struct {
	Exists bool `json:"exists"`
}

type ListResponse struct {
	Customers []domain.Customer `json:"customers"`
}

type server struct {
	svc *app.Service
}

func (s *server) create(ctx context.Context, req *domain.Customer) (*IDResponse, error) {
	id, err := s.svc.Create(ctx, *req)
	if err != nil {
		return nil, err
	}
	return &IDResponse{ID: id}, nil
}

func (s *server) update(ctx context.Context, req *domain.UpdateRequest) (*rpcjson.Empty, error) {
	if err := s.svc.Update(ctx, *req); err != nil {
		return nil, err
	}
	return &rpcjson.Empty{}, nil
}

func (s *server) findAll(ctx context.Context, _ *rpcjson.Empty) (*ListResponse, error) {
	all, err := s.svc.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return &ListResponse{Customers: all}, nil
}

func (s *server) exists(ctx context.Context, req *IDRequest) (*ExistsResponse, error) {
	ok, err := s.svc.Exists(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &ExistsResponse{Exists: ok}, nil
}

func (s *server) findByID(ctx context.Context, req *IDRequest) (*domain.Customer, error) {
	c, err := s.svc.FindByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *server) delete(ctx context.Context, req *IDRequest) (*rpcjson.Empty, error) {
	if err := s.svc.Delete(ctx, req.ID); err != nil {
		return nil, err
	}
	return &rpcjson.Empty{}, nil
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		rpcjson.Unary(ServiceName, "CreateCustomer", (*server).create),
		rpcjson.Unary(ServiceName, "UpdateCustomer", (*server).update),
		rpcjson.Unary(ServiceName, "FindAllCustomers", (*server).findAll),
		rpcjson.Unary(ServiceName, "ExistsCustomer", (*server).exists),
		rpcjson.Unary(ServiceName, "FindCustomerByID", (*server).findByID),
		rpcjson.Unary(ServiceName, "DeleteCustomer", (*server).delete),
	},
	Metadata: "customer/v1/customer",
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

func (c *Client) Create(ctx context.Context, customer domain.Customer) (string, error) {
	resp, err := rpcjson.Invoke[IDResponse](ctx, c.cc, c.method("CreateCustomer"), &customer)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (c *Client) Update(ctx context.Context, req domain.UpdateRequest) error {
	_, err := rpcjson.Invoke[rpcjson.Empty](ctx, c.cc, c.method("UpdateCustomer"), &req)
	return err
}

func (c *Client) FindAll(ctx context.Context) ([]domain.Customer, error) {
	resp, err := rpcjson.Invoke[ListResponse](ctx, c.cc, c.method("FindAllCustomers"), &rpcjson.Empty{})
	if err != nil {
		return nil, err
	}
	return resp.Customers, nil
}

func (c *Client) Exists(ctx context.Context, id string) (bool, error) {
	resp, err := rpcjson.Invoke[ExistsResponse](ctx, c.cc, c.method("ExistsCustomer"), &IDRequest{ID: id})
	if err != nil {
		return false, err
	}
	return resp.Exists, nil
}

func (c *Client) FindByID(ctx context.Context, id string) (domain.Customer, error) {
	resp, err := rpcjson.Invoke[domain.Customer](ctx, c.cc, c.method("FindCustomerByID"), &IDRequest{ID: id})
	if err != nil {
		return domain.Customer{}, err
	}
	return *resp, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := rpcjson.Invoke[rpcjson.Empty](ctx, c.cc, c.method("DeleteCustomer"), &IDRequest{ID: id})
	return err
}
