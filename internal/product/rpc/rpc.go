// Package rpc exposes the product service over gRPC and provides the client
// used by the order service and the gateway.
package rpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/rpcjson"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/product/app"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/product/domain"
)

const ServiceName = "product.v1.ProductService"

type CreateResponse struct {
	ID int64 `json:"id"`
}

type PurchaseRequest struct {
	Lines []domain.PurchaseLine `json:"lines"`
}

type PurchaseResponse struct {
	Products []domain.PurchaseResult `json:"products"`
}

type IDRequest struct {
	ID int64 `json:"id"`
}

type ListResponse struct {
	Products []domain.Product `json:"products"`
}

type server struct {
	svc *app.Service
}

func (s *server) create(ctx context.Context, req *domain.Product) (*CreateResponse, error) {
	id, err := s.svc.Create(ctx, *req)
	if err != nil {
		return nil, err
	}
	return &CreateResponse{ID: id}, nil
}

func (s *server) purchase(ctx context.Context, req *PurchaseRequest) (*PurchaseResponse, error) {
	res, err := s.svc.PurchaseProducts(ctx, req.Lines)
	if err != nil {
		return nil, err
	}
	return &PurchaseResponse{Products: res}, nil
}

func (s *server) findByID(ctx context.Context, req *IDRequest) (*domain.Product, error) {
	p, err := s.svc.FindByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *server) findAll(ctx context.Context, _ *rpcjson.Empty) (*ListResponse, error) {
	all, err := s.svc.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return &ListResponse{Products: all}, nil
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		rpcjson.Unary(ServiceName, "CreateProduct", (*server).create),
		rpcjson.Unary(ServiceName, "PurchaseProducts", (*server).purchase),
		rpcjson.Unary(ServiceName, "FindProductByID", (*server).findByID),
		rpcjson.Unary(ServiceName, "FindAllProducts", (*server).findAll),
	},
	Metadata: "product/v1/product",
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

func (c *Client) Create(ctx context.Context, p domain.Product) (int64, error) {
	resp, err := rpcjson.Invoke[CreateResponse](ctx, c.cc, rpcjson.FullMethod(ServiceName, "CreateProduct"), &p)
	if err != nil {
		return 0, err
	}
	return resp.ID, nil
}

func (c *Client) PurchaseProducts(ctx context.Context, lines []domain.PurchaseLine) ([]domain.PurchaseResult, error) {
	resp, err := rpcjson.Invoke[PurchaseResponse](ctx, c.cc, rpcjson.FullMethod(ServiceName, "PurchaseProducts"), &PurchaseRequest{Lines: lines})
	if err != nil {
		return nil, err
	}
	return resp.Products, nil
}

func (c *Client) FindByID(ctx context.Context, id int64) (domain.Product, error) {
	resp, err := rpcjson.Invoke[domain.Product](ctx, c.cc, rpcjson.FullMethod(ServiceName, "FindProductByID"), &IDRequest{ID: id})
	if err != nil {
		return domain.Product{}, err
	}
	return *resp, nil
}

func (c *Client) FindAll(ctx context.Context) ([]domain.Product, error) {
	resp, err := rpcjson.Invoke[ListResponse](ctx, c.cc, rpcjson.FullMethod(ServiceName, "FindAllProducts"), &rpcjson.Empty{})
	if err != nil {
		return nil, err
	}
	return resp.Products, nil
}
