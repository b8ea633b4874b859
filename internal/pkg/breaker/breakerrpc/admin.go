// Package breakerrpc exposes a service's breaker registry over gRPC so the
// gateway can list breaker states and reset one on operator request.
package breakerrpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/apperr"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/breaker"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/rpcjson"
)

const ServiceName = "breaker.v1.Admin"

type ListResponse struct {
	Breakers []breaker.CircuitBreakerState `json:"breakers"`
}

type ResetRequest struct {
	Name string `json:"name"`
}

type server struct {
	registry *breaker.Registry
}

func (s *server) list(_ context.Context, _ *rpcjson.Empty) (*ListResponse, error) {
	return &ListResponse{Breakers: s.registry.Snapshot()}, nil
}

func (s *server) reset(_ context.Context, req *ResetRequest) (*rpcjson.Empty, error) {
	if req.Name == "" {
		return nil, apperr.Validation("breaker name is required")
	}
	if err := s.registry.Reset(req.Name); err != nil {
		return nil, err
	}
	return &rpcjson.Empty{}, nil
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		rpcjson.Unary(ServiceName, "ListBreakers", (*server).list),
		rpcjson.Unary(ServiceName, "ResetBreaker", (*server).reset),
	},
	Metadata: "breaker/v1/admin",
}

func Register(s grpc.ServiceRegistrar, registry *breaker.Registry) {
	s.RegisterService(&serviceDesc, &server{registry: registry})
}

type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) List(ctx context.Context) ([]breaker.CircuitBreakerState, error) {
	resp, err := rpcjson.Invoke[ListResponse](ctx, c.cc, rpcjson.FullMethod(ServiceName, "ListBreakers"), &rpcjson.Empty{})
	if err != nil {
		return nil, err
	}
	return resp.Breakers, nil
}

func (c *Client) Reset(ctx context.Context, name string) error {
	_, err := rpcjson.Invoke[rpcjson.Empty](ctx, c.cc, rpcjson.FullMethod(ServiceName, "ResetBreaker"), &ResetRequest{Name: name})
	return err
}
