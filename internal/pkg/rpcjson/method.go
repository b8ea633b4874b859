package rpcjson

import (
	"context"

	"google.golang.org/grpc"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/apperr"
)

// Empty is used for methods without arguments or results.
type Empty struct{}

func FullMethod(service, method string) string {
	return "/" + service + "/" + method
}

// Unary builds a MethodDesc that decodes Req, hands it to call with the
// registered implementation S and returns Resp. Server interceptors run
// around call exactly as they do for generated code.
func Unary[S any, Req any, Resp any](service, method string, call func(srv S, ctx context.Context, req *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(service, method),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(S), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// Invoke performs a unary call using the JSON codec. Status errors are
// translated back into *apperr.Error values.
func Invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, fullMethod string, req any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append(opts, grpc.CallContentSubtype(Name))
	if err := cc.Invoke(ctx, fullMethod, req, out, opts...); err != nil {
		return nil, apperr.FromStatus(err)
	}
	return out, nil
}
