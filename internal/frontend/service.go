package frontend

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "fx.v1.Frontend"

// Full method names
const (
	CompileMethod = "/" + ServiceName + "/Compile"
	TokensMethod  = "/" + ServiceName + "/Tokens"
	StatusMethod  = "/" + ServiceName + "/Status"
)

// FrontendServer is the server API for fx.v1.Frontend.
// Requests and replies are structpb.Struct payloads.
type FrontendServer interface {
	// Compile takes {file, source} and returns {run_id, cached, functions, order, tree}
	Compile(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Tokens takes {file, source} and returns {tokens, count}
	Tokens(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Status takes {} and returns the health report and cache statistics
	Status(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterFrontendServer registers srv on s
func RegisterFrontendServer(s grpc.ServiceRegistrar, srv FrontendServer) {
	s.RegisterService(&frontendServiceDesc, srv)
}

type unaryCall func(FrontendServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryCall) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(FrontendServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(FrontendServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var frontendServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FrontendServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Compile", Handler: unaryHandler(CompileMethod, FrontendServer.Compile)},
		{MethodName: "Tokens", Handler: unaryHandler(TokensMethod, FrontendServer.Tokens)},
		{MethodName: "Status", Handler: unaryHandler(StatusMethod, FrontendServer.Status)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fx/v1/frontend.proto",
}
