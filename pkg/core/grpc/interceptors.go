package grpc

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/msto63/fx/pkg/core/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
)

type requestIDKey struct{}

// RequestIDHeader carries the request ID in both directions
const RequestIDHeader = "x-request-id"

// RecoveryInterceptor turns a handler panic into codes.Internal.
// The panic and stack are logged, never sent to the client.
func RecoveryInterceptor(logger *logging.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Handler panicked",
					"request_id", GetRequestID(ctx),
					"method", info.FullMethod,
					"panic", r,
					"stack", string(debug.Stack()),
				)
				resp, err = nil, status.Error(codes.Internal, "internal server error")
			}
		}()
		return handler(ctx, req)
	}
}

// RequestIDInterceptor takes the request ID from incoming metadata or
// creates one, stores it in the context and echoes it as a header
func RequestIDInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		id := incomingRequestID(ctx)
		if id == "" {
			id = uuid.NewString()
		}
		ctx = WithRequestID(ctx, id)
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, id))
		return handler(ctx, req)
	}
}

// LoggingInterceptor logs one line per call. Rejected input and
// cancellation log at info; server faults log at error.
func LoggingInterceptor(logger *logging.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)

		keyvals := []interface{}{
			"request_id", GetRequestID(ctx),
			"method", info.FullMethod,
			"status", code.String(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if m, ok := req.(proto.Message); ok {
			keyvals = append(keyvals, "request_bytes", proto.Size(m))
		}

		switch code {
		case codes.OK, codes.InvalidArgument, codes.Canceled:
			logger.Info("Request served", keyvals...)
		case codes.DeadlineExceeded, codes.ResourceExhausted, codes.Unavailable:
			logger.Warn("Request failed", append(keyvals, "error", err.Error())...)
		default:
			logger.Error("Request failed", append(keyvals, "error", err.Error())...)
		}
		return resp, err
	}
}

// ClientInterceptor forwards the context's request ID (or a new one) and
// logs each outgoing call at debug
func ClientInterceptor(logger *logging.Logger) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		id := GetRequestID(ctx)
		if id == "" {
			id = uuid.NewString()
		}
		ctx = metadata.AppendToOutgoingContext(ctx, RequestIDHeader, id)

		start := time.Now()
		err := invoker(ctx, method, req, reply, cc, opts...)
		logger.Debug("Call finished",
			"request_id", id,
			"method", method,
			"status", status.Code(err).String(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return err
	}
}

// GetRequestID returns the request ID stored by RequestIDInterceptor or
// WithRequestID, falling back to incoming metadata
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return incomingRequestID(ctx)
}

// WithRequestID stores a request ID in the context
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func incomingRequestID(ctx context.Context) string {
	if values := metadata.ValueFromIncomingContext(ctx, RequestIDHeader); len(values) > 0 {
		return values[0]
	}
	return ""
}
