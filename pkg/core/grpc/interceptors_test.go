package grpc

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/msto63/fx/pkg/core/config"
	"github.com/msto63/fx/pkg/core/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func testLogger(buf *bytes.Buffer) *logging.Logger {
	return logging.Wrap("grpc-test", logging.NewLogger(logging.LoggerConfig{
		ServiceName: "grpc-test",
		Output:      buf,
	}))
}

func TestRecoveryInterceptor(t *testing.T) {
	var buf bytes.Buffer
	interceptor := RecoveryInterceptor(testLogger(&buf))
	info := &grpc.UnaryServerInfo{FullMethod: "/fx.v1.Frontend/Compile"}

	_, err := interceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		panic("fold exploded")
	})

	if status.Code(err) != codes.Internal {
		t.Errorf("code = %v, want Internal", status.Code(err))
	}
	if !strings.Contains(buf.String(), "fold exploded") {
		t.Errorf("panic not logged: %s", buf.String())
	}
}

func TestRequestIDInterceptor(t *testing.T) {
	interceptor := RequestIDInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/fx.v1.Frontend/Compile"}

	var seen string
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		seen = GetRequestID(ctx)
		return nil, nil
	}

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDHeader, "req-42"))
	if _, err := interceptor(ctx, nil, info, handler); err != nil {
		t.Fatalf("interceptor error = %v", err)
	}
	if seen != "req-42" {
		t.Errorf("request id = %q, want req-42", seen)
	}

	if _, err := interceptor(context.Background(), nil, info, handler); err != nil {
		t.Fatalf("interceptor error = %v", err)
	}
	if len(seen) != 36 {
		t.Errorf("generated request id = %q, want a UUID", seen)
	}
}

func TestLoggingInterceptor(t *testing.T) {
	var buf bytes.Buffer
	interceptor := LoggingInterceptor(testLogger(&buf))
	info := &grpc.UnaryServerInfo{FullMethod: "/fx.v1.Frontend/Compile"}

	ctx := WithRequestID(context.Background(), "req-7")
	_, err := interceptor(ctx, nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, status.Error(codes.InvalidArgument, "bad source")
	})

	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("code = %v, want InvalidArgument", status.Code(err))
	}
	out := buf.String()
	for _, want := range []string{"req-7", "InvalidArgument", "/fx.v1.Frontend/Compile"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q: %s", want, out)
		}
	}
}

func TestLoggingInterceptor_Levels(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		level string
	}{
		{"ok", nil, "info"},
		{"diagnostic", status.Error(codes.InvalidArgument, "[parse] @a.fx:1:1, unexpected end of file!"), "info"},
		{"deadline", status.Error(codes.DeadlineExceeded, "too slow"), "warn"},
		{"internal", status.Error(codes.Internal, "corrupt cache entry"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			interceptor := LoggingInterceptor(testLogger(&buf))
			info := &grpc.UnaryServerInfo{FullMethod: "/fx.v1.Frontend/Compile"}

			req, _ := structpb.NewStruct(map[string]interface{}{"file": "a.fx", "source": "let a = 1"})
			_, _ = interceptor(context.Background(), req, info, func(ctx context.Context, req interface{}) (interface{}, error) {
				return nil, tt.err
			})

			var entry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("invalid log line %q: %v", buf.String(), err)
			}
			if entry["level"] != tt.level {
				t.Errorf("level = %v, want %v", entry["level"], tt.level)
			}
			if size, ok := entry["request_bytes"].(float64); !ok || size <= 0 {
				t.Errorf("request_bytes = %v, want the encoded request size", entry["request_bytes"])
			}
		})
	}
}

func TestClientInterceptor(t *testing.T) {
	var buf bytes.Buffer
	interceptor := ClientInterceptor(testLogger(&buf))

	var sent []string
	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		sent = md.Get(RequestIDHeader)
		return nil
	}

	ctx := WithRequestID(context.Background(), "req-9")
	if err := interceptor(ctx, "/fx.v1.Frontend/Status", nil, nil, nil, invoker); err != nil {
		t.Fatalf("interceptor error = %v", err)
	}
	if len(sent) != 1 || sent[0] != "req-9" {
		t.Errorf("sent request id = %v, want [req-9]", sent)
	}

	if err := interceptor(context.Background(), "/fx.v1.Frontend/Status", nil, nil, nil, invoker); err != nil {
		t.Fatalf("interceptor error = %v", err)
	}
	if len(sent) != 1 || len(sent[0]) != 36 {
		t.Errorf("sent request id = %v, want a generated UUID", sent)
	}
}

func TestServerConfigFrom(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Port = 7000
	cfg.Server.Reflection = true

	got := ServerConfigFrom(cfg.Server)
	if got.Port != 7000 || !got.EnableReflection {
		t.Errorf("ServerConfigFrom() = %+v", got)
	}
	if got.MaxRecvMsgSize != cfg.Server.MaxRecvMsgSize {
		t.Errorf("MaxRecvMsgSize = %d, want %d", got.MaxRecvMsgSize, cfg.Server.MaxRecvMsgSize)
	}
	if got.KeepaliveInterval != cfg.Server.Keepalive.Time.Duration {
		t.Errorf("KeepaliveInterval = %v", got.KeepaliveInterval)
	}
}

func TestClientConfigFrom(t *testing.T) {
	def := DefaultClientConfig("localhost:9470")
	if def.MaxSendMsgSize != DefaultServerConfig().MaxRecvMsgSize {
		t.Errorf("default MaxSendMsgSize = %d, want the server receive limit", def.MaxSendMsgSize)
	}

	cfg := config.Default()
	cfg.Server.MaxRecvMsgSize = 1024
	cfg.Server.Keepalive.Time = config.Duration{Duration: 5 * time.Second}

	got := ClientConfigFrom("fx.internal:7000", cfg.Server)
	if got.Target != "fx.internal:7000" {
		t.Errorf("Target = %q", got.Target)
	}
	if got.MaxSendMsgSize != 1024 {
		t.Errorf("MaxSendMsgSize = %d, want 1024", got.MaxSendMsgSize)
	}
	if got.MaxRecvMsgSize != def.MaxRecvMsgSize {
		t.Errorf("MaxRecvMsgSize = %d, want %d", got.MaxRecvMsgSize, def.MaxRecvMsgSize)
	}
	if got.Keepalive != 5*time.Second {
		t.Errorf("Keepalive = %v, want 5s", got.Keepalive)
	}
}
