package grpc

import (
	"fmt"
	"time"

	"github.com/msto63/fx/pkg/core/config"
	"github.com/msto63/fx/pkg/core/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
)

// ClientConfig holds gRPC client settings
type ClientConfig struct {
	Target string
	// MaxRecvMsgSize bounds replies; serialized trees can be large
	MaxRecvMsgSize int
	// MaxSendMsgSize should not exceed the server's receive limit
	MaxSendMsgSize int
	Keepalive      time.Duration
	// KeepaliveTimeout is how long a ping may go unanswered
	KeepaliveTimeout time.Duration
}

// DefaultClientConfig mirrors DefaultServerConfig's limits
func DefaultClientConfig(target string) ClientConfig {
	server := DefaultServerConfig()
	return ClientConfig{
		Target:           target,
		MaxRecvMsgSize:   server.MaxSendMsgSize,
		MaxSendMsgSize:   server.MaxRecvMsgSize,
		Keepalive:        server.KeepaliveInterval,
		KeepaliveTimeout: server.KeepaliveTimeout,
	}
}

// ClientConfigFrom derives client limits from the [server] section of the
// server being dialed
func ClientConfigFrom(target string, cfg config.ServerConfig) ClientConfig {
	server := ServerConfigFrom(cfg)
	out := DefaultClientConfig(target)
	out.MaxSendMsgSize = server.MaxRecvMsgSize
	out.Keepalive = server.KeepaliveInterval
	out.KeepaliveTimeout = server.KeepaliveTimeout
	return out
}

// Dial returns a lazy client connection; the first call connects.
// Extra options are applied last and may override the defaults.
func Dial(cfg ClientConfig, logger *logging.Logger, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	if logger == nil {
		logger = logging.New("grpc-client")
	}

	conn, err := grpc.NewClient(cfg.Target, append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(cfg.MaxRecvMsgSize),
			grpc.MaxCallSendMsgSize(cfg.MaxSendMsgSize),
		),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                cfg.Keepalive,
			Timeout:             cfg.KeepaliveTimeout,
			PermitWithoutStream: true,
		}),
		grpc.WithUnaryInterceptor(ClientInterceptor(logger)),
	}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.Target, err)
	}
	return conn, nil
}
