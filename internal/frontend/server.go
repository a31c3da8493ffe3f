package frontend

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	fxerror "github.com/msto63/fx/foundation/core/error"
	fxlog "github.com/msto63/fx/foundation/core/log"
	"github.com/msto63/fx/foundation/fx"
	"github.com/msto63/fx/foundation/fx/diag"
	"github.com/msto63/fx/foundation/fx/parser"
	"github.com/msto63/fx/internal/buildcache"
	"github.com/msto63/fx/pkg/core/cache"
	coreGrpc "github.com/msto63/fx/pkg/core/grpc"
	"github.com/msto63/fx/pkg/core/health"
	"github.com/msto63/fx/pkg/core/logging"
	"github.com/msto63/fx/pkg/core/version"
)

// probeSource is compiled by the health check
const probeSource = "let probe = 1\n"

// Config holds server configuration
type Config struct {
	Server         coreGrpc.ServerConfig
	MaxSourceBytes int
	// Store backs the build cache; nil keeps it in memory
	Store buildcache.Store
	// Memory sizes the in-process layer in front of Store
	Memory cache.SourcesConfig
	Logger *fxlog.Logger
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Server: coreGrpc.DefaultServerConfig(),
	}
}

// Server is the fx frontend gRPC server
type Server struct {
	compiler  *fx.Compiler
	cached    *buildcache.Compiler
	grpc      *coreGrpc.Server
	health    *health.Registry
	logger    *logging.Logger
	startTime time.Time
}

// New creates a new frontend server
func New(cfg Config) *Server {
	base := cfg.Logger
	if base == nil {
		base = fxlog.GetDefault()
	}
	logger := logging.Wrap("frontend", base.WithField("component", "frontend"))

	compiler := fx.New(fx.Options{Logger: base, MaxSourceBytes: cfg.MaxSourceBytes})
	cached := buildcache.NewCompiler(buildcache.Options{
		Compiler: compiler,
		Store:    cfg.Store,
		Memory:   cache.NewSourceCache[*buildcache.Entry](cfg.Memory),
		Logger:   base,
	})

	healthRegistry := health.NewRegistry("frontend", version.Frontend)
	healthRegistry.Register(health.ErrorCheck("compiler", func(ctx context.Context) error {
		_, err := compiler.CompileSource(ctx, "probe.fx", []byte(probeSource))
		return err
	}))
	healthRegistry.Register(health.DegradedCheck("cache", func(ctx context.Context) error {
		return cached.Store().Ping(ctx)
	}))

	server := &Server{
		compiler:  compiler,
		cached:    cached,
		grpc:      coreGrpc.NewServer(cfg.Server, logger),
		health:    healthRegistry,
		logger:    logger,
		startTime: time.Now(),
	}

	// Register gRPC service
	RegisterFrontendServer(server.grpc.GRPCServer(), server)

	return server
}

// Ensure Server implements FrontendServer
var _ FrontendServer = (*Server)(nil)

// Compile implements FrontendServer.Compile
func (s *Server) Compile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	file, src, err := sourceRequest(req)
	if err != nil {
		return nil, err
	}

	out, err := s.cached.Compile(ctx, file, src)
	if err != nil {
		return nil, toStatus(err)
	}

	var tree []interface{}
	if err := json.Unmarshal(out.Tree, &tree); err != nil {
		s.logger.Error("Failed to decode cached tree", "key", out.Key, "error", err)
		return nil, status.Error(codes.Internal, "corrupt cache entry")
	}

	functions := make(map[string]interface{}, len(out.Functions))
	order := make([]interface{}, len(out.Functions))
	for i, f := range out.Functions {
		functions[f.Name] = f.ReturnType
		order[i] = f.Name
	}

	reply, err := structpb.NewStruct(map[string]interface{}{
		"run_id":      out.RunID,
		"file":        out.File,
		"cached":      out.Cached,
		"functions":   functions,
		"order":       order,
		"tree":        tree,
		"duration_ms": float64(out.Duration.Microseconds()) / 1000,
	})
	if err != nil {
		s.logger.Error("Failed to build compile reply", "error", err)
		return nil, status.Error(codes.Internal, "failed to build reply")
	}
	return reply, nil
}

// Tokens implements FrontendServer.Tokens
func (s *Server) Tokens(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	file, src, err := sourceRequest(req)
	if err != nil {
		return nil, err
	}

	tokens, err := s.compiler.Tokens(file, src)
	if err != nil {
		return nil, toStatus(err)
	}

	list := make([]interface{}, len(tokens))
	for i, tok := range tokens {
		list[i] = map[string]interface{}{
			"kind":     tok.Kind.String(),
			"text":     tok.String(),
			"location": tok.Loc.Message(),
		}
	}

	reply, err := structpb.NewStruct(map[string]interface{}{
		"count":     len(tokens),
		"tokens":    list,
		"rendering": parser.FormatTokens(tokens),
	})
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to build reply")
	}
	return reply, nil
}

// Status implements FrontendServer.Status
func (s *Server) Status(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	report := s.health.Check(ctx)

	checks := make([]interface{}, len(report.Checks))
	for i, c := range report.Checks {
		checks[i] = map[string]interface{}{
			"name":    c.Name,
			"status":  string(c.Status),
			"message": c.Message,
		}
	}

	fields := map[string]interface{}{
		"service":        report.Service,
		"version":        report.Version,
		"status":         string(report.Status),
		"uptime_seconds": time.Since(s.startTime).Seconds(),
		"checks":         checks,
	}

	if stats, err := s.cached.Stats(ctx); err == nil {
		fields["cache"] = stats
	} else {
		s.logger.Warn("Failed to read cache stats", "error", err)
	}

	reply, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to build reply")
	}
	return reply, nil
}

// Start runs the health checks and serves on the configured address
func (s *Server) Start() error {
	s.publishHealth()
	return s.grpc.Start()
}

// Serve runs the health checks and serves on listener
func (s *Server) Serve(listener net.Listener) error {
	s.publishHealth()
	return s.grpc.Serve(listener)
}

// Stop gracefully stops the server and closes the cache
func (s *Server) Stop(ctx context.Context) {
	s.grpc.StopWithTimeout(ctx)
	if err := s.cached.Close(); err != nil {
		s.logger.Warn("Failed to close cache", "error", err)
	}
}

// Address returns the listening address
func (s *Server) Address() string {
	return s.grpc.Address()
}

func (s *Server) publishHealth() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	report := s.health.Check(ctx)
	s.grpc.SetServing("", true)
	s.grpc.SetServing(ServiceName, report.Healthy())
	s.logger.Info("Health published", "status", string(report.Status))
}

// sourceRequest extracts {file, source} from a request
func sourceRequest(req *structpb.Struct) (string, []byte, error) {
	fields := req.GetFields()

	file := fields["file"].GetStringValue()
	if file == "" {
		return "", nil, status.Error(codes.InvalidArgument, "file is required")
	}
	source, ok := fields["source"]
	if !ok {
		return "", nil, status.Error(codes.InvalidArgument, "source is required")
	}
	if _, isString := source.GetKind().(*structpb.Value_StringValue); !isString {
		return "", nil, status.Error(codes.InvalidArgument, "source must be a string")
	}
	return file, []byte(source.GetStringValue()), nil
}

// toStatus maps a compile error to a gRPC status. Diagnostics carry a
// structured detail with kind, stage and location.
func toStatus(err error) error {
	if d, ok := diag.AsError(err); ok {
		st := status.New(codes.InvalidArgument, d.Error())
		detail, derr := structpb.NewStruct(map[string]interface{}{
			"kind":     d.Kind.String(),
			"stage":    string(d.Stage),
			"location": d.Where(),
			"message":  d.Kind.Message(),
		})
		if derr == nil {
			if withDetail, werr := st.WithDetails(detail); werr == nil {
				st = withDetail
			}
		}
		return st.Err()
	}

	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case fxerror.HasCode(err, fxerror.CodeInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
