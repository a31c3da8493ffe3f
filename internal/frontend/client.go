package frontend

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	coreGrpc "github.com/msto63/fx/pkg/core/grpc"
	"github.com/msto63/fx/pkg/core/logging"
)

// CompileReply is the decoded reply of Compile
type CompileReply struct {
	RunID     string
	File      string
	Cached    bool
	Functions map[string]string
	Order     []string
	Tree      []interface{}
}

// TokensReply is the decoded reply of Tokens
type TokensReply struct {
	Count     int
	Tokens    []string
	Rendering string
}

// Client calls a remote fx frontend
type Client struct {
	conn grpc.ClientConnInterface
	// owned is set when the client dialed the connection itself
	owned *grpc.ClientConn
}

// NewClient creates a client over an established connection
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Dial connects to the frontend with the client interceptors of
// pkg/core/grpc. Close releases the connection.
func Dial(cfg coreGrpc.ClientConfig, logger *logging.Logger, opts ...grpc.DialOption) (*Client, error) {
	conn, err := coreGrpc.Dial(cfg, logger, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, owned: conn}, nil
}

// Close closes a connection opened by Dial
func (c *Client) Close() error {
	if c.owned == nil {
		return nil
	}
	return c.owned.Close()
}

// Compile sends a source unit for compilation
func (c *Client) Compile(ctx context.Context, file string, src []byte, opts ...grpc.CallOption) (*CompileReply, error) {
	out, err := c.invoke(ctx, CompileMethod, sourcePayload(file, src), opts...)
	if err != nil {
		return nil, err
	}

	fields := out.GetFields()
	reply := &CompileReply{
		RunID:     fields["run_id"].GetStringValue(),
		File:      fields["file"].GetStringValue(),
		Cached:    fields["cached"].GetBoolValue(),
		Functions: make(map[string]string),
	}
	for name, v := range fields["functions"].GetStructValue().GetFields() {
		reply.Functions[name] = v.GetStringValue()
	}
	for _, v := range fields["order"].GetListValue().GetValues() {
		reply.Order = append(reply.Order, v.GetStringValue())
	}
	reply.Tree = fields["tree"].GetListValue().AsSlice()
	return reply, nil
}

// Tokens asks the frontend to tokenize a source unit
func (c *Client) Tokens(ctx context.Context, file string, src []byte, opts ...grpc.CallOption) (*TokensReply, error) {
	out, err := c.invoke(ctx, TokensMethod, sourcePayload(file, src), opts...)
	if err != nil {
		return nil, err
	}

	fields := out.GetFields()
	reply := &TokensReply{
		Count:     int(fields["count"].GetNumberValue()),
		Rendering: fields["rendering"].GetStringValue(),
	}
	for _, v := range fields["tokens"].GetListValue().GetValues() {
		reply.Tokens = append(reply.Tokens, v.GetStructValue().GetFields()["text"].GetStringValue())
	}
	return reply, nil
}

// Status returns the health report and cache statistics as a plain map
func (c *Client) Status(ctx context.Context, opts ...grpc.CallOption) (map[string]interface{}, error) {
	out, err := c.invoke(ctx, StatusMethod, &structpb.Struct{}, opts...)
	if err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}

func (c *Client) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func sourcePayload(file string, src []byte) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"file":   structpb.NewStringValue(file),
		"source": structpb.NewStringValue(string(src)),
	}}
}

// String renders a compile reply as "name: type" lines in definition order
func (r *CompileReply) String() string {
	var b strings.Builder
	for _, name := range r.Order {
		fmt.Fprintf(&b, "%s: %s\n", name, r.Functions[name])
	}
	return b.String()
}
