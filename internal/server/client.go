package server

import (
	"context"

	"github.com/chronos-tachyon/piston"
	"github.com/nuclio/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Client talks to a remote piston.Piston service
type Client struct {
	conn   *grpc.ClientConn
	health healthpb.HealthClient
}

// Dial connects to addr. Extra options are appended after the defaults, so
// callers may override the transport credentials or the dialer
func Dial(ctx context.Context, addr string, options ...grpc.DialOption) (*Client, error) {
	dialOptions := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, options...)

	conn, err := grpc.DialContext(ctx, addr, dialOptions...)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to dial %s", addr)
	}

	return &Client{
		conn:   conn,
		health: healthpb.NewHealthClient(conn),
	}, nil
}

// Compress sends data to the remote codec
func (c *Client) Compress(ctx context.Context, data []byte) (*piston.Payload, error) {
	request := &CompressRequest{Data: data}
	response := &CompressResponse{}

	if err := c.conn.Invoke(ctx, compressMethod, request, response, grpc.CallContentSubtype(CodecName)); err != nil {
		return nil, fromStatus(err)
	}

	return &piston.Payload{
		Data:  nonNil(response.Data),
		Count: response.Count,
		Table: response.Table,
	}, nil
}

// Decompress asks the remote codec to reverse a Compress
func (c *Client) Decompress(ctx context.Context, payload *piston.Payload) ([]byte, error) {
	request := &DecompressRequest{
		Data:  payload.Data,
		Count: payload.Count,
		Table: payload.Table,
	}
	response := &DecompressResponse{}

	if err := c.conn.Invoke(ctx, decompressMethod, request, response, grpc.CallContentSubtype(CodecName)); err != nil {
		return nil, fromStatus(err)
	}

	return nonNil(response.Data), nil
}

// Check returns nil if the remote codec reports itself as serving
func (c *Client) Check(ctx context.Context) error {
	response, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return errors.Wrap(err, "Health check failed")
	}

	if response.Status != healthpb.HealthCheckResponse_SERVING {
		return errors.Errorf("Service is %s", response.Status)
	}

	return nil
}

// Close releases the underlying connection
func (c *Client) Close() error {
	return c.conn.Close()
}

// msgpack decodes empty byte strings as nil
func nonNil(data []byte) []byte {
	if data == nil {
		return []byte{}
	}
	return data
}
