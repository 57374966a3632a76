package server

import (
	"context"

	"github.com/chronos-tachyon/piston"
	"google.golang.org/grpc"
)

const (
	// ServiceName is the fully qualified gRPC service name
	ServiceName = "piston.Piston"

	compressMethod   = "/" + ServiceName + "/Compress"
	decompressMethod = "/" + ServiceName + "/Decompress"
)

// CompressRequest carries the raw bytes to compress
type CompressRequest struct {
	Data []byte `msgpack:"data"`
}

// CompressResponse carries everything needed to reverse a compression
type CompressResponse struct {
	Data  []byte         `msgpack:"data"`
	Count uint64         `msgpack:"count"`
	Table []piston.Entry `msgpack:"table"`
}

// DecompressRequest mirrors CompressResponse
type DecompressRequest struct {
	Data  []byte         `msgpack:"data"`
	Count uint64         `msgpack:"count"`
	Table []piston.Entry `msgpack:"table"`
}

// DecompressResponse carries the recovered bytes
type DecompressResponse struct {
	Data []byte `msgpack:"data"`
}

// PistonServer is the server API for the piston.Piston service
type PistonServer interface {
	Compress(context.Context, *CompressRequest) (*CompressResponse, error)
	Decompress(context.Context, *DecompressRequest) (*DecompressResponse, error)
}

// RegisterPistonServer attaches impl to registrar
func RegisterPistonServer(registrar grpc.ServiceRegistrar, impl PistonServer) {
	registrar.RegisterService(&pistonServiceDesc, impl)
}

func compressHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CompressRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PistonServer).Compress(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: compressMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PistonServer).Compress(ctx, req.(*CompressRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func decompressHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(DecompressRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PistonServer).Decompress(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: decompressMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PistonServer).Decompress(ctx, req.(*DecompressRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var pistonServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PistonServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Compress",
			Handler:    compressHandler,
		},
		{
			MethodName: "Decompress",
			Handler:    decompressHandler,
		},
	},
	Streams: []grpc.StreamDesc{},
}
