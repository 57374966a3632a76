package server

import (
	"context"

	"github.com/chronos-tachyon/piston"
	"github.com/google/uuid"
	"github.com/nuclio/logger"
)

// Service implements PistonServer on top of the piston codec
type Service struct {
	logger  logger.Logger
	metrics *Metrics
}

// NewService creates a Service. metrics may be nil
func NewService(parentLogger logger.Logger, metrics *Metrics) *Service {
	return &Service{
		logger:  parentLogger.GetChild("service"),
		metrics: metrics,
	}
}

// Compress fulfills PistonServer
func (s *Service) Compress(ctx context.Context, request *CompressRequest) (*CompressResponse, error) {
	requestID := uuid.New().String()
	s.logger.DebugWith("Compressing", "requestID", requestID, "method", "Compress", "size", len(request.Data))

	payload, err := piston.Compress(request.Data)
	if err != nil {
		s.logger.ErrorWith("Failed to compress", "requestID", requestID, "method", "Compress", "err", err.Error())
		return nil, toStatus(err)
	}

	if s.metrics != nil {
		s.metrics.observeCompress(len(request.Data), len(payload.Data))
	}

	s.logger.DebugWith("Compressed",
		"requestID", requestID,
		"method", "Compress",
		"count", payload.Count,
		"packedSize", len(payload.Data),
		"symbols", len(payload.Table))

	return &CompressResponse{
		Data:  payload.Data,
		Count: payload.Count,
		Table: payload.Table,
	}, nil
}

// Decompress fulfills PistonServer
func (s *Service) Decompress(ctx context.Context, request *DecompressRequest) (*DecompressResponse, error) {
	requestID := uuid.New().String()
	s.logger.DebugWith("Decompressing",
		"requestID", requestID,
		"method", "Decompress",
		"packedSize", len(request.Data),
		"count", request.Count,
		"symbols", len(request.Table))

	data, err := piston.Decompress(request.Data, request.Count, request.Table)
	if err != nil {
		s.logger.WarnWith("Failed to decompress",
			"requestID", requestID,
			"method", "Decompress",
			"kind", piston.KindOf(err).String(),
			"err", err.Error())
		return nil, toStatus(err)
	}

	if s.metrics != nil {
		s.metrics.observeDecompress(len(request.Data), len(data))
	}

	s.logger.DebugWith("Decompressed", "requestID", requestID, "method", "Decompress", "size", len(data))

	return &DecompressResponse{Data: data}, nil
}

var _ PistonServer = (*Service)(nil)
