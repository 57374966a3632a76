package server

import (
	"github.com/chronos-tachyon/piston"
	"github.com/nuclio/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var kindCodes = map[piston.Kind]codes.Code{
	piston.KindInvalidArgument:     codes.InvalidArgument,
	piston.KindDataCorruption:      codes.DataLoss,
	piston.KindInternalConsistency: codes.Internal,
}

// CodeOf maps a codec error to the gRPC status code reported for it
func CodeOf(err error) codes.Code {
	if err == nil {
		return codes.OK
	}

	if code, found := kindCodes[piston.KindOf(err)]; found {
		return code
	}

	return codes.Unknown
}

// toStatus converts a codec error into a gRPC status error. The message names
// both the outermost context and the root cause
func toStatus(err error) error {
	if err == nil {
		return nil
	}

	message := err.Error()
	if rootCause := errors.RootCause(err); rootCause != nil && rootCause != err {
		message += ": " + rootCause.Error()
	}

	return status.Error(CodeOf(err), message)
}

// fromStatus rebuilds a classified codec error from a gRPC status error, so
// that piston.KindOf works the same against local and remote codecs
func fromStatus(err error) error {
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	for kind, code := range kindCodes {
		if st.Code() == code {
			return errors.Wrap(piston.NewError(kind, st.Message()), "Remote call failed")
		}
	}

	return errors.Wrap(err, "Remote call failed")
}
