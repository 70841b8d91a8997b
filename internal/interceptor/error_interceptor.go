package interceptor

import (
	"context"
	"errors"
	"fmt"

	"github.com/jt828/promtext/pkg/apperror"
	"github.com/jt828/promtext/pkg/observability"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var errInternal = status.Error(codes.Internal, "internal server error")

func ErrorInterceptor(log observability.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered", observability.String("panic", fmt.Sprintf("%v", r)), observability.String("method", info.FullMethod))
				resp, err = nil, errInternal
			}
		}()

		resp, err = handler(ctx, req)
		if err == nil {
			return resp, nil
		}
		return nil, toStatus(log, info.FullMethod, err)
	}
}

func StreamErrorInterceptor(log observability.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered", observability.String("panic", fmt.Sprintf("%v", r)), observability.String("method", info.FullMethod))
				err = errInternal
			}
		}()

		if err = handler(srv, ss); err == nil {
			return nil
		}
		return toStatus(log, info.FullMethod, err)
	}
}

func toStatus(log observability.Logger, method string, err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, apperror.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, apperror.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		log.Error("unhandled error", observability.Err(err), observability.String("method", method))
		return errInternal
	}
}
