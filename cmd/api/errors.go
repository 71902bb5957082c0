package main

import (
	"context"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rahmanfaizur/PulseChat/internal/chat"
)

// toStatus maps a chat core error onto a gRPC status.
func toStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, chat.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, chat.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, chat.ErrNotAMember), errors.Is(err, chat.ErrForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, chat.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	case chat.IsRetryable(err):
		jww.WARN.Printf("store failure: %v", err)
		return status.Error(codes.Unavailable, "store temporarily unavailable")
	default:
		jww.ERROR.Printf("unexpected error: %+v", err)
		return status.Error(codes.Internal, "internal error")
	}
}
