// Package grpcutil provides gRPC utility functions for error translation.
package grpcutil

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// TranslateContextError converts context errors to gRPC status errors.
func TranslateContextError(err error) error {
	switch err {
	case context.DeadlineExceeded:
		return status.Error(codes.DeadlineExceeded, err.Error())
	case context.Canceled:
		return status.Error(codes.Canceled, err.Error())
	default:
		return err
	}
}
