package streamrecv

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"

	"github.com/joeycumines/go-streamrecv/internal/grpcutil"
)

// RecvInitialMetadata blocks until the stream's initial metadata result is
// available, and returns it. Context errors are translated to gRPC status
// errors ([codes.Canceled], [codes.DeadlineExceeded]).
//
// If ctx ends first, the underlying registration stays pending - the
// receiver has no internal timeouts - and a late result is discarded.
// Calling again for the same stream while that registration is pending
// panics, per [Receiver.RegisterRecvInitialMetadata].
func (r *Receiver[ID]) RecvInitialMetadata(ctx context.Context, id ID) (metadata.MD, error) {
	ch := make(chan initialMetadataResult, 1)
	r.RegisterRecvInitialMetadata(id, func(md metadata.MD, err error) {
		ch <- initialMetadataResult{md: md, err: err}
	})
	select {
	case v := <-ch:
		return v.md, v.err
	case <-ctx.Done():
		return nil, grpcutil.TranslateContextError(ctx.Err())
	}
}

// RecvMessage blocks until the stream's next message payload result is
// available, and returns it. After trailing metadata ends the stream and
// buffered messages drain, it returns [ErrStreamCanceledGracefully].
// Context errors are translated to gRPC status errors.
//
// If ctx ends first, the underlying registration stays pending, and a late
// result is discarded. Calling again for the same stream while that
// registration is pending panics, per [Receiver.RegisterRecvMessage].
func (r *Receiver[ID]) RecvMessage(ctx context.Context, id ID) ([]byte, error) {
	ch := make(chan messageResult, 1)
	r.RegisterRecvMessage(id, func(data []byte, err error) {
		ch <- messageResult{data: data, err: err}
	})
	select {
	case v := <-ch:
		return v.data, v.err
	case <-ctx.Done():
		return nil, grpcutil.TranslateContextError(ctx.Err())
	}
}

// RecvTrailingMetadata blocks until the stream's trailing metadata result
// and status code are available, and returns them. Context errors are
// translated to gRPC status errors.
//
// If ctx ends first, the underlying registration stays pending, and a late
// result is discarded. Calling again for the same stream while that
// registration is pending panics, per
// [Receiver.RegisterRecvTrailingMetadata].
func (r *Receiver[ID]) RecvTrailingMetadata(ctx context.Context, id ID) (metadata.MD, codes.Code, error) {
	ch := make(chan trailingMetadataResult, 1)
	r.RegisterRecvTrailingMetadata(id, func(md metadata.MD, code codes.Code, err error) {
		ch <- trailingMetadataResult{md: md, err: err, code: code}
	})
	select {
	case v := <-ch:
		return v.md, v.code, v.err
	case <-ctx.Done():
		return nil, 0, grpcutil.TranslateContextError(ctx.Err())
	}
}
