package streamrecv

import (
	"errors"

	"github.com/joeycumines/logiface"
)

// receiverOptions holds configuration for a [Receiver] instance.
// Fields are ordered for optimal struct alignment.
type receiverOptions struct {
	logger       *logiface.Logger[logiface.Event]
	acceptStream func()
	role         Role
}

// Option configures a [Receiver] instance. Options are applied during
// construction.
type Option interface {
	applyOption(*receiverOptions) error
}

// receiverOptionImpl implements [Option] via a closure.
type receiverOptionImpl struct {
	fn func(*receiverOptions) error
}

func (o *receiverOptionImpl) applyOption(opts *receiverOptions) error {
	return o.fn(opts)
}

// WithRole configures which side of the transport the receiver serves.
// The default is [RoleClient]. Only [RoleServer] receivers emit the
// accept-stream signal (see [WithAcceptStreamHandler]).
func WithRole(role Role) Option {
	return &receiverOptionImpl{fn: func(opts *receiverOptions) error {
		if role != RoleClient && role != RoleServer {
			return errors.New("invalid role")
		}
		opts.role = role
		return nil
	}}
}

// WithAcceptStreamHandler configures the accept-stream notification sink,
// invoked (with the receiver's lock released) when the first initial
// metadata for a stream arrives at a [RoleServer] receiver. The handler
// must not be nil. It is never invoked by [RoleClient] receivers.
func WithAcceptStreamHandler(handler func()) Option {
	return &receiverOptionImpl{fn: func(opts *receiverOptions) error {
		if handler == nil {
			return errors.New("accept stream handler must not be nil")
		}
		opts.acceptStream = handler
		return nil
	}}
}

// WithLogger configures the logger used for operational diagnostics.
// A nil logger is accepted, and disables logging (the default).
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &receiverOptionImpl{fn: func(opts *receiverOptions) error {
		opts.logger = logger
		return nil
	}}
}

// resolveOptions applies the given options to a default [receiverOptions].
func resolveOptions(opts []Option) (*receiverOptions, error) {
	cfg := &receiverOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyOption(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
