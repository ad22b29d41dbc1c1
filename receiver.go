package streamrecv

import (
	"fmt"
	"sync"

	"github.com/joeycumines/logiface"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/joeycumines/go-streamrecv/internal/rendezvous"
)

// ErrStreamCanceledGracefully is delivered to message-channel registrations
// that can never be satisfied because trailing metadata already ended the
// stream. It carries [codes.Canceled].
var ErrStreamCanceledGracefully = status.Error(codes.Canceled, "streamrecv: stream canceled gracefully")

// Role determines which side of the transport a [Receiver] serves.
type Role int

const (
	// RoleClient is the default role. Client-role receivers never emit the
	// accept-stream signal.
	RoleClient Role = iota

	// RoleServer marks the inbound side of the transport. The first initial
	// metadata arrival for each stream emits the accept-stream signal (see
	// [WithAcceptStreamHandler]).
	RoleServer
)

// String returns "client" or "server".
func (r Role) String() string {
	switch r {
	case RoleClient:
		return "client"
	case RoleServer:
		return "server"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

type (
	// InitialMetadataCallback consumes one initial metadata result. A non-nil
	// err is a transport-surfaced failure or a cancellation; md is only
	// meaningful when err is nil.
	InitialMetadataCallback func(md metadata.MD, err error)

	// MessageCallback consumes one message payload result. A non-nil err is
	// a transport-surfaced failure or a cancellation; data is only meaningful
	// when err is nil.
	MessageCallback func(data []byte, err error)

	// TrailingMetadataCallback consumes one trailing metadata result and the
	// stream's status code. A non-nil err is a transport-surfaced failure or
	// a cancellation; md and code are only meaningful when err is nil.
	TrailingMetadataCallback func(md metadata.MD, code codes.Code, err error)
)

type (
	initialMetadataResult struct {
		md  metadata.MD
		err error
	}

	messageResult struct {
		data []byte
		err  error
	}

	trailingMetadataResult struct {
		md   metadata.MD
		err  error
		code codes.Code
	}
)

// streamState holds one stream's rendezvous cells. Created lazily on the
// first register or notify touching the stream, erased only by
// [Receiver.Clear]. Call sites must hold the owning receiver's mutex.
type streamState struct {
	initial  rendezvous.Cell[initialMetadataResult]
	messages rendezvous.Cell[messageResult]
	trailing rendezvous.Cell[trailingMetadataResult]
	accepted bool
}

// Receiver matches asynchronous wire-level stream events (initial metadata,
// message payloads, trailing metadata/status) against consumer callbacks
// that may be registered before or after the corresponding event arrives.
// Whichever side arrives first is buffered; per event category, results are
// delivered to callbacks at most once each, in arrival order.
//
// The wire-delivery side calls the Notify methods, in increasing logical
// order per stream (initial metadata, then zero or more messages, then
// trailing metadata). The consuming side calls the Register methods, at any
// time, at most once per stream and event category until the registration
// resolves. All operations are synchronous and non-blocking; matched
// callbacks are invoked on the calling goroutine with the receiver's lock
// released, so callback bodies may re-enter the receiver freely.
//
// ID is the caller's stream identifier type, used only for lookup.
//
// Create instances with [New]. The zero value is not usable.
type Receiver[ID comparable] struct {
	logger       *logiface.Logger[logiface.Event]
	acceptStream func()
	streams      map[ID]*streamState
	mu           sync.Mutex
	role         Role
}

// New creates a [Receiver] for stream identifiers of type ID.
//
// Options configure the role, the accept-stream handler, and the logger. The
// default role is [RoleClient]. New panics if any option fails validation
// (invalid options are programming errors).
func New[ID comparable](opts ...Option) *Receiver[ID] {
	cfg, err := resolveOptions(opts)
	if err != nil {
		panic(fmt.Sprintf("streamrecv: %s", err))
	}
	return &Receiver[ID]{
		logger:       cfg.logger,
		acceptStream: cfg.acceptStream,
		role:         cfg.role,
		streams:      make(map[ID]*streamState),
	}
}

// stream returns the state for id, creating it if necessary.
// Call with mu held.
func (r *Receiver[ID]) stream(id ID) *streamState {
	s := r.streams[id]
	if s == nil {
		s = &streamState{}
		r.streams[id] = s
	}
	return s
}

// RegisterRecvInitialMetadata registers cb to consume the stream's initial
// metadata. cb is invoked exactly once - immediately if a result already
// arrived, otherwise when one does - unless the stream is torn down via
// [Receiver.Clear] first. [Receiver.CancelStream] resolves a pending
// registration with the cancellation error.
//
// Panics if a previous registration for the same stream is still pending,
// or if cb is nil.
func (r *Receiver[ID]) RegisterRecvInitialMetadata(id ID, cb InitialMetadataCallback) {
	if cb == nil {
		panic("streamrecv: nil initial metadata callback")
	}
	r.logger.Trace().Interface("stream", id).Log("register recv initial metadata")
	r.mu.Lock()
	s := r.stream(id)
	if s.initial.Waiting() {
		r.mu.Unlock()
		panic(fmt.Sprintf("streamrecv: duplicate initial metadata registration (stream %v)", id))
	}
	v, ok := s.initial.Take(func(v initialMetadataResult) { cb(v.md, v.err) })
	r.mu.Unlock()
	if ok {
		cb(v.md, v.err)
	}
}

// RegisterRecvMessage registers cb to consume the stream's next message
// payload. cb is invoked exactly once - immediately with the oldest buffered
// result if any exist, immediately with [ErrStreamCanceledGracefully] if
// trailing metadata already ended the stream and no buffered results remain,
// otherwise when the next message arrives - unless the stream is torn down
// via [Receiver.Clear] first.
//
// Panics if a previous registration for the same stream is still pending,
// or if cb is nil.
func (r *Receiver[ID]) RegisterRecvMessage(id ID, cb MessageCallback) {
	if cb == nil {
		panic("streamrecv: nil message callback")
	}
	r.logger.Trace().Interface("stream", id).Log("register recv message")
	r.mu.Lock()
	s := r.stream(id)
	if s.messages.Waiting() {
		r.mu.Unlock()
		panic(fmt.Sprintf("streamrecv: duplicate message registration (stream %v)", id))
	}
	v, ok := s.messages.Take(func(v messageResult) { cb(v.data, v.err) })
	r.mu.Unlock()
	if ok {
		cb(v.data, v.err)
	}
}

// RegisterRecvTrailingMetadata registers cb to consume the stream's trailing
// metadata and status code. cb is invoked exactly once - immediately if a
// result already arrived, otherwise when one does - unless the stream is
// torn down via [Receiver.Clear] first.
//
// Panics if a previous registration for the same stream is still pending,
// or if cb is nil.
func (r *Receiver[ID]) RegisterRecvTrailingMetadata(id ID, cb TrailingMetadataCallback) {
	if cb == nil {
		panic("streamrecv: nil trailing metadata callback")
	}
	r.logger.Trace().Interface("stream", id).Log("register recv trailing metadata")
	r.mu.Lock()
	s := r.stream(id)
	if s.trailing.Waiting() {
		r.mu.Unlock()
		panic(fmt.Sprintf("streamrecv: duplicate trailing metadata registration (stream %v)", id))
	}
	v, ok := s.trailing.Take(func(v trailingMetadataResult) { cb(v.md, v.code, v.err) })
	r.mu.Unlock()
	if ok {
		cb(v.md, v.code, v.err)
	}
}

// NotifyRecvInitialMetadata delivers the stream's initial metadata result to
// a registered callback, or buffers it for the next registration.
//
// On a [RoleServer] receiver, the first notify for each stream emits the
// accept-stream signal, before the callback (if any) is resolved. Both the
// signal and the callback run on the calling goroutine with the receiver's
// lock released.
func (r *Receiver[ID]) NotifyRecvInitialMetadata(id ID, md metadata.MD, err error) {
	r.logger.Trace().Interface("stream", id).Log("notify recv initial metadata")
	v := initialMetadataResult{md: md, err: err}
	var accept func()
	r.mu.Lock()
	s := r.stream(id)
	if r.role == RoleServer && !s.accepted {
		s.accepted = true
		accept = r.acceptStream
	}
	w := s.initial.Offer(v)
	r.mu.Unlock()
	if accept != nil {
		r.logger.Debug().Interface("stream", id).Log("accepting stream")
		accept()
	}
	if w != nil {
		w(v)
	}
}

// NotifyRecvMessage delivers a message payload result to a registered
// callback, or buffers it in arrival order for a later registration.
//
// Ownership of data transfers to the receiver; the caller must not retain
// and mutate the slice.
func (r *Receiver[ID]) NotifyRecvMessage(id ID, data []byte, err error) {
	r.logger.Trace().Interface("stream", id).Log("notify recv message")
	v := messageResult{data: data, err: err}
	r.mu.Lock()
	w := r.stream(id).messages.Offer(v)
	r.mu.Unlock()
	if w != nil {
		w(v)
	}
}

// NotifyRecvTrailingMetadata delivers the stream's trailing metadata result
// and status code to a registered callback, or buffers them for the next
// registration. As its first step, it permanently closes the stream's
// message channel: trailing metadata marks the end of the stream, so no
// waiting or future message registration can ever be satisfied. Message
// results buffered beforehand are preserved, and still drain in order.
func (r *Receiver[ID]) NotifyRecvTrailingMetadata(id ID, md metadata.MD, code codes.Code, err error) {
	r.logger.Trace().Interface("stream", id).Stringer("code", code).Log("notify recv trailing metadata")
	r.cancelRecvMessages(id)
	v := trailingMetadataResult{md: md, err: err, code: code}
	r.mu.Lock()
	w := r.stream(id).trailing.Offer(v)
	r.mu.Unlock()
	if w != nil {
		w(v)
	}
}

// cancelRecvMessages closes the stream's message channel with
// [ErrStreamCanceledGracefully]. Runs as its own complete lock cycle so a
// cancelled callback re-entering the receiver observes the close before the
// trailing metadata result is matched.
func (r *Receiver[ID]) cancelRecvMessages(id ID) {
	final := messageResult{err: ErrStreamCanceledGracefully}
	r.mu.Lock()
	w := r.stream(id).messages.Close(final)
	r.mu.Unlock()
	if w != nil {
		// The registered callback can never be satisfied.
		w(final)
	}
}

// CancelStream removes every callback currently registered for the stream,
// across all three event categories, then invokes each with err (initial
// metadata first, then message, then trailing metadata; the trailing
// metadata callback receives status code 0 alongside err). Buffered results
// and the message channel's end-of-stream state are untouched: results that
// already arrived remain drainable by later registrations until
// [Receiver.Clear]. No-op for streams with no state.
func (r *Receiver[ID]) CancelStream(id ID, err error) {
	r.logger.Debug().Interface("stream", id).Err(err).Log("cancel stream")
	r.mu.Lock()
	s := r.streams[id]
	if s == nil {
		r.mu.Unlock()
		return
	}
	wi := s.initial.TakeWaiter()
	wm := s.messages.TakeWaiter()
	wt := s.trailing.TakeWaiter()
	r.mu.Unlock()
	if wi != nil {
		wi(initialMetadataResult{err: err})
	}
	if wm != nil {
		wm(messageResult{err: err})
	}
	if wt != nil {
		wt(trailingMetadataResult{err: err})
	}
}

// Clear erases all state for the stream: buffered results, registered
// callbacks, the message channel's end-of-stream state, and the acceptance
// flag. No callbacks are invoked - callers needing notification must
// [Receiver.CancelStream] first. Afterwards the identifier behaves as brand
// new. No-op for streams with no state.
func (r *Receiver[ID]) Clear(id ID) {
	r.logger.Debug().Interface("stream", id).Log("clear stream")
	r.mu.Lock()
	delete(r.streams, id)
	r.mu.Unlock()
}
