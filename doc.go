// Package streamrecv provides per-stream rendezvous between asynchronous
// wire-level events and consumer callbacks, for inter-process transports.
//
// A transport's wire-delivery goroutine decodes three categories of event
// per logical stream - initial metadata, message payloads, and trailing
// metadata with a status code - and hands them to a [Receiver] via the
// Notify methods. Consumers claim events via the Register methods. Either
// side may arrive first: the receiver buffers whichever shows up early and
// resolves the match as soon as both exist. Per stream and category, every
// result reaches at most one callback, and message results are delivered in
// arrival order.
//
// # Rendezvous Model
//
// Registration is one-shot: a registered callback is consumed by the result
// that resolves it, and the consumer registers again for the next result.
// At most one registration may be pending per stream and event category;
// violating that is a programming error in the calling layer and panics.
// Failures travel inside results as errors alongside the payload - a failed
// decode surfaces to the consumer callback exactly like a successful one.
//
// # End Of Stream
//
// Trailing metadata marks the end of a stream. Its arrival permanently
// closes the stream's message channel: a waiting message registration is
// resolved immediately with [ErrStreamCanceledGracefully], as is any later
// message registration that finds no buffered backlog. Message results that
// arrived before end-of-stream are never dropped, and drain in order ahead
// of the cancellation.
//
// # Stream Lifecycle
//
// Per-stream state springs into existence on the first register or notify
// naming the stream, and persists until explicitly torn down.
// [Receiver.CancelStream] resolves all currently registered callbacks with
// a caller-supplied error, leaving buffered results drainable;
// [Receiver.Clear] silently erases everything. Server-role receivers
// additionally emit an accept-stream signal - an injected func() - when a
// stream's first initial metadata arrives, which is how the inbound side
// learns a new stream has begun.
//
// # Concurrency
//
// A [Receiver] is safe for concurrent use from multiple goroutines. All
// operations are synchronous and non-blocking: "waiting" is state, not a
// blocked call. One mutex guards all bookkeeping; matched callbacks and the
// accept-stream signal are invoked on the triggering goroutine strictly
// after the mutex is released, so callback bodies may re-enter the receiver
// (for example, registering for the next message) without deadlocking.
// There are no internal goroutines, timers, or timeouts.
//
// # Blocking Adapters
//
// [Receiver.RecvInitialMetadata], [Receiver.RecvMessage], and
// [Receiver.RecvTrailingMetadata] wrap the callback surface in blocking,
// context-aware calls for consumers structured around straight-line code.
// Context errors are translated to gRPC status errors.
//
// # Logging
//
// An optional logiface logger, supplied via [WithLogger], records operation
// traces and lifecycle events. Without one, logging is disabled at zero
// cost.
package streamrecv
