// Package streamprio implements the weighted priority tree and
// depth-first weighted round-robin scheduler used by HTTP/2 stream
// multiplexing (RFC 7540 §5.3).
//
// # Scope
//
// This package owns exactly one thing: given a set of open streams
// arranged in a weighted dependency tree, and told which of them
// currently have data ready to send, decide the order in which they
// should be serviced. It does not parse or emit HTTP/2 frames, does
// not perform flow control, and does not own any network connection
// or goroutine of its own — it is a pure, synchronous data structure
// that a connection loop drives directly.
//
// # Architecture
//
// A [Scheduler] is the per-connection root of a tree of [Node] values.
// Each Node is caller-allocated (typically embedded in the stream
// object it represents) and is opened against a parent — either the
// Scheduler itself or another open Node — with a weight in [1,256].
// Nodes are grouped into weight-bucketed ring queues; [Scheduler.Run]
// walks those rings heaviest-weight-first. A lighter weight level
// under a parent is served only while every heavier level under that
// parent has nothing eligible; within one weight level, siblings are
// served round-robin.
//
// # Thread Safety
//
// A Scheduler is not safe for concurrent use. Every exported method
// must be called from the single goroutine that owns the connection;
// there is no internal locking, no suspension point, and no
// background goroutine. This mirrors how one HTTP/2 connection is
// already serialized behind one read/write loop in practice.
//
// # Execution Model
//
// [Scheduler.Run] performs a single depth-first sweep: it repeatedly
// finds the most eligible active leaf, invokes the supplied
// [VisitorFunc], and rotates that leaf to the back of its bucket, for
// as long as the visitor keeps reporting it wants more and there is
// eligible work left. There are no timers and no yielding to other
// work within a call to Run; callers that want to interleave
// scheduling with other I/O call Run once per write opportunity.
//
// # Error Handling
//
// Misuse of the API — opening a node twice, closing one that was
// never opened, reprioritizing to an out-of-range weight, mutating
// the tree from inside a visitor callback — is a programming error,
// not a runtime condition a caller should branch on recovering from.
// Those cases panic with a [*ContractViolation]; see that type's
// documentation for the stable codes a caller may match on in a
// deferred recover, e.g. to convert the panic into an HTTP/2
// connection error at the protocol layer above this package.
package streamprio
