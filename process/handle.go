package process

import "github.com/jabolina/calculus/types"

// Continuation is the closure a session or program transmits to a worker's
// thread after it posts its result. It receives the outgoing Callbacks and
// returns the next Callbacks to keep running (a migration), or nil to let
// the thread exit (terminal). Grounded on spec §4.3/§4.4 and DESIGN NOTES
// "Continuations across transitions".
type Continuation func(prev Callbacks) Callbacks

// Terminal is the no-op continuation sent to a worker whose session is
// ending without a transition: it signals the thread to exit.
func Terminal(Callbacks) Callbacks { return nil }

// ThreadRef is the join point for a worker's goroutine: Done closes exactly
// once, when the goroutine's threadBody loop finally returns (whether that
// happens in this session or a later one it was migrated into).
type ThreadRef struct {
	Done chan struct{}
}

// WorkerHandle is the worker-side half of the session/worker rendezvous: it
// posts the worker's result and receives its next continuation. Held only
// by process.threadBody and by a retained main-thread worker's driver.
type WorkerHandle struct {
	ResultTx       chan<- types.Result
	ContinuationRx <-chan Continuation
}

// Handle is the session-side half: the session reads one result per PID to
// collect, and Finish sends each worker its continuation. Thread is non-nil
// for a spawned worker (Either::Left in the original); Pending is non-nil
// once a migration continuation has been attached (Either::Right(Some));
// both nil means a main-thread worker whose continuation was already
// dispatched inline by the program (Either::Right(None)).
type Handle struct {
	ResultRx       <-chan types.Result
	ContinuationTx chan<- Continuation
	Thread         *ThreadRef
	Pending        *Continuation
}

// NewHandlePair creates one result channel and one continuation channel,
// split into their worker-side and session-side halves — two separate
// one-way queues rather than a shared back-pointer, per DESIGN NOTES
// "Cyclic references between session and worker".
func NewHandlePair() (WorkerHandle, *Handle) {
	resultCh := make(chan types.Result, 1)
	contCh := make(chan Continuation, 1)
	worker := WorkerHandle{ResultTx: resultCh, ContinuationRx: contCh}
	session := &Handle{ResultRx: resultCh, ContinuationTx: contCh}
	return worker, session
}
