package process

// Spawn starts first on its own goroutine and keeps it alive across
// migrations: after first.run() posts a result, the goroutine blocks on
// its continuation channel; a terminal continuation (returning nil) ends
// the loop, any other continuation swaps in the next Callbacks and the
// same goroutine runs it next — this is the Go translation of the
// original's recursive run_continue, written as a loop instead of a tail
// call so the goroutine's stack never grows across a chain of migrations.
// Grounded on DESIGN NOTES "Continuations across transitions".
func Spawn(first Callbacks) *ThreadRef {
	ref := &ThreadRef{Done: make(chan struct{})}
	go threadBody(ref, first)
	return ref
}

func threadBody(ref *ThreadRef, first Callbacks) {
	defer close(ref.Done)
	cb := first
	for {
		base := cb.Base()
		base.run(cb)
		cont := <-base.handle.ContinuationRx
		next := cont(cb)
		if next == nil {
			return
		}
		cb = next
	}
}

// RunInline drives cb to completion on the caller's own goroutine —
// used for the session's retained main-thread worker, which must never be
// spawned onto a separate goroutine.
func RunInline(cb Callbacks) {
	cb.Base().run(cb)
}

// ApplyContinuation invokes cont against cb and returns the resulting
// Callbacks (nil for terminal) — used by the program transition engine to
// drive a main-thread worker's migration inline, matching spec §4.4 "If
// A_i is on the main thread, invoke the constructor closure immediately".
func ApplyContinuation(cont Continuation, cb Callbacks) Callbacks {
	return cont(cb)
}
