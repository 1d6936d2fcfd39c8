package transport

import (
	"fmt"
	"sync/atomic"
	"time"
)

// DefaultOperationTimeout bounds a pending operation when no timeout is given.
const DefaultOperationTimeout = 30 * time.Second

// OperationCallback receives the outcome of a pending operation: either an
// error, or the data that completed it.
type OperationCallback func(err error, data []byte)

// CancelHook arms a transport-specific early cancellation of a pending
// operation, e.g. "the socket closed before the response arrived".
type CancelHook interface {
	// Arm is called by Start. The hook may call t.Cancel at any time until
	// Disarm is called.
	Arm(t *OperationTimer)

	// Disarm is called when the operation completes or is reset.
	Disarm()
}

type pendingOperation struct {
	cb    OperationCallback
	timer *time.Timer
}

// OperationTimer is a single-slot, timeout-bounded asynchronous wait.
//
// Whichever of timeout, data arrival, or early cancellation happens first
// consumes the slot; the others become no-ops.
type OperationTimer struct {
	slot atomic.Pointer[pendingOperation]
	hook CancelHook

	// post schedules expiry on the owner's event loop. Nil runs it on the
	// timer goroutine.
	post func(func())
}

// NewOperationTimer creates a timer. post may be nil; hook may be nil.
func NewOperationTimer(post func(func()), hook CancelHook) *OperationTimer {
	return &OperationTimer{post: post, hook: hook}
}

// Start arms the timer. It fails with ErrOperationPending if an operation
// is already outstanding.
func (t *OperationTimer) Start(cb OperationCallback, timeout time.Duration) error {
	if cb == nil {
		return fmt.Errorf("operation timer: nil callback")
	}
	if timeout <= 0 {
		timeout = DefaultOperationTimeout
	}

	op := &pendingOperation{cb: cb}
	op.timer = time.AfterFunc(timeout, func() {
		t.schedule(func() {
			t.complete(op, fmt.Errorf("%w: no response within %s", ErrTimeout, timeout), nil)
		})
	})

	if !t.slot.CompareAndSwap(nil, op) {
		op.timer.Stop()
		return ErrOperationPending
	}

	if t.hook != nil {
		t.hook.Arm(t)
	}
	return nil
}

// Cancel completes the pending operation with err and data. The callback
// fires at most once across all Cancel calls; Cancel returns whether it
// fired on this call.
func (t *OperationTimer) Cancel(err error, data []byte) bool {
	op := t.slot.Swap(nil)
	if op == nil {
		return false
	}
	t.finish(op, err, data)
	return true
}

// Reset empties the slot, stops the timeout and disarms the hook without
// firing the callback. Used on voluntary disconnect, where nobody waits on
// the outcome. An expiry already scheduled finds the slot empty.
func (t *OperationTimer) Reset() {
	if op := t.slot.Swap(nil); op != nil {
		op.timer.Stop()
	}
	if t.hook != nil {
		t.hook.Disarm()
	}
}

// Pending returns true if an operation is outstanding.
func (t *OperationTimer) Pending() bool {
	return t.slot.Load() != nil
}

// complete finishes op only if it still owns the slot.
func (t *OperationTimer) complete(op *pendingOperation, err error, data []byte) {
	if t.slot.CompareAndSwap(op, nil) {
		t.finish(op, err, data)
	}
}

func (t *OperationTimer) finish(op *pendingOperation, err error, data []byte) {
	op.timer.Stop()
	if t.hook != nil {
		t.hook.Disarm()
	}
	op.cb(err, data)
}

func (t *OperationTimer) schedule(fn func()) {
	if t.post != nil {
		t.post(fn)
		return
	}
	fn()
}
