package transport

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type recordingHook struct {
	armed   *OperationTimer
	arms    int
	disarms int
}

func (h *recordingHook) Arm(t *OperationTimer) {
	h.armed = t
	h.arms++
}

func (h *recordingHook) Disarm() {
	h.armed = nil
	h.disarms++
}

func TestOperationTimerCancelTwice(t *testing.T) {
	timer := NewOperationTimer(nil, nil)

	var calls int
	var gotErr error
	var gotData []byte
	if err := timer.Start(func(err error, data []byte) {
		calls++
		gotErr = err
		gotData = data
	}, time.Minute); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	first := errors.New("first")
	if !timer.Cancel(first, []byte("a")) {
		t.Fatal("first Cancel should fire")
	}
	if timer.Cancel(errors.New("second"), []byte("b")) {
		t.Error("second Cancel should not fire")
	}

	if calls != 1 {
		t.Errorf("callback calls = %d, want 1", calls)
	}
	if gotErr != first {
		t.Errorf("err = %v, want %v", gotErr, first)
	}
	if string(gotData) != "a" {
		t.Errorf("data = %q, want %q", gotData, "a")
	}
	if timer.Pending() {
		t.Error("timer should not be pending after Cancel")
	}
}

func TestOperationTimerStartWhilePending(t *testing.T) {
	timer := NewOperationTimer(nil, nil)
	noop := func(error, []byte) {}

	if err := timer.Start(noop, time.Minute); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer timer.Cancel(nil, nil)

	if err := timer.Start(noop, time.Minute); !errors.Is(err, ErrOperationPending) {
		t.Errorf("second Start: got %v, want ErrOperationPending", err)
	}
}

func TestOperationTimerTimeout(t *testing.T) {
	timer := NewOperationTimer(nil, nil)

	done := make(chan error, 1)
	if err := timer.Start(func(err error, _ []byte) {
		done <- err
	}, 10*time.Millisecond); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	select {
	case err := <-done:
		if !errors.Is(err, ErrTimeout) {
			t.Errorf("got %v, want ErrTimeout", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout callback not called")
	}

	if timer.Cancel(errors.New("late"), nil) {
		t.Error("Cancel after timeout should not fire")
	}
}

func TestOperationTimerTimeoutIsPosted(t *testing.T) {
	var posted atomic.Int32
	var mb mailbox
	timer := NewOperationTimer(func(fn func()) {
		posted.Add(1)
		mb.post(fn)
	}, nil)

	done := make(chan struct{})
	if err := timer.Start(func(error, []byte) {
		close(done)
	}, 5*time.Millisecond); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout callback not called")
	}
	if posted.Load() != 1 {
		t.Errorf("posted = %d, want 1", posted.Load())
	}
}

func TestOperationTimerResetDoesNotFire(t *testing.T) {
	timer := NewOperationTimer(nil, nil)

	var fired atomic.Bool
	if err := timer.Start(func(error, []byte) {
		fired.Store(true)
	}, 20*time.Millisecond); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	timer.Reset()
	time.Sleep(80 * time.Millisecond)

	if fired.Load() {
		t.Error("callback fired after Reset")
	}
	if timer.Pending() {
		t.Error("Pending() = true after Reset")
	}
	if err := timer.Start(func(error, []byte) {}, time.Minute); err != nil {
		t.Errorf("Start after Reset failed: %v", err)
	}
	timer.Reset()
}

func TestOperationTimerHook(t *testing.T) {
	hook := &recordingHook{}
	timer := NewOperationTimer(nil, hook)

	var gotErr error
	if err := timer.Start(func(err error, _ []byte) {
		gotErr = err
	}, time.Minute); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if hook.arms != 1 || hook.armed != timer {
		t.Fatalf("hook not armed: arms=%d", hook.arms)
	}

	// The hook cancels early, e.g. because the socket closed.
	if !hook.armed.Cancel(ErrConnectionClosed, nil) {
		t.Fatal("hook Cancel should fire")
	}
	if !errors.Is(gotErr, ErrConnectionClosed) {
		t.Errorf("err = %v, want ErrConnectionClosed", gotErr)
	}
	if hook.disarms != 1 {
		t.Errorf("disarms = %d, want 1", hook.disarms)
	}
}
