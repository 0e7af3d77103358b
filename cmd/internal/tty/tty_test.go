// Package tty_test tries to test ttys.
//
// The test is skipped when stdin is not a terminal (ErrNoTTY). Notably, this includes when run with
// "go test" because it redirects tests' standard input/output streams. You can test it by building
// a test binary and running it directly:
//
//	$ go test -c && ./tty.test
package tty_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/xyfuture/nandmachine/cmd/internal/tty"
)

type testHarness struct {
	*testing.T
}

const timeout = 100 * time.Millisecond

func (testHarness) Context() (context.Context, context.CancelCauseFunc) {
	ctx := context.Background()
	ctx, cancel := context.WithTimeoutCause(ctx, timeout, context.DeadlineExceeded)

	return ctx, func(err error) {
		cancel()
	}
}

// recorder is a minimal tty.KeyReceiver that records the last key seen and
// signals once on the first key.
type recorder struct {
	mu      sync.Mutex
	last    uint16
	pressed chan struct{}
	once    sync.Once
}

func newRecorder() *recorder {
	return &recorder{pressed: make(chan struct{})}
}

func (r *recorder) Update(key uint16) {
	r.mu.Lock()
	r.last = key
	r.mu.Unlock()

	r.once.Do(func() { close(r.pressed) })
}

func TestTerminal(tt *testing.T) {
	t := testHarness{tt}
	rec := newRecorder()

	ctx, cancel := t.Context()
	defer cancel(nil)

	ctx, console, done := tty.WithConsole(ctx, rec)
	defer done()

	if err := context.Cause(ctx); errors.Is(err, tty.ErrNoTTY) {
		t.Skipf("error: %s", context.Cause(ctx))
		t.SkipNow()
	}

	go func() {
		console.Press('!')
	}()

	select {
	case <-ctx.Done(): // Just wait.
	case <-rec.pressed:
	}

	done()

	if err := context.Cause(ctx); err != nil {
		t.Errorf("cause: %s", err)
	}
}
