package looper

import (
	"errors"
	"sync"
	"testing"
	"time"

	"webframe/pkg/frameerr"
)

type recordingSurface struct {
	mu      sync.Mutex
	scripts []string
	evalErr error
	closed  bool
}

func (s *recordingSurface) Evaluate(script string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts = append(s.scripts, script)
	return s.evalErr
}

func (s *recordingSurface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *recordingSurface) snapshot() ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	scripts := make([]string, len(s.scripts))
	copy(scripts, s.scripts)
	return scripts, s.closed
}

type unknownInstruction struct{}

func (unknownInstruction) instruction() {}

func runLoop(t *testing.T, l *Loop, s *recordingSurface) <-chan struct{} {
	t.Helper()

	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Run(s)
	}()
	return done
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit")
	}
}

func TestEvalAppliedInOrder(t *testing.T) {
	l := New(nil)
	s := &recordingSurface{}

	if err := l.Proxy().SendEval("first()"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := l.Proxy().SendEval("second()"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := l.Proxy().Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	done := runLoop(t, l, s)
	waitDone(t, done)

	scripts, closed := s.snapshot()
	if len(scripts) != 2 || scripts[0] != "first()" || scripts[1] != "second()" {
		t.Fatalf("scripts = %v, want [first() second()]", scripts)
	}
	if !closed {
		t.Fatal("expected surface to be released on exit")
	}
	if l.State() != StateExiting {
		t.Fatalf("state = %d, want exiting", l.State())
	}
}

func TestInstructionsAfterCloseNeverApply(t *testing.T) {
	l := New(nil)
	s := &recordingSurface{}

	_ = l.Proxy().SendEval("before()")
	_ = l.Proxy().Close()
	_ = l.Proxy().SendEval("after()")

	done := runLoop(t, l, s)
	waitDone(t, done)

	scripts, _ := s.snapshot()
	if len(scripts) != 1 || scripts[0] != "before()" {
		t.Fatalf("scripts = %v, want only the pre-close eval", scripts)
	}
}

func TestUnknownInstructionIgnored(t *testing.T) {
	l := New(nil)
	s := &recordingSurface{}

	_ = l.Proxy().Send(unknownInstruction{})
	_ = l.Proxy().SendEval("still.works()")
	_ = l.Proxy().Close()

	done := runLoop(t, l, s)
	waitDone(t, done)

	scripts, _ := s.snapshot()
	if len(scripts) != 1 || scripts[0] != "still.works()" {
		t.Fatalf("scripts = %v, want the eval alone", scripts)
	}
}

func TestEvaluationFailureKeepsLoopRunning(t *testing.T) {
	l := New(nil)
	s := &recordingSurface{evalErr: errors.New("syntax error")}

	_ = l.Proxy().SendEval("bad(")
	_ = l.Proxy().SendEval("bad(again")
	_ = l.Proxy().Close()

	done := runLoop(t, l, s)
	waitDone(t, done)

	scripts, _ := s.snapshot()
	if len(scripts) != 2 {
		t.Fatalf("scripts = %v, want both evals attempted", scripts)
	}
}

func TestSendAfterExitFails(t *testing.T) {
	l := New(nil)
	s := &recordingSurface{}

	_ = l.Proxy().Close()
	done := runLoop(t, l, s)
	waitDone(t, done)

	err := l.Proxy().SendEval("too.late()")
	if err == nil {
		t.Fatal("expected send after exit to fail")
	}
	if !frameerr.Is(err, frameerr.CategoryChannelClosed) {
		t.Fatalf("error category = %q, want channel_closed", frameerr.CategoryFromError(err))
	}
}
