package consumer

import (
	"sync"
	"testing"
	"time"

	"webframe/pkg/fabric"
)

func TestEnsureStartedConcurrentSpawnsOneTask(t *testing.T) {
	reg := fabric.NewRegistry()

	var mu sync.Mutex
	var seen []string
	c := New(reg, nil, func(msg fabric.Message) {
		mu.Lock()
		seen = append(seen, msg.Text)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.EnsureStarted()
		}()
	}
	wg.Wait()

	// Exactly one task means the receiver was taken exactly once.
	if _, ok := reg.TakeReceiver(fabric.KeyHostToBackground); ok {
		t.Fatal("expected consumer to hold the receiver")
	}

	tx := reg.Sender(fabric.KeyHostToBackground)
	if err := tx.Send(fabric.Message{Text: "only-once"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		count := len(seen)
		mu.Unlock()
		if count == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("message seen %d times, want once", count)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestDrainPreservesOrder(t *testing.T) {
	reg := fabric.NewRegistry()

	received := make(chan string, 8)
	c := New(reg, nil, func(msg fabric.Message) {
		received <- msg.Text
	})

	tx := reg.Sender(fabric.KeyHostToBackground)
	for _, text := range []string{"a", "b", "c"} {
		if err := tx.Send(fabric.Message{Text: text}); err != nil {
			t.Fatalf("send %q: %v", text, err)
		}
	}

	c.EnsureStarted()

	for _, want := range []string{"a", "b", "c"} {
		select {
		case got := <-received:
			if got != want {
				t.Fatalf("drained %q, want %q", got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}

func TestConsumerStopsOnClose(t *testing.T) {
	reg := fabric.NewRegistry()
	c := New(reg, nil, nil)
	c.EnsureStarted()

	reg.Close()

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not terminate after channel closure")
	}
}

func TestEnsureStartedWhenReceiverAlreadyTaken(t *testing.T) {
	reg := fabric.NewRegistry()
	if _, ok := reg.TakeReceiver(fabric.KeyHostToBackground); !ok {
		t.Fatal("setup: expected to take the receiver")
	}

	c := New(reg, nil, nil)
	c.EnsureStarted()

	// "Already taken" means another consumer is running; this one finishes
	// immediately instead of failing.
	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not resolve when receiver was unavailable")
	}
}
