package host

import (
	"context"
	"log/slog"
	"sync"
)

// Task is one host-supplied job driven by the host loop. Tasks receive the
// handle pair as their only shared objects and run until they return or the
// context ends.
type Task func(ctx context.Context, sender *SenderHandle, receiver *ReceiverHandle) error

// Loop drives host tasks for the life of the bridge. Each task gets its own
// goroutine; the anchor goroutine waits for all of them before reporting
// done.
type Loop struct {
	log  *slog.Logger
	done chan struct{}
}

// StartLoop launches the given tasks with the handle pair and returns
// immediately. Task failures are logged, never propagated; the loop is done
// when every task has returned.
func StartLoop(ctx context.Context, log *slog.Logger, sender *SenderHandle, receiver *ReceiverHandle, tasks ...Task) *Loop {
	if log == nil {
		log = slog.Default()
	}

	l := &Loop{
		log:  log.With("component", "host.loop"),
		done: make(chan struct{}),
	}

	go func() {
		defer close(l.done)

		var wg sync.WaitGroup
		for i, task := range tasks {
			wg.Add(1)
			go func(index int, run Task) {
				defer wg.Done()
				if err := run(ctx, sender, receiver); err != nil {
					l.log.Error("Host task failed", "task", index, "error", err)
				}
			}(i, task)
		}
		wg.Wait()
	}()

	return l
}

// Done is closed once every task has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
