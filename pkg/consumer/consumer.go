// Package consumer drains the host→background channel and applies side
// effects to each message.
package consumer

import (
	"log/slog"
	"sync"

	"webframe/pkg/fabric"
)

// SideEffect is applied to every drained message, in delivery order.
type SideEffect func(fabric.Message)

// Consumer is the long-lived background drain task. It is started on demand
// and at most once per bridge, however many times EnsureStarted runs.
type Consumer struct {
	registry *fabric.Registry
	log      *slog.Logger
	effect   SideEffect

	once sync.Once
	done chan struct{}
}

func New(registry *fabric.Registry, log *slog.Logger, effect SideEffect) *Consumer {
	if log == nil {
		log = slog.Default()
	}

	return &Consumer{
		registry: registry,
		log:      log.With("component", "consumer"),
		effect:   effect,
		done:     make(chan struct{}),
	}
}

// EnsureStarted spawns the drain task on first call and is a no-op after
// that, including under concurrent invocation. A registry whose receiver was
// already taken elsewhere means the consumer is running in another wiring;
// that is observed, not treated as a failure.
func (c *Consumer) EnsureStarted() {
	c.once.Do(func() {
		rx, ok := c.registry.TakeReceiver(fabric.KeyHostToBackground)
		if !ok {
			c.log.Debug("Receiver already taken, consumer running elsewhere")
			close(c.done)
			return
		}

		go c.drain(rx)
	})
}

func (c *Consumer) drain(rx fabric.Receiver[fabric.Message]) {
	defer close(c.done)

	for {
		msg, ok := rx.Recv()
		if !ok {
			c.log.Info("Channel closed, consumer stopping")
			return
		}

		c.log.Info("Message received", "message", msg.Text, "timestamp", msg.Timestamp)
		if c.effect != nil {
			c.effect(msg)
		}
	}
}

// Done is closed once the drain task has terminated.
func (c *Consumer) Done() <-chan struct{} {
	return c.done
}
