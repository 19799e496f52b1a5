// Package frame wires the bridge together: surface, native loop, dispatcher,
// channel fabric, background consumer, and host loop. A Bridge is an
// explicit context object; nothing here is package-global.
package frame

import (
	"context"
	"log/slog"

	"webframe/pkg/config"
	"webframe/pkg/consumer"
	"webframe/pkg/fabric"
	"webframe/pkg/frameerr"
	"webframe/pkg/host"
	"webframe/pkg/ipc"
	"webframe/pkg/looper"
	"webframe/pkg/surface"
	"webframe/pkg/surface/term"
)

// Bridge owns the process-lifetime bridge state: the channel registry, the
// background consumer gate, and the host execution context. It lives until
// process exit; Close exists for tests and embedders that tear down early.
type Bridge struct {
	cfg      *config.Config
	log      *slog.Logger
	registry *fabric.Registry
	consumer *consumer.Consumer
	hostCtx  *host.Context
	factory  surface.Factory
}

// Option adjusts bridge construction.
type Option func(*Bridge)

// WithSurfaceFactory replaces the default terminal surface.
func WithSurfaceFactory(factory surface.Factory) Option {
	return func(b *Bridge) { b.factory = factory }
}

// WithConsumerEffect adds a hook applied to every message the background
// consumer drains.
func WithConsumerEffect(effect consumer.SideEffect) Option {
	return func(b *Bridge) { b.consumer = consumer.New(b.registry, b.log, effect) }
}

// WithHostContext shares an existing host execution context, for hosts that
// already carry their own entry lock.
func WithHostContext(hostCtx *host.Context) Option {
	return func(b *Bridge) { b.hostCtx = hostCtx }
}

func New(cfg *config.Config, log *slog.Logger, opts ...Option) *Bridge {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = slog.Default()
	}

	registry := fabric.NewRegistry()
	b := &Bridge{
		cfg:      cfg,
		log:      log,
		registry: registry,
		consumer: consumer.New(registry, log, nil),
		hostCtx:  host.NewContext(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.factory == nil {
		b.factory = term.Factory(log)
	}

	return b
}

// Registry exposes the bridge's channel registry for embedders that wire
// additional producers or consumers.
func (b *Bridge) Registry() *fabric.Registry {
	return b.registry
}

// HostContext returns the execution context serializing entry into the
// scripting host.
func (b *Bridge) HostContext() *host.Context {
	return b.hostCtx
}

// CreateSurface builds the render surface, wires its IPC requests through
// the dispatcher to the given callback, and runs the native loop on the
// calling goroutine until the surface asks to close. It blocks for the life
// of the frame.
func (b *Bridge) CreateSurface(callback host.Callback, initialContent string) error {
	loop := looper.New(b.log)
	dispatcher := ipc.NewDispatcher(b.hostCtx, callback, loop.Proxy(), b.log)

	s, err := b.factory(surface.Config{
		Title:          b.cfg.Frame.Title,
		InitialContent: initialContent,
		OnRequest:      dispatcher.Dispatch,
		OnCloseRequested: func() {
			_ = loop.Proxy().Close()
		},
	})
	if err != nil {
		return frameerr.Wrap(frameerr.CategorySurfaceCreation, "", err)
	}

	b.log.Info("Surface created, entering native loop", "title", b.cfg.Frame.Title)
	loop.Run(s)
	b.log.Info("Native loop exited")
	return nil
}

// Emit parses payload as a Message and sends it on the host→background
// channel, starting the background consumer on first use. It fails with
// invalid_payload on a parse error (leaving the fabric untouched) and with
// channel_closed when the consuming side is gone.
func (b *Bridge) Emit(payload string) error {
	msg, err := fabric.ParseMessage(payload)
	if err != nil {
		return err
	}

	b.consumer.EnsureStarted()
	return b.registry.Sender(fabric.KeyHostToBackground).Send(msg)
}

// EmitAsync is Emit resolved asynchronously. The returned channel delivers
// exactly one result and is then closed.
func (b *Bridge) EmitAsync(payload string) <-chan error {
	result := make(chan error, 1)
	go func() {
		defer close(result)
		result <- b.Emit(payload)
	}()

	return result
}

// StartHostLoop launches the scripting host's task loop with one sender
// handle on host→background and one receiver handle on background→host.
// The receiver end is take-once, so a second host loop cannot start.
func (b *Bridge) StartHostLoop(ctx context.Context, tasks ...host.Task) (*host.Loop, error) {
	rx, ok := b.registry.TakeReceiver(fabric.KeyBackgroundToHost)
	if !ok {
		return nil, frameerr.New(frameerr.CategoryChannelClosed, "host loop already running")
	}

	sender := host.NewSenderHandle(b.registry.Sender(fabric.KeyHostToBackground))
	receiver := host.NewReceiverHandle(rx)
	b.consumer.EnsureStarted()

	return host.StartLoop(ctx, b.log, sender, receiver, tasks...), nil
}

// Close tears down the channel fabric. Blocked receives wake up and the
// background consumer terminates.
func (b *Bridge) Close() {
	b.registry.Close()
}
