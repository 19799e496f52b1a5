// Package gojahost adapts a goja JavaScript function to the host Callback
// capability. A goja runtime is single-owner, so every entry runs under the
// shared host execution context, the same discipline an interpreter with a
// global lock imposes.
package gojahost

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dop251/goja"

	"webframe/pkg/host"
)

// Host wraps one goja runtime and the handler function it exposes.
type Host struct {
	vm      *goja.Runtime
	handler goja.Callable
	exec    *host.Context
	log     *slog.Logger
}

// New compiles source in a fresh runtime and binds the named handler
// function. The handler receives one string argument (the serialized
// request) and may return a script string, or nothing.
func New(source string, entry string, log *slog.Logger) (*Host, error) {
	if log == nil {
		log = slog.Default()
	}
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return nil, fmt.Errorf("handler entry name is required")
	}

	vm := goja.New()
	consoleLog := log.With("component", "host.script")
	if err := vm.Set("console", map[string]any{
		"log": func(args ...any) {
			consoleLog.Info("console.log", "args", args)
		},
		"error": func(args ...any) {
			consoleLog.Error("console.error", "args", args)
		},
	}); err != nil {
		return nil, fmt.Errorf("bind console: %w", err)
	}

	if _, err := vm.RunString(source); err != nil {
		return nil, fmt.Errorf("evaluate handler script: %w", err)
	}

	handler, ok := goja.AssertFunction(vm.Get(entry))
	if !ok {
		return nil, fmt.Errorf("handler script does not define function %q", entry)
	}

	return &Host{
		vm:      vm,
		handler: handler,
		exec:    host.NewContext(),
		log:     log.With("component", "host.goja"),
	}, nil
}

// ExecContext returns the execution context that serializes entry into this
// runtime. Hand it to every dispatcher that may invoke the handler.
func (h *Host) ExecContext() *host.Context {
	return h.exec
}

// Invoke calls the handler with the serialized request. The caller must hold
// the execution context; the frame's dispatcher does this on every path.
// Only a string result yields a script: undefined, null, and any other
// value mean "no instruction".
func (h *Host) Invoke(payload string) (*string, error) {
	result, err := h.handler(goja.Undefined(), h.vm.ToValue(payload))
	if err != nil {
		return nil, fmt.Errorf("handler raised: %w", err)
	}
	if result == nil || goja.IsUndefined(result) || goja.IsNull(result) {
		return nil, nil
	}

	script, ok := result.Export().(string)
	if !ok {
		return nil, nil
	}

	return &script, nil
}
