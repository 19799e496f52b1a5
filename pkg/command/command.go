// Package command routes structured IPC messages to registered named
// commands and answers through temporary window callbacks, so a frame can be
// driven without writing a custom handler.
package command

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"webframe/pkg/frameerr"
	"webframe/pkg/ipc"
)

// Func is one registered command. Args arrive as decoded JSON values.
type Func func(ctx context.Context, args []any) (any, error)

// callbackID guards the window._<id>(...) interpolation against script
// injection through attacker-chosen ids.
var callbackID = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// envelope is the message shape the surface script posts:
// {cmd, result_id, error_id, payload}.
type envelope struct {
	Cmd      string `json:"cmd"`
	ResultID string `json:"result_id"`
	ErrorID  string `json:"error_id"`
	Payload  []any  `json:"payload"`
}

// Registry holds named commands and serves as the frame's Callback: it
// parses each dispatched request, runs the addressed command, and returns
// the script that resolves the surface-side callback.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Func
	log      *slog.Logger
}

func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}

	return &Registry{
		commands: make(map[string]Func),
		log:      log.With("component", "command"),
	}
}

// Register adds a command. Registering the same name twice is an error.
func (r *Registry) Register(name string, fn Func) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.commands[name]; exists {
		return fmt.Errorf("command %q is already registered", name)
	}

	r.commands[name] = fn
	return nil
}

// Dispatch runs the named command with the given arguments.
func (r *Registry) Dispatch(ctx context.Context, name string, args []any) (any, error) {
	r.mu.RLock()
	fn, ok := r.commands[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("command %q not found", name)
	}

	return fn(ctx, args)
}

// Invoke implements host.Callback. The payload is a serialized normalized
// request whose body carries the command envelope. The returned script calls
// window._<result_id> with the command result, or window._<error_id> with
// the failure text.
func (r *Registry) Invoke(payload string) (*string, error) {
	var req ipc.NormalizedRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return nil, frameerr.Wrap(frameerr.CategoryInvalidPayload, "malformed request payload", err)
	}

	var env envelope
	if err := json.Unmarshal([]byte(req.Body), &env); err != nil {
		return nil, frameerr.Wrap(frameerr.CategoryInvalidPayload, "malformed command envelope", err)
	}
	if env.Cmd == "" || !callbackID.MatchString(env.ResultID) || !callbackID.MatchString(env.ErrorID) {
		return nil, frameerr.New(frameerr.CategoryInvalidPayload, "command envelope is missing cmd or callback ids")
	}

	result, err := r.Dispatch(context.Background(), env.Cmd, env.Payload)
	if err != nil {
		r.log.Warn("Command failed", "command", env.Cmd, "error", err)
		return callbackScript(env.ErrorID, err.Error())
	}

	return callbackScript(env.ResultID, result)
}

func callbackScript(id string, value any) (*string, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode command result: %w", err)
	}

	script := fmt.Sprintf("window._%s(%s);", id, encoded)
	return &script, nil
}
