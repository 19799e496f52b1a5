package ipc

import (
	"log/slog"

	"github.com/google/uuid"

	"webframe/pkg/frameerr"
	"webframe/pkg/host"
)

// ScriptSink forwards one script to the native loop. Implementations must be
// safe to call from any goroutine and must never run the script inline.
type ScriptSink interface {
	SendEval(script string) error
}

// Dispatcher is the synchronous bridge invoked once per inbound renderer
// request. It normalizes the request, hands it to the scripting callback
// under the host execution context, and forwards at most one resulting
// instruction to the native loop.
//
// Dispatch blocks its caller for the callback's duration, so the frame
// wiring never invokes it on the render goroutine.
type Dispatcher struct {
	hostCtx  *host.Context
	callback host.Callback
	sink     ScriptSink
	log      *slog.Logger
}

func NewDispatcher(hostCtx *host.Context, callback host.Callback, sink ScriptSink, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}

	return &Dispatcher{
		hostCtx:  hostCtx,
		callback: callback,
		sink:     sink,
		log:      log.With("component", "ipc.dispatcher"),
	}
}

// Dispatch handles one renderer request. A scripting failure is logged and
// swallowed; it never reaches the caller or the render surface.
func (d *Dispatcher) Dispatch(req Request) {
	requestID := uuid.NewString()

	payload, err := Normalize(req).Serialize()
	if err != nil {
		d.log.Error("Request serialization failed", "request_id", requestID, "error", err)
		return
	}

	var script *string
	err = d.hostCtx.Do(func() error {
		result, invokeErr := d.callback.Invoke(payload)
		script = result
		return invokeErr
	})
	if err != nil {
		d.log.Error("Callback failed", "request_id", requestID,
			"error", frameerr.Wrap(frameerr.CategoryCallbackFailure, "", err))
		return
	}
	if script == nil {
		return
	}

	if err := d.sink.SendEval(*script); err != nil {
		d.log.Warn("Instruction dropped, native loop is gone", "request_id", requestID, "error", err)
	}
}
