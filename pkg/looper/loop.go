// Package looper runs the native event loop: the single goroutine that owns
// the render surface and applies instructions posted from other contexts.
package looper

import (
	"log/slog"
	"sync/atomic"

	"webframe/pkg/fabric"
	"webframe/pkg/frameerr"
	"webframe/pkg/surface"
)

// Instruction is a command posted to the native loop. The union is open:
// kinds the loop does not recognize are ignored, so new instruction types
// can be introduced without breaking existing loops.
type Instruction interface {
	instruction()
}

// Eval asks the loop to run a script against the render surface.
type Eval struct {
	Script string
}

func (Eval) instruction() {}

// State is the loop's lifecycle phase.
type State int32

const (
	StateRunning State = iota
	StateExiting
)

type envelope struct {
	instr        Instruction
	closeRequest bool
}

// Loop owns a render surface and drains its mailbox until a close request
// arrives. Events apply strictly in post order.
type Loop struct {
	rx    fabric.Receiver[envelope]
	proxy *Proxy
	log   *slog.Logger
	state atomic.Int32
}

func New(log *slog.Logger) *Loop {
	if log == nil {
		log = slog.Default()
	}

	tx, rx := fabric.NewPipe[envelope]()
	return &Loop{
		rx:    rx,
		proxy: &Proxy{tx: tx},
		log:   log.With("component", "looper"),
	}
}

// Proxy returns the loop's thread-safe posting handle. It may be shared
// freely across goroutines.
func (l *Loop) Proxy() *Proxy {
	return l.proxy
}

// State reports the loop's current phase.
func (l *Loop) State() State {
	return State(l.state.Load())
}

// Run blocks on the calling goroutine, applying instructions to s until a
// close request transitions the loop to Exiting. That goroutine is the sole
// owner of s for the duration of the call; on exit the mailbox is torn down
// (later proxy posts fail) and the surface is released.
func (l *Loop) Run(s surface.Surface) {
	for l.State() == StateRunning {
		env, ok := l.rx.Recv()
		if !ok || env.closeRequest {
			l.state.Store(int32(StateExiting))
			break
		}

		switch instr := env.instr.(type) {
		case Eval:
			if err := s.Evaluate(instr.Script); err != nil {
				l.log.Error("Script evaluation failed",
					"error", frameerr.Wrap(frameerr.CategoryScriptEvaluation, "", err))
			}
		default:
			// Unknown instruction kinds are ignored, not errors.
		}
	}

	l.rx.Close()
	if err := s.Close(); err != nil {
		l.log.Error("Surface release failed", "error", err)
	}
}

// Proxy posts events to a loop from any goroutine. Posting never blocks; it
// fails once the loop has exited.
type Proxy struct {
	tx fabric.Sender[envelope]
}

// Send enqueues one instruction. Instructions are delivered in send order.
func (p *Proxy) Send(instr Instruction) error {
	return p.tx.Send(envelope{instr: instr})
}

// SendEval enqueues a script evaluation instruction.
func (p *Proxy) SendEval(script string) error {
	return p.Send(Eval{Script: script})
}

// Close posts a close request. Instructions posted after the loop observes
// the request are never applied.
func (p *Proxy) Close() error {
	return p.tx.Send(envelope{closeRequest: true})
}
