// Package term renders a frame as a terminal program. It is the default
// Surface implementation: scripts mutate a document model through an
// embedded goja runtime, and the bubbletea program repaints from snapshots.
package term

import (
	"fmt"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"webframe/pkg/frameerr"
	"webframe/pkg/ipc"
	"webframe/pkg/surface"
)

// Surface owns a document evaluator and the tea program that displays it.
// Evaluate runs on the native loop goroutine; the tea program runs on its
// own goroutine and only ever receives immutable snapshots.
type Surface struct {
	log       *slog.Logger
	evaluator *evaluator
	program   *tea.Program
	done      chan struct{}
	closeOnce sync.Once
}

// Factory returns a surface.Factory that builds terminal surfaces.
func Factory(log *slog.Logger) surface.Factory {
	return func(cfg surface.Config) (surface.Surface, error) {
		return New(cfg, log)
	}
}

func New(cfg surface.Config, log *slog.Logger) (*Surface, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "surface.term")

	eval, err := newEvaluator(cfg.Title, cfg.InitialContent)
	if err != nil {
		return nil, frameerr.Wrap(frameerr.CategorySurfaceCreation, "build document evaluator", err)
	}

	emit := func(body string) {
		if cfg.OnRequest == nil {
			return
		}
		// The request sink dispatches on the caller's goroutine and may
		// block on the host context; never run it inside Update.
		go cfg.OnRequest(ipc.Request{
			Method:  "POST",
			URI:     "/api/call",
			Proto:   "HTTP/1.1",
			Headers: []ipc.Header{{Name: "Content-Type", Value: "text/plain"}},
			Body:    body,
		})
	}

	s := &Surface{
		log:       log,
		evaluator: eval,
		done:      make(chan struct{}),
	}
	s.program = tea.NewProgram(newModel(eval.doc.snapshot(), emit), tea.WithAltScreen())

	go func() {
		defer close(s.done)
		if _, err := s.program.Run(); err != nil {
			log.Error("terminal program failed", "error", err)
		}
		if cfg.OnCloseRequested != nil {
			cfg.OnCloseRequested()
		}
	}()

	return s, nil
}

// Evaluate runs the script against the document and repaints. Partial
// effects of a failing script are still rendered.
func (s *Surface) Evaluate(script string) error {
	snap, err := s.evaluator.run(script)
	s.program.Send(snapshotMsg(snap))
	if err != nil {
		return fmt.Errorf("evaluate script: %w", err)
	}
	return nil
}

// Close stops the tea program and waits for it to finish. Safe to call
// more than once and safe to call while the program is already quitting.
func (s *Surface) Close() error {
	s.closeOnce.Do(func() {
		s.program.Quit()
		<-s.done
	})
	return nil
}
