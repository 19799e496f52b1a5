package surface

import "webframe/pkg/ipc"

// Surface is the render surface boundary. The implementation behind it
// (terminal program, embedded webview) is owned exclusively by the native
// loop goroutine once the loop starts; nothing else may call Evaluate.
type Surface interface {
	// Evaluate runs a script against the surface's document.
	Evaluate(script string) error
	// Close releases the surface. Called once, by the loop, on exit.
	Close() error
}

// RequestSink accepts one inbound renderer request. Implementations are
// invoked on an unspecified goroutine, never the surface's render goroutine.
type RequestSink func(ipc.Request)

// Config carries everything a surface needs from its embedder.
type Config struct {
	Title          string
	InitialContent string

	// OnRequest receives IPC requests originated by the surface.
	OnRequest RequestSink
	// OnCloseRequested fires when the surface asks to shut the frame down
	// (window close). The embedder routes it to the native loop.
	OnCloseRequested func()
}

// Factory constructs a surface for one frame.
type Factory func(Config) (Surface, error)
