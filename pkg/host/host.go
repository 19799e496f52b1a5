// Package host defines the boundary to the embedded scripting host: the
// callback capability invoked per IPC request, the execution context that
// serializes entry into the host, and the handles its tasks use to exchange
// messages with the rest of the process.
package host

// Callback is the scripting host's IPC handler capability: one serialized
// request in, an optional script out. A nil result means no instruction.
// The core assumes nothing about the callback beyond this contract.
type Callback interface {
	Invoke(payload string) (*string, error)
}

// CallbackFunc adapts a plain function to the Callback capability.
type CallbackFunc func(payload string) (*string, error)

func (f CallbackFunc) Invoke(payload string) (*string, error) {
	return f(payload)
}
