package host

import "sync"

// Context serializes entry into the scripting host. Hosts with a single
// global execution lock (an interpreter VM) hand the same Context to every
// caller that may run host code.
type Context struct {
	mu sync.Mutex
}

func NewContext() *Context {
	return &Context{}
}

// Do runs fn while holding the host execution context. The context is
// released on every exit path, including a panic inside fn.
func (c *Context) Do(fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return fn()
}
