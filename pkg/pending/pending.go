// Package pending correlates host-side calls with replies arriving over the
// fabric. Calls travel as [id, method, args] arrays and replies as
// [id, code, msg, result]; ids wrap in a small fixed range so a stuck peer
// cannot grow state without bound.
package pending

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// maxID is exclusive: ids occupy 0..254 and wrap.
const maxID = 255

// Call is one outbound request to the native side.
type Call struct {
	ID     int
	Method string
	Args   []any
}

// MarshalJSON encodes the call in its array wire form.
func (c Call) MarshalJSON() ([]byte, error) {
	args := c.Args
	if args == nil {
		args = []any{}
	}

	return json.Marshal([]any{c.ID, c.Method, args})
}

// Reply is one inbound response. A non-zero code signals failure.
type Reply struct {
	ID     int
	Code   int
	Msg    string
	Result any
}

// UnmarshalJSON decodes the [id, code, msg, result] array form, rejecting
// any other arity.
func (r *Reply) UnmarshalJSON(raw []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return fmt.Errorf("reply is not an array: %w", err)
	}
	if len(parts) != 4 {
		return fmt.Errorf("reply has %d elements, want 4", len(parts))
	}

	if err := json.Unmarshal(parts[0], &r.ID); err != nil {
		return fmt.Errorf("reply id: %w", err)
	}
	if err := json.Unmarshal(parts[1], &r.Code); err != nil {
		return fmt.Errorf("reply code: %w", err)
	}
	if err := json.Unmarshal(parts[2], &r.Msg); err != nil {
		return fmt.Errorf("reply msg: %w", err)
	}
	if err := json.Unmarshal(parts[3], &r.Result); err != nil {
		return fmt.Errorf("reply result: %w", err)
	}

	return nil
}

// APIError is a failure reported by the reply's code and message.
type APIError struct {
	Code int
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("[API-%d] %s", e.Code, e.Msg)
}

// Err converts a reply into an error when its code is non-zero.
func (r Reply) Err() error {
	if r.Code == 0 {
		return nil
	}

	return &APIError{Code: r.Code, Msg: r.Msg}
}

// Registry tracks in-flight calls awaiting replies.
type Registry struct {
	mu      sync.Mutex
	pending map[int]chan Reply
	next    int
}

func NewRegistry() *Registry {
	return &Registry{pending: make(map[int]chan Reply)}
}

// Next reserves a request id and returns the channel its reply will arrive
// on. It fails when every id is in flight.
func (r *Registry) Next() (int, <-chan Reply, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.pending) >= maxID {
		return 0, nil, errors.New("all request ids are in flight")
	}

	for {
		id := r.next
		r.next = (r.next + 1) % maxID
		if _, busy := r.pending[id]; busy {
			continue
		}

		ch := make(chan Reply, 1)
		r.pending[id] = ch
		return id, ch, nil
	}
}

// Resolve completes the pending call the reply addresses. It reports false
// for unknown or already-resolved ids.
func (r *Registry) Resolve(reply Reply) bool {
	r.mu.Lock()
	ch, ok := r.pending[reply.ID]
	if ok {
		delete(r.pending, reply.ID)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}

	ch <- reply
	return true
}

// Drop abandons a pending call, freeing its id without resolving it.
func (r *Registry) Drop(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.pending, id)
}

// InFlight reports how many calls await replies.
func (r *Registry) InFlight() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.pending)
}
