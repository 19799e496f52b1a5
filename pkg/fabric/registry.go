package fabric

import "sync"

// Well-known channel keys for the two bridge directions.
const (
	KeyHostToBackground = "host_to_background"
	KeyBackgroundToHost = "background_to_host"
)

type channelEntry struct {
	sender        Sender[Message]
	receiver      Receiver[Message]
	receiverTaken bool
}

// Registry holds the bridge's channel pairs. Channels are constructed lazily
// on first access and live until Close; the receiver end of each channel is
// handed out at most once.
//
// A Registry is an explicit context object: callers share one instance
// instead of relying on package-global state.
type Registry struct {
	mu       sync.Mutex
	channels map[string]*channelEntry
	closed   bool
}

func NewRegistry() *Registry {
	return &Registry{channels: make(map[string]*channelEntry)}
}

func (r *Registry) entry(key string) *channelEntry {
	if existing, ok := r.channels[key]; ok {
		return existing
	}

	tx, rx := NewPipe[Message]()
	created := &channelEntry{sender: tx, receiver: rx}
	// A closed registry is terminal: channels created after Close are born
	// closed, so sends fail and receives report closure immediately.
	if r.closed {
		created.receiver.Close()
	}
	r.channels[key] = created
	return created
}

// Sender returns a sender end for the named channel, creating the channel on
// first use. The result may be cloned and distributed to any number of
// producers.
func (r *Registry) Sender(key string) Sender[Message] {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.entry(key).sender
}

// TakeReceiver yields the receiver end of the named channel exactly once.
// Later calls return false, which callers treat as "consumer already
// running" rather than as a failure.
func (r *Registry) TakeReceiver(key string) (Receiver[Message], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := r.entry(key)
	if entry.receiverTaken {
		return Receiver[Message]{}, false
	}

	entry.receiverTaken = true
	return entry.receiver, true
}

// Close tears down every channel in the registry and marks it terminal.
// Pending receives wake up, subsequent sends fail, and channels requested
// after Close are created already closed.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	for _, entry := range r.channels {
		entry.receiver.Close()
	}
}

// Depth reports the queued item count for the named channel without
// creating it.
func (r *Registry) Depth(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.channels[key]
	if !ok {
		return 0
	}

	return entry.receiver.Depth()
}
