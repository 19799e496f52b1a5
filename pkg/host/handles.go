package host

import "webframe/pkg/fabric"

// SenderHandle is the thin, thread-safe wrapper through which host tasks
// send messages toward the background consumer. Send is fire-and-forget;
// it reports failure only when the consuming side is gone.
type SenderHandle struct {
	tx fabric.Sender[fabric.Message]
}

func NewSenderHandle(tx fabric.Sender[fabric.Message]) *SenderHandle {
	return &SenderHandle{tx: tx}
}

func (h *SenderHandle) Send(msg fabric.Message) error {
	return h.tx.Send(msg)
}

// ReceiverHandle is the wrapper through which host tasks receive messages
// from the native/background side.
type ReceiverHandle struct {
	rx fabric.Receiver[fabric.Message]
}

func NewReceiverHandle(rx fabric.Receiver[fabric.Message]) *ReceiverHandle {
	return &ReceiverHandle{rx: rx}
}

// Poll returns the next message without blocking, or false when none is
// queued.
func (h *ReceiverHandle) Poll() (fabric.Message, bool) {
	return h.rx.Poll()
}

// Recv blocks the calling goroutine until a message arrives. It returns
// false once the channel has been torn down.
func (h *ReceiverHandle) Recv() (fabric.Message, bool) {
	return h.rx.Recv()
}
