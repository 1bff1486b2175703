package ipc

import "github.com/pkg/errors"

// InMemTransport is a channel-backed Transport with the same capacities
// and would-block semantics as the message-queue transport. It serves
// tests and platforms without POSIX message queues; both endpoints share
// one instance.
type InMemTransport struct {
	data   chan []byte
	params chan []byte
	closed bool
}

// NewInMemTransport builds an in-memory transport with the standard queue
// capacities.
func NewInMemTransport() *InMemTransport {
	return &InMemTransport{
		data:   make(chan []byte, DataQueueCapacity),
		params: make(chan []byte, ParamsQueueCapacity),
	}
}

// SendData enqueues a telemetry message, failing with ErrWouldBlock when
// the queue is full.
func (t *InMemTransport) SendData(m DataMessage) error {
	if t.closed {
		return errors.New("ipc: transport closed")
	}
	select {
	case t.data <- MarshalData(m):
		return nil
	default:
		return ErrWouldBlock
	}
}

// ReceiveData pops a telemetry message, failing with ErrWouldBlock when
// the queue is empty.
func (t *InMemTransport) ReceiveData() (DataMessage, error) {
	select {
	case buf := <-t.data:
		return UnmarshalData(buf)
	default:
		return DataMessage{}, ErrWouldBlock
	}
}

// SendParams enqueues a parameter message, failing with ErrWouldBlock when
// the queue is full.
func (t *InMemTransport) SendParams(m ParamsMessage) error {
	if t.closed {
		return errors.New("ipc: transport closed")
	}
	select {
	case t.params <- MarshalParams(m):
		return nil
	default:
		return ErrWouldBlock
	}
}

// ReceiveParams pops a parameter message, failing with ErrWouldBlock when
// the queue is empty.
func (t *InMemTransport) ReceiveParams() (ParamsMessage, error) {
	select {
	case buf := <-t.params:
		return UnmarshalParams(buf)
	default:
		return ParamsMessage{}, ErrWouldBlock
	}
}

// Close marks the transport closed. Buffered messages stay readable.
func (t *InMemTransport) Close() error {
	t.closed = true
	return nil
}
