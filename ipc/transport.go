package ipc

import "github.com/pkg/errors"

// Queue names and attributes shared with the GUI process. The names are
// system-global POSIX identifiers.
const (
	DataQueueName   = "/mq_data_to_gui"
	ParamsQueueName = "/mq_params_to_proc"

	DataQueueCapacity   = 10
	ParamsQueueCapacity = 5
	QueueMessageSize    = 64

	DataPriority   = 0
	ParamsPriority = 10
)

// ErrWouldBlock reports an empty queue on receive or a full queue on send.
// Both are expected conditions: telemetry is best-effort and parameter
// polls usually find nothing.
var ErrWouldBlock = errors.New("ipc: operation would block")

// Transport moves packed messages between the simulator and the GUI
// process. All operations are non-blocking.
type Transport interface {
	// SendData publishes a telemetry message toward the GUI.
	SendData(m DataMessage) error
	// ReceiveData pops a telemetry message (GUI side).
	ReceiveData() (DataMessage, error)
	// SendParams publishes a parameter message toward the simulator
	// (GUI side).
	SendParams(m ParamsMessage) error
	// ReceiveParams pops a parameter message.
	ReceiveParams() (ParamsMessage, error)
	// Close releases the transport's resources.
	Close() error
}
