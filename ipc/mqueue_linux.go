//go:build linux

package ipc

import (
	"strings"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const queueMode = 0o644

// mqAttr mirrors the kernel's struct mq_attr.
type mqAttr struct {
	Flags   int64
	MaxMsg  int64
	MsgSize int64
	CurMsgs int64
	_       [4]int64
}

// MQTransport is the POSIX message-queue Transport used in production.
// Both queues are opened non-blocking; empty and full conditions surface
// as ErrWouldBlock.
type MQTransport struct {
	dataFD   int
	paramsFD int
}

// the kernel wants queue names without the leading slash glibc requires.
func kernelName(name string) (*byte, error) {
	return unix.BytePtrFromString(strings.TrimPrefix(name, "/"))
}

func mqOpen(name string, maxMsg int) (int, error) {
	namePtr, err := kernelName(name)
	if err != nil {
		return -1, err
	}
	attr := mqAttr{MaxMsg: int64(maxMsg), MsgSize: QueueMessageSize}
	fd, _, errno := unix.Syscall6(unix.SYS_MQ_OPEN,
		uintptr(unsafe.Pointer(namePtr)),
		uintptr(unix.O_CREAT|unix.O_RDWR|unix.O_NONBLOCK),
		uintptr(queueMode),
		uintptr(unsafe.Pointer(&attr)),
		0, 0)
	if errno != 0 {
		return -1, errors.Wrapf(errno, "mq_open %s", name)
	}
	return int(fd), nil
}

func mqSend(fd int, buf []byte, prio uint) error {
	_, _, errno := unix.Syscall6(unix.SYS_MQ_TIMEDSEND,
		uintptr(fd),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(len(buf)),
		uintptr(prio),
		0, 0)
	switch errno {
	case 0:
		return nil
	case unix.EAGAIN:
		return ErrWouldBlock
	default:
		return errors.Wrap(errno, "mq_send")
	}
}

func mqReceive(fd int, buf []byte) (int, error) {
	n, _, errno := unix.Syscall6(unix.SYS_MQ_TIMEDRECEIVE,
		uintptr(fd),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(len(buf)),
		0, // msg_prio not needed
		0, 0)
	switch errno {
	case 0:
		return int(n), nil
	case unix.EAGAIN:
		return 0, ErrWouldBlock
	default:
		return 0, errors.Wrap(errno, "mq_receive")
	}
}

// NewMQTransport opens (creating if absent) both queues from the
// simulator side. Failure here is an initialisation failure for the whole
// process.
func NewMQTransport() (*MQTransport, error) {
	dataFD, err := mqOpen(DataQueueName, DataQueueCapacity)
	if err != nil {
		return nil, err
	}
	paramsFD, err := mqOpen(ParamsQueueName, ParamsQueueCapacity)
	if err != nil {
		unix.Close(dataFD)
		return nil, err
	}
	return &MQTransport{dataFD: dataFD, paramsFD: paramsFD}, nil
}

// SendData publishes a telemetry message at data priority.
func (t *MQTransport) SendData(m DataMessage) error {
	return mqSend(t.dataFD, MarshalData(m), DataPriority)
}

// ReceiveData pops a telemetry message (GUI side of the contract).
func (t *MQTransport) ReceiveData() (DataMessage, error) {
	buf := make([]byte, QueueMessageSize)
	n, err := mqReceive(t.dataFD, buf)
	if err != nil {
		return DataMessage{}, err
	}
	return UnmarshalData(buf[:n])
}

// SendParams publishes a parameter message at parameter priority (GUI
// side of the contract).
func (t *MQTransport) SendParams(m ParamsMessage) error {
	return mqSend(t.paramsFD, MarshalParams(m), ParamsPriority)
}

// ReceiveParams pops a parameter message.
func (t *MQTransport) ReceiveParams() (ParamsMessage, error) {
	buf := make([]byte, QueueMessageSize)
	n, err := mqReceive(t.paramsFD, buf)
	if err != nil {
		return ParamsMessage{}, err
	}
	return UnmarshalParams(buf[:n])
}

// Close closes both queue descriptors. The queues themselves persist
// until unlinked.
func (t *MQTransport) Close() error {
	err1 := unix.Close(t.dataFD)
	err2 := unix.Close(t.paramsFD)
	if err1 != nil {
		return errors.Wrap(err1, "closing data queue")
	}
	return errors.Wrap(err2, "closing params queue")
}

// Unlink removes both queue names from the system. Call when the process
// pair is done with them.
func Unlink() error {
	for _, name := range []string{DataQueueName, ParamsQueueName} {
		namePtr, err := kernelName(name)
		if err != nil {
			return err
		}
		_, _, errno := unix.Syscall(unix.SYS_MQ_UNLINK, uintptr(unsafe.Pointer(namePtr)), 0, 0)
		if errno != 0 && errno != unix.ENOENT {
			return errors.Wrapf(errno, "mq_unlink %s", name)
		}
	}
	return nil
}
