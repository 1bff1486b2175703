//go:build !linux

package ipc

import "github.com/pkg/errors"

// MQTransport is only available on linux.
type MQTransport struct{}

// NewMQTransport fails on platforms without POSIX message queues.
func NewMQTransport() (*MQTransport, error) {
	return nil, errors.New("ipc: POSIX message queues unsupported on this platform")
}

// SendData is unavailable on this platform.
func (t *MQTransport) SendData(DataMessage) error { return errors.New("ipc: unsupported") }

// ReceiveData is unavailable on this platform.
func (t *MQTransport) ReceiveData() (DataMessage, error) {
	return DataMessage{}, errors.New("ipc: unsupported")
}

// SendParams is unavailable on this platform.
func (t *MQTransport) SendParams(ParamsMessage) error { return errors.New("ipc: unsupported") }

// ReceiveParams is unavailable on this platform.
func (t *MQTransport) ReceiveParams() (ParamsMessage, error) {
	return ParamsMessage{}, errors.New("ipc: unsupported")
}

// Close is unavailable on this platform.
func (t *MQTransport) Close() error { return nil }

// Unlink is unavailable on this platform.
func Unlink() error { return nil }
