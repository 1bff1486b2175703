// Package ipc carries the message contract between the simulator and the
// GUI process: a parameter message inbound over /mq_params_to_proc and a
// telemetry message outbound over /mq_data_to_gui, both packed
// little-endian with no implicit padding.
package ipc

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// Signal-type values carried in ParamsMessage. The runtime switch maps
// them to its three generators.
const (
	SignalStep = 0
	SignalPWM  = 1
	SignalSine = 2
)

// Wire sizes of the packed messages.
const (
	ParamsMessageSize = 37 // 4×f64 + u8 + u32
	DataMessageSize   = 57 // 7×f64 + u8
)

// ParamsMessage is the GUI → simulator parameter record.
type ParamsMessage struct {
	Kp         float64
	Ki         float64
	Kd         float64
	Setpoint   float64
	SignalType uint8
	Timestamp  uint32 // milliseconds since the sender's epoch
}

// DataMessage is the simulator → GUI telemetry record. NumValues is 3 in
// compact mode (ref, u, yk) or 6 in debug mode (plus e, ua, ykd).
type DataMessage struct {
	Values    [6]float64
	Timestamp float64 // seconds since transmitter start
	NumValues uint8
}

// MarshalParams packs a parameter message into its 37-byte wire form.
func MarshalParams(m ParamsMessage) []byte {
	buf := make([]byte, ParamsMessageSize)
	binary.LittleEndian.PutUint64(buf[0:], math.Float64bits(m.Kp))
	binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(m.Ki))
	binary.LittleEndian.PutUint64(buf[16:], math.Float64bits(m.Kd))
	binary.LittleEndian.PutUint64(buf[24:], math.Float64bits(m.Setpoint))
	buf[32] = m.SignalType
	binary.LittleEndian.PutUint32(buf[33:], m.Timestamp)
	return buf
}

// UnmarshalParams unpacks a parameter message from wire bytes.
func UnmarshalParams(buf []byte) (ParamsMessage, error) {
	if len(buf) < ParamsMessageSize {
		return ParamsMessage{}, errors.Errorf("params message too short: %d < %d bytes", len(buf), ParamsMessageSize)
	}
	return ParamsMessage{
		Kp:         math.Float64frombits(binary.LittleEndian.Uint64(buf[0:])),
		Ki:         math.Float64frombits(binary.LittleEndian.Uint64(buf[8:])),
		Kd:         math.Float64frombits(binary.LittleEndian.Uint64(buf[16:])),
		Setpoint:   math.Float64frombits(binary.LittleEndian.Uint64(buf[24:])),
		SignalType: buf[32],
		Timestamp:  binary.LittleEndian.Uint32(buf[33:]),
	}, nil
}

// MarshalData packs a telemetry message into its 57-byte wire form.
func MarshalData(m DataMessage) []byte {
	buf := make([]byte, DataMessageSize)
	for i, v := range m.Values {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	binary.LittleEndian.PutUint64(buf[48:], math.Float64bits(m.Timestamp))
	buf[56] = m.NumValues
	return buf
}

// UnmarshalData unpacks a telemetry message from wire bytes.
func UnmarshalData(buf []byte) (DataMessage, error) {
	if len(buf) < DataMessageSize {
		return DataMessage{}, errors.Errorf("data message too short: %d < %d bytes", len(buf), DataMessageSize)
	}
	var m DataMessage
	for i := range m.Values {
		m.Values[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	m.Timestamp = math.Float64frombits(binary.LittleEndian.Uint64(buf[48:]))
	m.NumValues = buf[56]
	if m.NumValues != 3 && m.NumValues != 6 {
		return DataMessage{}, errors.Errorf("data message carries invalid num_values %d", m.NumValues)
	}
	return m, nil
}
