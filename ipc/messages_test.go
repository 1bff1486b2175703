package ipc

import (
	"testing"

	"go.viam.com/test"
)

func TestParamsRoundTrip(t *testing.T) {
	in := ParamsMessage{
		Kp:         1.25,
		Ki:         -0.5,
		Kd:         0.001,
		Setpoint:   3.75,
		SignalType: SignalSine,
		Timestamp:  123456789,
	}
	buf := MarshalParams(in)
	test.That(t, len(buf), test.ShouldEqual, ParamsMessageSize)

	out, err := UnmarshalParams(buf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldResemble, in)
}

func TestParamsTooShort(t *testing.T) {
	_, err := UnmarshalParams(make([]byte, ParamsMessageSize-1))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "too short")
}

func TestDataRoundTrip(t *testing.T) {
	for _, numValues := range []uint8{3, 6} {
		in := DataMessage{
			Values:    [6]float64{0.5, -1, 42, 1e-9, -1e9, 3.14159},
			Timestamp: 12.625,
			NumValues: numValues,
		}
		buf := MarshalData(in)
		test.That(t, len(buf), test.ShouldEqual, DataMessageSize)

		out, err := UnmarshalData(buf)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out, test.ShouldResemble, in)
	}
}

func TestDataInvalidNumValues(t *testing.T) {
	in := DataMessage{NumValues: 4}
	_, err := UnmarshalData(MarshalData(in))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "num_values")

	_, err = UnmarshalData(make([]byte, DataMessageSize-1))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestInMemTransportWouldBlock(t *testing.T) {
	tr := NewInMemTransport()

	_, err := tr.ReceiveParams()
	test.That(t, err, test.ShouldBeError, ErrWouldBlock)
	_, err = tr.ReceiveData()
	test.That(t, err, test.ShouldBeError, ErrWouldBlock)

	// fill the params queue to capacity
	for i := 0; i < ParamsQueueCapacity; i++ {
		test.That(t, tr.SendParams(ParamsMessage{Kp: float64(i)}), test.ShouldBeNil)
	}
	err = tr.SendParams(ParamsMessage{})
	test.That(t, err, test.ShouldBeError, ErrWouldBlock)

	// FIFO order out
	for i := 0; i < ParamsQueueCapacity; i++ {
		m, err := tr.ReceiveParams()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, m.Kp, test.ShouldEqual, float64(i))
	}
}

func TestInMemTransportDataPath(t *testing.T) {
	tr := NewInMemTransport()

	in := DataMessage{Timestamp: 1.5, NumValues: 3}
	in.Values[0] = 0.25
	test.That(t, tr.SendData(in), test.ShouldBeNil)

	out, err := tr.ReceiveData()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldResemble, in)

	test.That(t, tr.Close(), test.ShouldBeNil)
	test.That(t, tr.SendData(in), test.ShouldNotBeNil)
}
