package modbus

import "fmt"

// InvalidFrameCause is the structural reason a received frame failed
// validation.
type InvalidFrameCause int

const (
	CauseUnknown InvalidFrameCause = iota
	CauseProtocolIdentifier
	CauseMbapHeaderLengthInvalid
	CauseInvalidCrc
	CauseTransactionID
	CauseInvalidFunctionCode
)

func (c InvalidFrameCause) String() string {
	switch c {
	case CauseProtocolIdentifier:
		return "ProtocolIdentifier"
	case CauseMbapHeaderLengthInvalid:
		return "MbapHeaderLengthInvalid"
	case CauseInvalidCrc:
		return "InvalidCrc"
	case CauseTransactionID:
		return "TransactionId"
	case CauseInvalidFunctionCode:
		return "InvalidFunctionCode"
	default:
		return "Unknown"
	}
}

// ModbusException wraps a slave's declared exception code, returned when a
// response frame has the exception bit set on its function code.
type ModbusException struct {
	Code ExceptionCode
}

func (e *ModbusException) Error() string {
	return fmt.Sprintf("modbus exception code %d (%s)", byte(e.Code), e.Code)
}

// InvalidFrame is returned when a received frame fails RTU or TCP
// validation.
type InvalidFrame struct {
	Cause InvalidFrameCause
}

func (e *InvalidFrame) Error() string {
	return "invalid frame: " + e.Cause.String()
}

// DeviceErrorCode mirrors the stream device contract's error taxonomy
// (§6 External Interfaces).
type DeviceErrorCode int

const (
	DeviceSuccess DeviceErrorCode = iota
	DeviceTimeout
	DeviceReadyTimeout
	DeviceInternalError
	DeviceBusy
	DeviceBufferTooSmall
	DeviceInvalidArgument
	DeviceUnknown
)

func (c DeviceErrorCode) String() string {
	switch c {
	case DeviceSuccess:
		return "SUCCESS"
	case DeviceTimeout:
		return "TIMEOUT"
	case DeviceReadyTimeout:
		return "READY_TIMEOUT"
	case DeviceInternalError:
		return "INTERNAL_ERROR"
	case DeviceBusy:
		return "BUSY"
	case DeviceBufferTooSmall:
		return "BUFFER_TOO_SMALL"
	case DeviceInvalidArgument:
		return "INVALID_ARGUMENT"
	default:
		return "UNKNOWN_ERROR"
	}
}

// StreamDeviceFailure wraps a transport-level failure reported by the
// underlying StreamDevice.
type StreamDeviceFailure struct {
	Code DeviceErrorCode
	Err  error
}

func (e *StreamDeviceFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("stream device failure (%s): %s", e.Code, e.Err)
	}
	return fmt.Sprintf("stream device failure (%s)", e.Code)
}

func (e *StreamDeviceFailure) Unwrap() error { return e.Err }

// Timeout reports whether the failure was a read/write timeout, so callers
// can distinguish it from other transport failures per spec §7.
func (e *StreamDeviceFailure) Timeout() bool {
	return e.Code == DeviceTimeout || e.Code == DeviceReadyTimeout
}

// ResponseTimeout is returned when send_receive's read deadline elapses
// without a valid frame arriving.
type ResponseTimeout struct{}

func (e *ResponseTimeout) Error() string { return "response timeout" }

// ArgumentError reports an invalid call-site argument: an unknown register
// type, a write to a read-only register class, or an out-of-range tag
// address — distinct from wire-level errors per spec §7.
type ArgumentError struct {
	Msg string
}

func (e *ArgumentError) Error() string { return e.Msg }

// ErrBufferTooSmall is returned by the byte/register codec when a source
// span is longer than its destination, or a destination span is too short
// to hold the requested read (spec §4.1).
var ErrBufferTooSmall = &ArgumentError{Msg: "buffer too small"}

// ErrOddLength is returned by BytesToRegisters when asked to encode an odd
// number of bytes: the reference implementation silently
// drops the trailing byte (spec §9 open question 2); this module rejects
// it instead.
var ErrOddLength = &ArgumentError{Msg: "odd byte length for register-pair codec"}

// ErrOutOfRange is returned by RegisterBufferView when a Modbus address
// falls outside the view's addressable span (spec §4.4).
var ErrOutOfRange = &ArgumentError{Msg: "modbus address out of range"}
