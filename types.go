// Package modbus is a client-side driver for the Modbus protocol, over
// both RTU (serial) and TCP-framed transports.
package modbus

// RegisterType identifies one of the four addressable register banks a
// slave device exposes.
type RegisterType int

const (
	Coil RegisterType = iota
	DiscreteInput
	AnalogInput
	Holding
)

func (r RegisterType) String() string {
	switch r {
	case Coil:
		return "Coil"
	case DiscreteInput:
		return "DiscreteInput"
	case AnalogInput:
		return "AnalogInput"
	case Holding:
		return "Holding"
	default:
		return "Unknown"
	}
}

// MaxModbusRegisters is the protocol's per-request register-count limit.
const MaxModbusRegisters = 125

// ByteOrder selects which byte of a register a single-byte value is packed
// into or extracted from.
type ByteOrder int

const (
	MSB ByteOrder = iota
	LSB
)
