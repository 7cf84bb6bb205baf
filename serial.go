package modbus

import (
	"io"

	"github.com/albenik/go-serial/v2"
)

const defaultSerialBaudrate = 9600

// OpenErr wraps an underlying open failure with the device path that
// failed to open.
type OpenErr struct {
	Dev string
	Err error
}

func (e OpenErr) Error() string { return e.Err.Error() + " while opening " + e.Dev }

func (e OpenErr) Unwrap() error { return e.Err }

// SerialPort is a StreamDevice over a UART, opened on demand on first use
// and reopened after a failure. Baudrate changes close and reopen the
// underlying port, since go-serial does not support changing the rate of
// an already-open port.
type SerialPort struct {
	Dev      string
	Parity   Parity
	baudrate int

	// Open, when set, replaces the real go-serial dial for testing. It
	// defaults to opening Dev through go-serial.
	Open func(dev string, baudrate int, parity Parity) (io.ReadWriteCloser, error)

	port io.ReadWriteCloser
}

// NewSerialPort returns a SerialPort for dev at the given initial baud
// rate and parity.
func NewSerialPort(dev string, baudrate int, parity Parity) *SerialPort {
	if baudrate <= 0 {
		baudrate = defaultSerialBaudrate
	}
	return &SerialPort{Dev: dev, Parity: parity, baudrate: baudrate, Open: openGoSerial}
}

func openGoSerial(dev string, baudrate int, parity Parity) (io.ReadWriteCloser, error) {
	return serial.Open(dev,
		serial.WithBaudrate(baudrate),
		serial.WithParity(serial.Parity(parity)),
		serial.WithReadTimeout(0),
		serial.WithWriteTimeout(0))
}

func (p *SerialPort) open() error {
	if p.Dev == "" {
		panic("empty SerialPort.Dev")
	}
	if !p.Parity.IsValid() {
		return &ArgumentError{Msg: "invalid parity: " + p.Parity.String()}
	}
	if p.Open == nil {
		p.Open = openGoSerial
	}
	log("opening %s", p.Dev)
	port, err := p.Open(p.Dev, p.baudrate, p.Parity)
	if err != nil {
		return OpenErr{p.Dev, err}
	}
	log("%s opened at %d baud", p.Dev, p.baudrate)
	p.port = port
	return nil
}

func (p *SerialPort) ensureOpen() error {
	if p.port != nil {
		return nil
	}
	return p.open()
}

func (p *SerialPort) Close() error {
	if p.port == nil {
		return nil
	}
	err := p.port.Close()
	p.port = nil
	return err
}

func classifySerialError(err error) error {
	if err == nil {
		return nil
	}
	if err == io.EOF {
		return &StreamDeviceFailure{Code: DeviceTimeout, Err: err}
	}
	return &StreamDeviceFailure{Code: DeviceInternalError, Err: err}
}

// Read implements StreamDevice. timeoutMs is applied per read via the
// underlying port's read-timeout setter, since go-serial has no per-call
// deadline.
func (p *SerialPort) Read(dest []byte, timeoutMs uint32) error {
	if err := p.ensureOpen(); err != nil {
		return err
	}
	if sp, ok := p.port.(*serial.Port); ok {
		_ = sp.SetReadTimeout(int(timeoutMs))
	}
	n, err := io.ReadFull(p.port, dest)
	if err != nil {
		p.Close()
		return classifySerialError(err)
	}
	debugLog("read %d byte(s) from %s", n, p.Dev)
	return nil
}

// Write implements StreamDevice.
func (p *SerialPort) Write(src []byte, timeoutMs uint32) error {
	if err := p.ensureOpen(); err != nil {
		return err
	}
	if sp, ok := p.port.(*serial.Port); ok {
		_ = sp.SetWriteTimeout(int(timeoutMs))
	}
	n, err := p.port.Write(src)
	if err != nil {
		p.Close()
		return classifySerialError(err)
	}
	if n != len(src) {
		p.Close()
		return &StreamDeviceFailure{Code: DeviceInternalError, Err: io.ErrShortWrite}
	}
	return nil
}

// Baudrate returns the configured line rate.
func (p *SerialPort) Baudrate() uint32 { return uint32(p.baudrate) }

// SetBaudrate reopens the port at the new rate, if it differs.
func (p *SerialPort) SetBaudrate(baudrate uint32) {
	if baudrate == 0 || int(baudrate) == p.baudrate {
		return
	}
	p.baudrate = int(baudrate)
	p.Close()
}

// Flush drains any buffered output on the open port.
func (p *SerialPort) Flush() error {
	if p.port == nil {
		return nil
	}
	if sp, ok := p.port.(*serial.Port); ok {
		return sp.Drain()
	}
	return nil
}
