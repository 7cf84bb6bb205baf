package modbus

import (
	"io"
	"net"
	"time"
)

// TCPStream is a StreamDevice over a Modbus-TCP connection. It has no
// notion of line rate: Baudrate always reports InvalidBaudrate, which
// steers Master.DetectBaud into its single-probe fallback.
type TCPStream struct {
	Addr string

	// Dial, when set, replaces the real net.Dial for testing. It defaults
	// to dialing Addr over tcp.
	Dial func(addr string) (net.Conn, error)

	conn net.Conn
}

// NewTCPStream returns a TCPStream that dials addr on first use.
func NewTCPStream(addr string) *TCPStream {
	return &TCPStream{Addr: addr, Dial: dialTCP}
}

func dialTCP(addr string) (net.Conn, error) {
	return net.Dial("tcp", addr)
}

func (s *TCPStream) ensureOpen() error {
	if s.conn != nil {
		return nil
	}
	if s.Dial == nil {
		s.Dial = dialTCP
	}
	log("dialing %s", s.Addr)
	conn, err := s.Dial(s.Addr)
	if err != nil {
		return &StreamDeviceFailure{Code: DeviceInternalError, Err: err}
	}
	log("%s connected", s.Addr)
	s.conn = conn
	return nil
}

func (s *TCPStream) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

func classifyTCPError(err error) error {
	if err == nil {
		return nil
	}
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return &StreamDeviceFailure{Code: DeviceTimeout, Err: err}
	}
	return &StreamDeviceFailure{Code: DeviceInternalError, Err: err}
}

// Read implements StreamDevice.
func (s *TCPStream) Read(dest []byte, timeoutMs uint32) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	_ = s.conn.SetReadDeadline(time.Now().Add(time.Duration(timeoutMs) * time.Millisecond))
	n, err := io.ReadFull(s.conn, dest)
	if err != nil {
		s.Close()
		return classifyTCPError(err)
	}
	debugLog("read %d byte(s) from %s", n, s.Addr)
	return nil
}

// Write implements StreamDevice.
func (s *TCPStream) Write(src []byte, timeoutMs uint32) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(time.Duration(timeoutMs) * time.Millisecond))
	n, err := s.conn.Write(src)
	if err != nil {
		s.Close()
		return classifyTCPError(err)
	}
	if n != len(src) {
		s.Close()
		return &StreamDeviceFailure{Code: DeviceInternalError, Err: io.ErrShortWrite}
	}
	return nil
}

// Baudrate always reports InvalidBaudrate: a TCP socket has no line rate.
func (s *TCPStream) Baudrate() uint32 { return InvalidBaudrate }

// SetBaudrate is a no-op: a TCP socket has no line rate to set.
func (s *TCPStream) SetBaudrate(uint32) {}

// Flush is a no-op for a TCP socket; there is no local serial buffer to
// drain.
func (s *TCPStream) Flush() error { return nil }
