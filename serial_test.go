package modbus_test

import (
	"io"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/dlz-automation/modbus"
)

// fakePort is a minimal io.ReadWriteCloser standing in for an opened UART.
type fakePort struct {
	readData []byte
	readErr  error
	writeErr error
	writes   [][]byte
	closed   bool
}

func (p *fakePort) Read(b []byte) (int, error) {
	if p.readErr != nil {
		return 0, p.readErr
	}
	n := copy(b, p.readData)
	p.readData = p.readData[n:]
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (p *fakePort) Write(b []byte) (int, error) {
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	p.writes = append(p.writes, cp)
	return len(b), nil
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

var _ = Describe("SerialPort", func() {
	var (
		port *fakePort
		sp   *SerialPort
	)

	BeforeEach(func() {
		port = &fakePort{}
		sp = NewSerialPort("/dev/ttyFAKE", 9600, NoParity)
		sp.Open = func(dev string, baudrate int, parity Parity) (io.ReadWriteCloser, error) {
			return port, nil
		}
	})

	It("opens lazily on first write", func() {
		Expect(sp.Write([]byte{0x01, 0x02}, 100)).To(Succeed())
		Expect(port.writes).To(Equal([][]byte{{0x01, 0x02}}))
	})

	It("reads the requested number of bytes", func() {
		port.readData = []byte{0xAA, 0xBB, 0xCC}
		dest := make([]byte, 3)
		Expect(sp.Read(dest, 100)).To(Succeed())
		Expect(dest).To(Equal([]byte{0xAA, 0xBB, 0xCC}))
	})

	It("closes and reopens the port on a baud-rate change", func() {
		Expect(sp.Write([]byte{0x01}, 100)).To(Succeed())
		Expect(port.closed).To(BeFalse())

		sp.SetBaudrate(19200)
		Expect(port.closed).To(BeTrue())
		Expect(sp.Baudrate()).To(Equal(uint32(19200)))
	})

	It("is a no-op when set to the current baud rate", func() {
		Expect(sp.Write([]byte{0x01}, 100)).To(Succeed())
		sp.SetBaudrate(9600)
		Expect(port.closed).To(BeFalse())
	})

	It("classifies a write error as a stream device failure", func() {
		port.writeErr = io.ErrClosedPipe
		err := sp.Write([]byte{0x01}, 100)
		var failure *StreamDeviceFailure
		Expect(err).To(BeAssignableToTypeOf(failure))
	})

	It("classifies EOF as a timeout", func() {
		port.readErr = io.EOF
		err := sp.Read(make([]byte, 1), 100)
		sdf, ok := err.(*StreamDeviceFailure)
		Expect(ok).To(BeTrue())
		Expect(sdf.Timeout()).To(BeTrue())
	})

	It("opens a fresh port after a failed read closes it", func() {
		port.readErr = io.EOF
		Expect(sp.Read(make([]byte, 1), 100)).To(HaveOccurred())
		Expect(port.closed).To(BeTrue())

		reopened := &fakePort{readData: []byte{0x7F}}
		sp.Open = func(dev string, baudrate int, parity Parity) (io.ReadWriteCloser, error) {
			return reopened, nil
		}
		Expect(sp.Read(make([]byte, 1), 100)).To(Succeed())
	})

	It("rejects an invalid parity before dialing", func() {
		sp.Parity = EvenParity + 1
		err := sp.Write([]byte{0x01}, 100)
		var argErr *ArgumentError
		Expect(err).To(BeAssignableToTypeOf(argErr))
		Expect(port.writes).To(BeEmpty())
	})
})
