package modbus_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/dlz-automation/modbus"
)

var _ = Describe("Frame", func() {
	Context("RTU hex vectors", func() {
		It("parses a ReadCoils request", func() {
			frame := FromRawRTUData([]byte{0x04, 0x01, 0x00, 0x0A, 0x00, 0x0D, 0xDD, 0x98}, true)
			Expect(frame.SlaveID()).To(Equal(uint8(4)))
			Expect(frame.FunctionCode()).To(Equal(ReadCoils))
			Expect(frame.StartAddress()).To(Equal(uint16(10)))
			Expect(frame.RegisterCount()).To(Equal(uint16(13)))
			Expect(frame.ValidateRTU()).To(Equal(ValidationOK))
		})

		It("parses a ReadCoils response", func() {
			frame := FromRawRTUData([]byte{0x04, 0x01, 0x02, 0x0A, 0x11, 0xB3, 0x50}, false)
			Expect(frame.FunctionCode()).To(Equal(ReadCoils))
			Expect(frame.ByteCount()).To(Equal(uint16(2)))
			Expect(frame.RegistersData()).To(Equal([]byte{0x0A, 0x11}))
			Expect(frame.ValidateRTU()).To(Equal(ValidationOK))
		})

		It("parses a ReadInputRegisters request", func() {
			frame := FromRawRTUData([]byte{0x01, 0x04, 0x00, 0x00, 0x00, 0x02, 0x71, 0xCB}, true)
			Expect(frame.SlaveID()).To(Equal(uint8(1)))
			Expect(frame.FunctionCode()).To(Equal(ReadInputRegisters))
			Expect(frame.StartAddress()).To(Equal(uint16(0)))
			Expect(frame.RegisterCount()).To(Equal(uint16(2)))
			Expect(frame.ValidateRTU()).To(Equal(ValidationOK))
		})

		It("parses a ReadInputRegisters response", func() {
			frame := FromRawRTUData([]byte{0x01, 0x04, 0x04, 0x00, 0x06, 0x00, 0x05, 0xDB, 0x86}, false)
			Expect(frame.ByteCount()).To(Equal(uint16(4)))
			Expect(frame.RegistersData()).To(Equal([]byte{0x00, 0x06, 0x00, 0x05}))
			Expect(frame.ValidateRTU()).To(Equal(ValidationOK))
		})

		It("parses a ReadHoldingRegisters request", func() {
			frame := FromRawRTUData([]byte{0x01, 0x03, 0x00, 0x00, 0x00, 0x02, 0xC4, 0x0B}, true)
			Expect(frame.FunctionCode()).To(Equal(ReadHoldingRegisters))
			Expect(frame.StartAddress()).To(Equal(uint16(0)))
			Expect(frame.RegisterCount()).To(Equal(uint16(2)))
			Expect(frame.ValidateRTU()).To(Equal(ValidationOK))
		})

		It("parses a ReadHoldingRegisters response", func() {
			frame := FromRawRTUData([]byte{0x01, 0x03, 0x04, 0x00, 0x06, 0x00, 0x05, 0xDA, 0x31}, false)
			Expect(frame.ByteCount()).To(Equal(uint16(4)))
			Expect(frame.RegistersData()).To(Equal([]byte{0x00, 0x06, 0x00, 0x05}))
			Expect(frame.ValidateRTU()).To(Equal(ValidationOK))
		})
	})

	Context("build round-trip", func() {
		It("round-trips every supported function code through build and validate", func() {
			cases := []struct {
				fc    FunctionCode
				start uint16
				count uint16
			}{
				{ReadCoils, 10, 13},
				{ReadDiscreteInputs, 0, 8},
				{ReadHoldingRegisters, 0, 2},
				{ReadInputRegisters, 0, 2},
				{WriteSingleCoil, 5, 1},
				{WriteSingleRegister, 5, 1},
			}
			for _, c := range cases {
				frame := Build(true, 1, c.fc, c.start, c.count, []uint16{0xFF00}, 0)
				Expect(frame.ValidateRTU()).To(Equal(ValidationOK))
				Expect(frame.RtuLength()).To(Equal(frame.MbapLength() + 2))
				Expect(frame.PduLength()).To(Equal(frame.MbapLength() - 1))
			}
		})

		It("round-trips WriteMultipleRegisters", func() {
			frame := Build(true, 1, WriteMultipleRegisters, 0, 2, []uint16{0x1234, 0x5678}, 0)
			Expect(frame.ValidateRTU()).To(Equal(ValidationOK))
			Expect(frame.RtuLength()).To(Equal(frame.MbapLength() + 2))
		})
	})

	Context("exception round-trip", func() {
		It("flags the exception bit and preserves the function and exception codes", func() {
			frame := BuildExceptionResponse(7, ReadHoldingRegisters, IllegalDataAddress, 0)
			Expect(frame.IsException()).To(BeTrue())
			Expect(frame.FunctionCode()).To(Equal(ReadHoldingRegisters))
			Expect(frame.ExceptionCode()).To(Equal(IllegalDataAddress))
			Expect(frame.ValidateRTU()).To(Equal(ValidationOK))
		})
	})

	Context("transmission time", func() {
		It("rounds up a fractional byte-time", func() {
			Expect(TransmissionTimeMs(8, 9600)).To(Equal(9))
		})

		It("is zero for an invalid rate", func() {
			Expect(TransmissionTimeMs(8, 0)).To(Equal(0))
		})
	})

	Context("validation", func() {
		It("rejects a non-zero protocol id over TCP", func() {
			frame := Build(true, 1, ReadHoldingRegisters, 0, 1, nil, 0)
			frame.SetProtocolID(1)
			Expect(frame.ValidateTCP()).To(Equal(ValidationProtocolIdentifier))
		})

		It("rejects a corrupted CRC", func() {
			frame := Build(true, 1, ReadHoldingRegisters, 0, 1, nil, 0)
			rtu := frame.RtuFrame()
			rtu[len(rtu)-1] ^= 0xFF
			Expect(frame.ValidateRTU()).To(Equal(ValidationInvalidCRC))
		})
	})

	Context("register-values codec", func() {
		It("maps set and clear bits to 0xFF00 and 0x0000", func() {
			frame := FromRawRTUData([]byte{0x04, 0x01, 0x01, 0b00000101, 0x00, 0x00}, false)
			values := frame.RegistersValues()
			Expect(values[0]).To(Equal(uint16(0xFF00)))
			Expect(values[1]).To(Equal(uint16(0x0000)))
			Expect(values[2]).To(Equal(uint16(0xFF00)))
		})
	})
})
