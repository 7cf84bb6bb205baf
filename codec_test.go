package modbus_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/dlz-automation/modbus"
)

var _ = Describe("register codec", func() {
	Context("Uint16", func() {
		It("round-trips a single register", func() {
			regs := make([]uint16, 1)
			Expect(Uint16ToRegisters(regs, 0xBEEF)).To(Succeed())
			v, err := Uint16FromRegisters(regs)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(uint16(0xBEEF)))
		})

		It("rejects an empty buffer", func() {
			_, err := Uint16FromRegisters(nil)
			Expect(err).To(Equal(ErrBufferTooSmall))
		})
	})

	Context("Uint32", func() {
		It("packs high word first", func() {
			regs := make([]uint16, 2)
			Expect(Uint32ToRegisters(regs, 0x12345678)).To(Succeed())
			Expect(regs).To(Equal([]uint16{0x1234, 0x5678}))
		})

		It("round-trips", func() {
			regs := []uint16{0x1234, 0x5678}
			v, err := Uint32FromRegisters(regs)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(uint32(0x12345678)))
		})

		It("rejects a buffer with only one register", func() {
			_, err := Uint32FromRegisters([]uint16{0x1234})
			Expect(err).To(Equal(ErrBufferTooSmall))
		})
	})

	Context("Float32", func() {
		It("round-trips through the IEEE-754 bit pattern", func() {
			regs := make([]uint16, 2)
			Expect(Float32ToRegisters(regs, 3.14)).To(Succeed())
			v, err := Float32FromRegisters(regs)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(BeNumerically("~", 3.14, 0.0001))
		})
	})

	Context("Uint8", func() {
		It("reads the high byte for MSB and preserves the low byte on write", func() {
			regs := []uint16{0x1234}
			v, err := Uint8FromRegisters(regs, MSB)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(uint8(0x12)))

			Expect(Uint8ToRegisters(regs, 0xAB, MSB)).To(Succeed())
			Expect(regs[0]).To(Equal(uint16(0xAB34)))
		})

		It("reads the low byte for LSB and preserves the high byte on write", func() {
			regs := []uint16{0x1234}
			v, err := Uint8FromRegisters(regs, LSB)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(uint8(0x34)))

			Expect(Uint8ToRegisters(regs, 0xAB, LSB)).To(Succeed())
			Expect(regs[0]).To(Equal(uint16(0x12AB)))
		})
	})

	Context("String", func() {
		It("encodes high-byte-then-low-byte pairs, zero-padded", func() {
			regs := make([]uint16, 2)
			Expect(StringToRegisters(regs, "ABC")).To(Succeed())
			Expect(regs).To(Equal([]uint16{0x4142, 0x4300}))
		})

		It("decodes and stops at the first null byte", func() {
			regs := []uint16{0x4142, 0x4300}
			Expect(StringFromRegisters(regs)).To(Equal("ABC"))
		})

		It("rejects a string that does not fit", func() {
			regs := make([]uint16, 1)
			Expect(StringToRegisters(regs, "ABC")).To(Equal(ErrBufferTooSmall))
		})
	})

	Context("Bytes", func() {
		It("encodes and decodes without null termination", func() {
			regs := make([]uint16, 2)
			Expect(BytesToRegisters(regs, []byte{0x00, 0x01, 0xFF, 0xFE})).To(Succeed())
			Expect(regs).To(Equal([]uint16{0x0001, 0xFFFE}))
			Expect(BytesFromRegisters(regs)).To(Equal([]byte{0x00, 0x01, 0xFF, 0xFE}))
		})

		It("rejects an odd-length source instead of silently truncating it", func() {
			regs := make([]uint16, 2)
			Expect(BytesToRegisters(regs, []byte{0x01, 0x02, 0x03})).To(Equal(ErrOddLength))
		})

		It("rejects a source that does not fit", func() {
			regs := make([]uint16, 1)
			Expect(BytesToRegisters(regs, []byte{0x01, 0x02, 0x03, 0x04})).To(Equal(ErrBufferTooSmall))
		})
	})
})
