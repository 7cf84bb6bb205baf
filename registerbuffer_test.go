package modbus_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/dlz-automation/modbus"
)

var _ = Describe("RegisterBuffer", func() {
	It("reads and writes a uint16 at an address-relative offset", func() {
		buf := NewRegisterBuffer(100, Holding, 4)
		view := buf.View()

		Expect(view.PutUint16(101, 0xBEEF)).To(Succeed())
		v, err := view.GetUint16(101)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(uint16(0xBEEF)))
	})

	It("reads and writes a uint32 spanning two registers", func() {
		buf := NewRegisterBuffer(0, Holding, 4)
		view := buf.View()

		Expect(view.PutUint32(2, 0x12345678)).To(Succeed())
		v, err := view.GetUint32(2)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(uint32(0x12345678)))
	})

	It("reads and writes a float32", func() {
		buf := NewRegisterBuffer(0, Holding, 2)
		view := buf.View()

		Expect(view.PutFloat32(0, 3.25)).To(Succeed())
		v, err := view.GetFloat32(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(BeNumerically("==", 3.25))
	})

	It("reads and writes a string", func() {
		buf := NewRegisterBuffer(0, Holding, 2)
		view := buf.View()

		Expect(view.PutString(0, 2, "ABC")).To(Succeed())
		s, err := view.GetString(0, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(Equal("ABC"))
	})

	It("rejects an address below StartAddress", func() {
		buf := NewRegisterBuffer(10, Holding, 4)
		view := buf.View()

		_, err := view.GetUint16(5)
		Expect(err).To(Equal(ErrOutOfRange))
	})

	It("rejects a value that runs past the buffer's end", func() {
		buf := NewRegisterBuffer(0, Holding, 2)
		view := buf.View()

		_, err := view.GetUint32(1)
		Expect(err).To(Equal(ErrBufferTooSmall))
	})
})
