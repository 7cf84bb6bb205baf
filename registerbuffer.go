package modbus

// RegisterBufferView is a non-owning typed window onto a contiguous run of
// register words, with address-relative typed get/put delegating to the
// byte/register codec (§4.4).
type RegisterBufferView struct {
	StartAddress uint16
	RegisterType RegisterType
	Registers    []uint16
}

func (v *RegisterBufferView) sliceForAddress(modbusAddress uint16) ([]uint16, error) {
	if modbusAddress < v.StartAddress {
		return nil, ErrOutOfRange
	}
	offset := modbusAddress - v.StartAddress
	if int(offset) > len(v.Registers) || offset > MaxModbusRegisters {
		return nil, ErrOutOfRange
	}
	return v.Registers[offset:], nil
}

func (v *RegisterBufferView) GetUint16(modbusAddress uint16) (uint16, error) {
	regs, err := v.sliceForAddress(modbusAddress)
	if err != nil {
		return 0, err
	}
	return Uint16FromRegisters(regs)
}

func (v *RegisterBufferView) PutUint16(modbusAddress uint16, value uint16) error {
	regs, err := v.sliceForAddress(modbusAddress)
	if err != nil {
		return err
	}
	return Uint16ToRegisters(regs, value)
}

func (v *RegisterBufferView) GetUint32(modbusAddress uint16) (uint32, error) {
	regs, err := v.sliceForAddress(modbusAddress)
	if err != nil {
		return 0, err
	}
	return Uint32FromRegisters(regs)
}

func (v *RegisterBufferView) PutUint32(modbusAddress uint16, value uint32) error {
	regs, err := v.sliceForAddress(modbusAddress)
	if err != nil {
		return err
	}
	return Uint32ToRegisters(regs, value)
}

func (v *RegisterBufferView) GetFloat32(modbusAddress uint16) (float32, error) {
	regs, err := v.sliceForAddress(modbusAddress)
	if err != nil {
		return 0, err
	}
	return Float32FromRegisters(regs)
}

func (v *RegisterBufferView) PutFloat32(modbusAddress uint16, value float32) error {
	regs, err := v.sliceForAddress(modbusAddress)
	if err != nil {
		return err
	}
	return Float32ToRegisters(regs, value)
}

func (v *RegisterBufferView) GetUint8(modbusAddress uint16, order ByteOrder) (uint8, error) {
	regs, err := v.sliceForAddress(modbusAddress)
	if err != nil {
		return 0, err
	}
	return Uint8FromRegisters(regs, order)
}

func (v *RegisterBufferView) PutUint8(modbusAddress uint16, value uint8, order ByteOrder) error {
	regs, err := v.sliceForAddress(modbusAddress)
	if err != nil {
		return err
	}
	return Uint8ToRegisters(regs, value, order)
}

// GetString reads a character string spanning regCount registers starting
// at modbusAddress.
func (v *RegisterBufferView) GetString(modbusAddress, regCount uint16) (string, error) {
	regs, err := v.sliceForAddress(modbusAddress)
	if err != nil {
		return "", err
	}
	if int(regCount) > len(regs) {
		return "", ErrOutOfRange
	}
	return StringFromRegisters(regs[:regCount]), nil
}

// PutString writes s into regCount registers starting at modbusAddress.
func (v *RegisterBufferView) PutString(modbusAddress, regCount uint16, s string) error {
	regs, err := v.sliceForAddress(modbusAddress)
	if err != nil {
		return err
	}
	if int(regCount) > len(regs) {
		return ErrOutOfRange
	}
	return StringToRegisters(regs[:regCount], s)
}

// GetBytes reads regCount registers starting at modbusAddress as a raw
// byte vector with no null termination.
func (v *RegisterBufferView) GetBytes(modbusAddress, regCount uint16) ([]byte, error) {
	regs, err := v.sliceForAddress(modbusAddress)
	if err != nil {
		return nil, err
	}
	if int(regCount) > len(regs) {
		return nil, ErrOutOfRange
	}
	return BytesFromRegisters(regs[:regCount]), nil
}

// PutBytes writes src into regCount registers starting at modbusAddress.
func (v *RegisterBufferView) PutBytes(modbusAddress, regCount uint16, src []byte) error {
	regs, err := v.sliceForAddress(modbusAddress)
	if err != nil {
		return err
	}
	if int(regCount) > len(regs) {
		return ErrOutOfRange
	}
	return BytesToRegisters(regs[:regCount], src)
}

// RegisterBuffer owns n 16-bit register words addressed from startAddress.
type RegisterBuffer struct {
	StartAddress uint16
	RegisterType RegisterType
	Registers    []uint16
}

// NewRegisterBuffer allocates a RegisterBuffer of n words.
func NewRegisterBuffer(startAddress uint16, registerType RegisterType, n uint16) *RegisterBuffer {
	return &RegisterBuffer{
		StartAddress: startAddress,
		RegisterType: registerType,
		Registers:    make([]uint16, n),
	}
}

// View returns a non-owning RegisterBufferView over the buffer's words.
func (b *RegisterBuffer) View() *RegisterBufferView {
	return &RegisterBufferView{
		StartAddress: b.StartAddress,
		RegisterType: b.RegisterType,
		Registers:    b.Registers,
	}
}
