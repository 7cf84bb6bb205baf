package modbus

// Frame is an in-memory PDU buffer overlaid with both wire encodings: the
// TCP-framed layout at offset 0 and the RTU layout at offset 6, sharing the
// unit-id byte between the two. The zero value is an empty response frame
// (its direction flag is false).
type Frame struct {
	buf       [300]byte
	isRequest bool
}

// FunctionCode identifies the operation a PDU carries.
type FunctionCode uint8

const (
	ReadCoils                 FunctionCode = 0x01
	ReadDiscreteInputs        FunctionCode = 0x02
	ReadHoldingRegisters      FunctionCode = 0x03
	ReadInputRegisters        FunctionCode = 0x04
	WriteSingleCoil           FunctionCode = 0x05
	WriteSingleRegister       FunctionCode = 0x06
	Diagnostics               FunctionCode = 0x08
	WriteMultipleCoils        FunctionCode = 0x0F
	WriteMultipleRegisters    FunctionCode = 0x10
	ReadDeviceIdentification  FunctionCode = 0x0E
	MaskWriteRegister         FunctionCode = 0x16
	ReadWriteMultipleRegisters FunctionCode = 0x17
	InvalidFunctionCodeValue  FunctionCode = 0x00
)

func (fc FunctionCode) String() string {
	switch fc {
	case ReadCoils:
		return "ReadCoils"
	case ReadDiscreteInputs:
		return "ReadDiscreteInputs"
	case ReadHoldingRegisters:
		return "ReadHoldingRegisters"
	case ReadInputRegisters:
		return "ReadInputRegisters"
	case WriteSingleCoil:
		return "WriteSingleCoil"
	case WriteSingleRegister:
		return "WriteSingleRegister"
	case Diagnostics:
		return "Diagnostics"
	case WriteMultipleCoils:
		return "WriteMultipleCoils"
	case WriteMultipleRegisters:
		return "WriteMultipleRegisters"
	case ReadDeviceIdentification:
		return "ReadDeviceIdentification"
	case MaskWriteRegister:
		return "MaskWriteRegister"
	case ReadWriteMultipleRegisters:
		return "ReadWriteMultipleRegisters"
	default:
		return "InvalidFunctionCode"
	}
}

// ExceptionCode is the peer-declared reason a request could not be
// completed, carried as the sole payload byte of an exception response.
type ExceptionCode uint8

const (
	IllegalFunction     ExceptionCode = 0x01
	IllegalDataAddress  ExceptionCode = 0x02
	IllegalDataValue    ExceptionCode = 0x03
	SlaveDeviceFailure  ExceptionCode = 0x04
	Acknowledge         ExceptionCode = 0x05
	SlaveDeviceBusy     ExceptionCode = 0x06
	NegativeAcknowledge ExceptionCode = 0x07
	MemoryParityError   ExceptionCode = 0x08
)

func (e ExceptionCode) String() string {
	switch e {
	case IllegalFunction:
		return "IllegalFunction"
	case IllegalDataAddress:
		return "IllegalDataAddress"
	case IllegalDataValue:
		return "IllegalDataValue"
	case SlaveDeviceFailure:
		return "SlaveDeviceFailure"
	case Acknowledge:
		return "Acknowledge"
	case SlaveDeviceBusy:
		return "SlaveDeviceBusy"
	case NegativeAcknowledge:
		return "NegativeAcknowledge"
	case MemoryParityError:
		return "MemoryParityError"
	default:
		return "Unknown"
	}
}

// ValidationStatus is the outcome of ValidateTCP/ValidateRTU/ValidateCommon.
type ValidationStatus int

const (
	ValidationOK ValidationStatus = iota
	ValidationProtocolIdentifier
	ValidationMbapHeaderLengthInvalid
	ValidationInvalidCRC
	ValidationTransactionID
	ValidationInvalidFunctionCode
	ValidationUnknown
)

func (v ValidationStatus) String() string {
	switch v {
	case ValidationOK:
		return "OK"
	case ValidationProtocolIdentifier:
		return "ProtocolIdentifier"
	case ValidationMbapHeaderLengthInvalid:
		return "MbapHeaderLengthInvalid"
	case ValidationInvalidCRC:
		return "InvalidCRC"
	case ValidationTransactionID:
		return "TransactionID"
	case ValidationInvalidFunctionCode:
		return "InvalidFunctionCode"
	default:
		return "Unknown"
	}
}

// field offsets, shared between the TCP and RTU overlays (§3).
const (
	posTransactionID = 0
	posProtocolID    = 2
	posLength        = 4
	posUnitID        = 6
	posFunctionCode  = 7
	posData          = 8

	mbapHeaderSize        = 7
	rtuHeaderStartPos     = mbapHeaderSize - 1
	rtuHeaderSize         = 2
	unitIDSize            = 1
	byteCountSize         = 1
	startingAddressSize   = 2
	registerCountSize     = 2
	writeDataSize         = 2
	crcSize               = 2
	exceptionCodeSize     = 1
)

func be16(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

func putBE16(b []byte, v uint16) {
	b[0] = byte(v >> 8)
	b[1] = byte(v)
}

// IsRequest reports the frame's direction flag.
func (f *Frame) IsRequest() bool { return f.isRequest }

// SetIsRequest sets the frame's direction flag directly.
func (f *Frame) SetIsRequest(isRequest bool) *Frame {
	f.isRequest = isRequest
	return f
}

// Buffer returns the frame's full 300-byte backing array.
func (f *Frame) Buffer() []byte { return f.buf[:] }

// SetRawTCPData loads tcpData verbatim into the buffer starting at offset 0.
func (f *Frame) SetRawTCPData(tcpData []byte, isRequest bool) *Frame {
	f.isRequest = isRequest
	n := copy(f.buf[:], tcpData)
	_ = n
	return f
}

// SetRawRTUData loads rtuData verbatim into the buffer starting at the RTU
// overlay offset and derives the MBAP length from it.
func (f *Frame) SetRawRTUData(rtuData []byte, isRequest bool) *Frame {
	f.isRequest = isRequest
	copy(f.buf[rtuHeaderStartPos:], rtuData)
	f.setMbapLength(f.rtuLengthWithoutCRC())
	return f
}

// FromRawTCPData builds a Frame from a raw TCP-framed byte slice.
func FromRawTCPData(tcpData []byte, isRequest bool) *Frame {
	f := &Frame{}
	return f.SetRawTCPData(tcpData, isRequest)
}

// FromRawRTUData builds a Frame from a raw RTU byte slice.
func FromRawRTUData(rtuData []byte, isRequest bool) *Frame {
	f := &Frame{}
	return f.SetRawRTUData(rtuData, isRequest)
}

func (f *Frame) TransactionID() uint16 { return be16(f.buf[posTransactionID:]) }

func (f *Frame) SetTransactionID(value uint16) *Frame {
	putBE16(f.buf[posTransactionID:], value)
	return f
}

func (f *Frame) ProtocolID() uint16 { return be16(f.buf[posProtocolID:]) }

func (f *Frame) SetProtocolID(value uint16) *Frame {
	putBE16(f.buf[posProtocolID:], value)
	return f
}

func (f *Frame) MbapLength() uint16 { return be16(f.buf[posLength:]) }

func (f *Frame) setMbapLength(value uint16) *Frame {
	putBE16(f.buf[posLength:], value)
	return f
}

// RtuLength is the size in bytes of the RTU encoding including its CRC.
func (f *Frame) RtuLength() uint16 { return f.MbapLength() + crcSize }

// PduLength is the function-code-plus-payload length, excluding the unit
// id byte shared by both overlays.
func (f *Frame) PduLength() uint16 {
	length := f.MbapLength()
	if length == 0 {
		length = f.rtuLengthWithoutCRC()
	}
	return length - unitIDSize
}

func (f *Frame) SlaveID() uint8 { return f.buf[posUnitID] }

func (f *Frame) SetSlaveID(value uint8) *Frame {
	f.buf[posUnitID] = value
	return f
}

// FunctionCode returns the low 7 bits of the function-code byte; the high
// bit is the exception flag, reported separately by IsException.
func (f *Frame) FunctionCode() FunctionCode {
	return FunctionCode(f.buf[posFunctionCode] & 0x7F)
}

func (f *Frame) SetFunctionCode(value FunctionCode) *Frame {
	exceptionBit := f.buf[posFunctionCode] & 0x80
	f.buf[posFunctionCode] = uint8(value) | exceptionBit
	return f
}

func (f *Frame) IsException() bool { return f.buf[posFunctionCode]&0x80 != 0 }

// SetIsException toggles the exception bit; setting it also forces the
// direction flag to response, since an exception is always a reply.
func (f *Frame) SetIsException(isException bool) *Frame {
	if isException {
		f.isRequest = false
		f.buf[posFunctionCode] |= 0x80
	} else {
		f.buf[posFunctionCode] &^= 0x80
	}
	return f
}

func (f *Frame) ExceptionCode() ExceptionCode {
	if !f.IsException() {
		return 0
	}
	return ExceptionCode(f.buf[posData])
}

func (f *Frame) SetExceptionCode(code ExceptionCode) *Frame {
	f.buf[posData] = uint8(code)
	return f
}

// HasStartAddress reports whether this frame's function code/direction
// combination carries a start-address field.
func (f *Frame) HasStartAddress() bool {
	if f.IsException() {
		return false
	}
	switch f.FunctionCode() {
	case ReadCoils, ReadDiscreteInputs, ReadHoldingRegisters, ReadInputRegisters:
		return f.isRequest
	case WriteSingleCoil, WriteSingleRegister, WriteMultipleCoils, WriteMultipleRegisters:
		return true
	default:
		return false
	}
}

func (f *Frame) StartAddress() uint16 {
	if !f.HasStartAddress() {
		return 0
	}
	return be16(f.buf[posData:])
}

func (f *Frame) SetStartAddress(value uint16) *Frame {
	if f.HasStartAddress() {
		putBE16(f.buf[posData:], value)
	}
	return f
}

func (f *Frame) registerCountPos() int { return posData + startingAddressSize }

func (f *Frame) byteCountMultiplePos() int { return f.registerCountPos() + registerCountSize }

// ByteCount reports the on-wire byte-count field where one is present, and
// a synthesized value (2 for single-register writes, 0 otherwise) where
// the function code has no such field (§4.2).
func (f *Frame) ByteCount() uint16 {
	if f.IsException() {
		return 0
	}
	switch f.FunctionCode() {
	case ReadCoils, ReadDiscreteInputs, ReadHoldingRegisters, ReadInputRegisters:
		if f.isRequest {
			return 0
		}
		return uint16(f.buf[posData])
	case WriteMultipleCoils, WriteMultipleRegisters:
		if f.isRequest {
			return uint16(f.buf[f.byteCountMultiplePos()])
		}
		return 0
	case WriteSingleCoil, WriteSingleRegister:
		return 2
	default:
		return 0
	}
}

func (f *Frame) SetByteCount(value uint8) *Frame {
	if f.IsException() {
		return f
	}
	switch f.FunctionCode() {
	case ReadCoils, ReadDiscreteInputs, ReadHoldingRegisters, ReadInputRegisters:
		if !f.isRequest {
			f.buf[posData] = value
		}
	case WriteMultipleCoils, WriteMultipleRegisters:
		if f.isRequest {
			f.buf[f.byteCountMultiplePos()] = value
		}
	}
	return f
}

// RegisterCount reports the quantity of registers this frame addresses,
// per the direction/function-code rules of §4.2.
func (f *Frame) RegisterCount() uint16 {
	if f.IsException() {
		return 0
	}
	switch f.FunctionCode() {
	case ReadCoils, ReadDiscreteInputs:
		if f.isRequest {
			return be16(f.buf[f.registerCountPos():])
		}
		return f.ByteCount() * 8
	case ReadHoldingRegisters, ReadInputRegisters:
		if f.isRequest {
			return be16(f.buf[f.registerCountPos():])
		}
		return f.ByteCount() / 2
	case WriteSingleCoil, WriteSingleRegister:
		return 1
	case WriteMultipleCoils, WriteMultipleRegisters:
		return be16(f.buf[f.registerCountPos():])
	default:
		return 0
	}
}

func (f *Frame) SetRegisterCount(value uint16) *Frame {
	if f.IsException() {
		return f
	}
	switch f.FunctionCode() {
	case ReadCoils, ReadDiscreteInputs, ReadHoldingRegisters, ReadInputRegisters:
		if f.isRequest {
			putBE16(f.buf[f.registerCountPos():], value)
		}
	case WriteMultipleCoils, WriteMultipleRegisters:
		putBE16(f.buf[f.registerCountPos():], value)
	}
	return f
}

// HasRegistersValues reports whether this frame's function code/direction
// combination carries a register-values payload.
func (f *Frame) HasRegistersValues() bool {
	if f.IsException() {
		return false
	}
	switch f.FunctionCode() {
	case ReadCoils, ReadDiscreteInputs, ReadHoldingRegisters, ReadInputRegisters:
		return !f.isRequest
	case WriteSingleCoil, WriteSingleRegister:
		return true
	case WriteMultipleCoils, WriteMultipleRegisters:
		return f.isRequest
	default:
		return false
	}
}

func (f *Frame) registersDataPos() int {
	switch f.FunctionCode() {
	case ReadCoils, ReadDiscreteInputs, ReadHoldingRegisters, ReadInputRegisters:
		return posData + byteCountSize
	case WriteSingleCoil, WriteSingleRegister:
		return posData + startingAddressSize
	case WriteMultipleCoils, WriteMultipleRegisters:
		return f.byteCountMultiplePos() + byteCountSize
	default:
		return posData
	}
}

// RegistersData is the raw byte span backing the register-values payload.
func (f *Frame) RegistersData() []byte {
	if !f.HasRegistersValues() {
		return nil
	}
	pos := f.registersDataPos()
	return f.buf[pos : pos+int(f.ByteCount())]
}

func swapBytes(v uint16) uint16 { return v<<8 | v>>8 }

// RegistersValues decodes the register-values payload. Bit functions
// (coils, discrete inputs) yield one output word per bit, LSB-first within
// each byte, 0xFF00 for a set bit and 0x0000 for a clear one (retained for
// wire compatibility, §9 note 3). Word functions decode each big-endian
// byte pair into one register.
func (f *Frame) RegistersValues() []uint16 {
	data := f.RegistersData()
	if f.FunctionCode() == ReadCoils || f.FunctionCode() == ReadDiscreteInputs {
		result := make([]uint16, 0, len(data)*8)
		for i := 0; i < len(data)*8; i++ {
			byteIndex := i / 8
			bitIndex := i % 8
			if data[byteIndex]>>bitIndex&0x1 != 0 {
				result = append(result, 0xFF00)
			} else {
				result = append(result, 0x0000)
			}
		}
		return result
	}
	result := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		val := uint16(data[i]) | uint16(data[i+1])<<8
		result = append(result, swapBytes(val))
	}
	return result
}

// SetRegistersValues packs values into the payload big-endian per word,
// clipped to the number of bytes the byte-count field already reserves.
func (f *Frame) SetRegistersValues(values []uint16) *Frame {
	if !f.HasRegistersValues() {
		return f
	}
	data := f.RegistersData()
	for i := 0; i+1 < len(data); i += 2 {
		pos := i / 2
		if pos >= len(values) {
			break
		}
		data[i] = byte(values[pos] >> 8)
		data[i+1] = byte(values[pos])
	}
	return f
}

func (f *Frame) rtuLengthWithoutCRC() uint16 {
	result := int(calculateRTULength(f.IsException(), f.isRequest, f.FunctionCode(), f.ByteCount())) - crcSize
	if result < 0 {
		return 0
	}
	return uint16(result)
}

// calculateRTULength implements the per-function-code length table of
// §4.2, returning the full RTU length including its trailing CRC.
func calculateRTULength(isException, isRequest bool, fc FunctionCode, byteCount uint16) uint16 {
	if isException {
		return rtuHeaderSize + exceptionCodeSize + crcSize
	}
	switch fc {
	case ReadCoils, ReadDiscreteInputs, ReadHoldingRegisters, ReadInputRegisters:
		if isRequest {
			return rtuHeaderSize + startingAddressSize + registerCountSize + crcSize
		}
		return rtuHeaderSize + byteCountSize + byteCount + crcSize
	case WriteSingleCoil, WriteSingleRegister:
		return rtuHeaderSize + startingAddressSize + writeDataSize + crcSize
	case WriteMultipleCoils, WriteMultipleRegisters:
		if isRequest {
			return rtuHeaderSize + startingAddressSize + registerCountSize + byteCountSize + byteCount + crcSize
		}
		return rtuHeaderSize + startingAddressSize + registerCountSize + crcSize
	default:
		return 0
	}
}

// CalculateExpectedResponseRTULength predicts the size of the response a
// request frame should provoke.
func (f *Frame) CalculateExpectedResponseRTULength() uint16 {
	if !f.isRequest {
		return f.RtuLength()
	}
	return calculateRTULength(false, false, f.FunctionCode(), f.RegisterCount()*2)
}

// TransmissionTimeMs computes the time to put length bytes on the wire at
// bps bits per second, assuming 10 bits per byte (8 data + start + stop),
// rounded up.
func TransmissionTimeMs(length int, bps int) int {
	if bps <= 0 || length <= 0 {
		return 0
	}
	result := (10*1000*length + bps - 1) / bps
	if result < 0 {
		return 0
	}
	return result
}

// CalculateTransmissionTimeMs is TransmissionTimeMs over this frame's own
// RTU length.
func (f *Frame) CalculateTransmissionTimeMs(bps int) int {
	return TransmissionTimeMs(int(f.RtuLength()), bps)
}

// CalculateResponseTransmissionTimeMs is TransmissionTimeMs over the
// expected response length for this request frame.
func (f *Frame) CalculateResponseTransmissionTimeMs(bps int) int {
	return TransmissionTimeMs(int(f.CalculateExpectedResponseRTULength()), bps)
}

func (f *Frame) crcPosition() int { return rtuHeaderStartPos + int(f.rtuLengthWithoutCRC()) }

func (f *Frame) crc() uint16 {
	pos := f.crcPosition()
	return uint16(f.buf[pos]) | uint16(f.buf[pos+1])<<8
}

func (f *Frame) setCRC(value uint16) {
	pos := f.crcPosition()
	f.buf[pos] = byte(value)
	f.buf[pos+1] = byte(value >> 8)
}

func (f *Frame) calculateCRC() uint16 {
	start := rtuHeaderStartPos
	end := start + int(f.rtuLengthWithoutCRC())
	return checksumModbus(f.buf[start:end])
}

func (f *Frame) appendCRC() *Frame {
	f.setCRC(f.calculateCRC())
	return f
}

// RtuFrame returns the byte span of the RTU encoding, recomputing and
// appending the CRC first.
func (f *Frame) RtuFrame() []byte {
	rtuLength := calculateRTULength(f.IsException(), f.isRequest, f.FunctionCode(), f.ByteCount())
	f.appendCRC()
	return f.buf[rtuHeaderStartPos : rtuHeaderStartPos+int(rtuLength)]
}

// TcpFrameSize is the length in bytes of the TCP-framed encoding.
func (f *Frame) TcpFrameSize() int { return mbapHeaderSize + int(f.PduLength()) }

// TcpFrame returns the byte span of the TCP-framed encoding, refreshing
// the MBAP length field first.
func (f *Frame) TcpFrame() []byte {
	f.setMbapLength(f.rtuLengthWithoutCRC())
	return f.buf[:f.TcpFrameSize()]
}

// Build populates a new request or response frame and appends its CRC.
func Build(isRequest bool, slaveID uint8, fc FunctionCode, startAddress, registerCount uint16, registersValues []uint16, transactionID uint16) *Frame {
	f := &Frame{}
	f.SetIsRequest(isRequest)
	f.SetTransactionID(transactionID)
	f.SetSlaveID(slaveID)
	f.SetFunctionCode(fc)
	f.SetStartAddress(startAddress)
	f.SetRegisterCount(registerCount)
	f.SetByteCount(uint8(registerCount * 2))
	f.SetRegistersValues(registersValues)
	f.setMbapLength(f.rtuLengthWithoutCRC())
	f.appendCRC()
	return f
}

// BuildExceptionResponse populates a new exception response frame.
func BuildExceptionResponse(slaveID uint8, fc FunctionCode, exceptionCode ExceptionCode, transactionID uint16) *Frame {
	f := &Frame{}
	f.SetTransactionID(transactionID)
	f.SetSlaveID(slaveID)
	f.SetFunctionCode(fc)
	f.SetIsException(true)
	f.SetExceptionCode(exceptionCode)
	f.setMbapLength(f.rtuLengthWithoutCRC())
	f.appendCRC()
	return f
}

// ValidateTCP checks the MBAP header before delegating to ValidateCommon.
func (f *Frame) ValidateTCP() ValidationStatus {
	if f.ProtocolID() != 0 {
		return ValidationProtocolIdentifier
	}
	if f.MbapLength() == 0 {
		return ValidationMbapHeaderLengthInvalid
	}
	return f.ValidateCommon()
}

// ValidateCommon checks the fields shared by both encodings.
func (f *Frame) ValidateCommon() ValidationStatus {
	if f.FunctionCode() == InvalidFunctionCodeValue {
		return ValidationInvalidFunctionCode
	}
	return ValidationOK
}

// ValidateRTU runs ValidateCommon then checks the trailing CRC.
func (f *Frame) ValidateRTU() ValidationStatus {
	if status := f.ValidateCommon(); status != ValidationOK {
		return status
	}
	if f.crc() != f.calculateCRC() {
		return ValidationInvalidCRC
	}
	return ValidationOK
}
