package modbus

import "github.com/sigurn/crc16"

var crcTable = crc16.MakeTable(crc16.CRC16_MODBUS)

// checksumModbus computes the CRC-16 used by the RTU encoding (seed
// 0xFFFF, reflected MODBUS polynomial) over b.
func checksumModbus(b []byte) uint16 {
	return crc16.Checksum(b, crcTable)
}
