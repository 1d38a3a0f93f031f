package jsonb

import "encoding/binary"

// JEntry bit layout (spec §4.1): a 32-bit word describing one child of a
// container. The low 28 bits hold either a length or an end-offset into
// the values area depending on jeHasOff; the next 3 bits hold a type code;
// the high bit flags which interpretation applies.
const (
	jeOffLenMask uint32 = 0x0FFFFFFF
	jeTypeMask   uint32 = 0x70000000
	jeHasOffBit  uint32 = 0x80000000

	jeTypeString    uint32 = 0x00000000
	jeTypeNumeric   uint32 = 0x10000000
	jeTypeBoolFalse uint32 = 0x20000000
	jeTypeBoolTrue  uint32 = 0x30000000
	jeTypeNull      uint32 = 0x40000000
	jeTypeContainer uint32 = 0x50000000
)

func jeOffLen(je uint32) uint32  { return je & jeOffLenMask }
func jeHasOff(je uint32) bool    { return je&jeHasOffBit != 0 }
func jeTypeOf(je uint32) uint32  { return je & jeTypeMask }

// JContainer bit layout (spec §4.1): the 32-bit header word of an array
// or object.
const (
	jcCountMask uint32 = 0x0FFFFFFF
	jcScalarBit uint32 = 0x10000000
	jcObjectBit uint32 = 0x20000000
	jcArrayBit  uint32 = 0x40000000
)

func jcCount(jc uint32) int     { return int(jc & jcCountMask) }
func jcIsScalar(jc uint32) bool { return jc&jcScalarBit != 0 }
func jcIsObject(jc uint32) bool { return jc&jcObjectBit != 0 }
func jcIsArray(jc uint32) bool  { return jc&jcArrayBit != 0 }

// readU32LE reads a little-endian uint32 at an absolute offset, reporting
// whether the read stayed within bounds.
func readU32LE(data []byte, pos int) (uint32, bool) {
	if pos < 0 || pos+4 > len(data) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(data[pos : pos+4]), true
}

// alignPad returns the number of padding bytes needed to bring pos up to
// the next 4-byte boundary.
func alignPad(pos int) int {
	return (4 - (pos % 4)) % 4
}
