// Package binutil holds the little-endian primitives every SMB1 codec in
// this repository is built from: fixed-width integer access, UTF-16LE
// string extraction, 2-byte alignment padding, and the 100-ns SMB time
// epoch conversion.
package binutil

import (
	"encoding/binary"
	"time"
	"unicode/utf16"
)

// smbEpoch is 1601-01-01 00:00:00 UTC expressed as a Unix epoch offset in
// milliseconds. SMB time is 100-ns ticks since this instant.
const smbEpoch int64 = -11644473600000

const ticksPerMillisecond = 10000

// ReadU16LE reads a little-endian uint16 at off.
func ReadU16LE(buf []byte, off int) uint16 {
	return binary.LittleEndian.Uint16(buf[off:])
}

// ReadU32LE reads a little-endian uint32 at off.
func ReadU32LE(buf []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(buf[off:])
}

// ReadU64LE reads a little-endian uint64 at off.
func ReadU64LE(buf []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(buf[off:])
}

// WriteU16LE writes v little-endian at off.
func WriteU16LE(buf []byte, off int, v uint16) {
	binary.LittleEndian.PutUint16(buf[off:], v)
}

// WriteU32LE writes v little-endian at off.
func WriteU32LE(buf []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(buf[off:], v)
}

// WriteU64LE writes v little-endian at off.
func WriteU64LE(buf []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(buf[off:], v)
}

// ExtractUnicodeString reads a null-terminated UTF-16LE string starting
// at off and returns its bytes, excluding the two-byte terminator, along
// with the offset of the first byte past the terminator.
func ExtractUnicodeString(buf []byte, off int) (raw []byte, end int) {
	i := off
	for i+1 < len(buf) {
		if buf[i] == 0 && buf[i+1] == 0 {
			return buf[off:i], i + 2
		}
		i += 2
	}
	return buf[off:], len(buf)
}

// DecodeUTF16LE decodes a UTF-16LE byte slice (no terminator) to a string.
func DecodeUTF16LE(buf []byte) string {
	u16 := make([]uint16, len(buf)/2)
	for i := range u16 {
		u16[i] = ReadU16LE(buf, i*2)
	}
	return string(utf16.Decode(u16))
}

// EncodeUTF16LE encodes s to UTF-16LE bytes without a terminator.
func EncodeUTF16LE(s string) []byte {
	u16 := utf16.Encode([]rune(s))
	out := make([]byte, len(u16)*2)
	for i, v := range u16 {
		WriteU16LE(out, i*2, v)
	}
	return out
}

// PadToAlign returns the number of padding bytes needed to advance
// absoluteOffset to the next multiple of alignment.
func PadToAlign(absoluteOffset int, alignment int) int {
	if alignment <= 1 {
		return 0
	}
	rem := absoluteOffset % alignment
	if rem == 0 {
		return 0
	}
	return alignment - rem
}

// SystemToSMBTime converts epoch milliseconds to 100-ns ticks since
// 1601-01-01 UTC.
func SystemToSMBTime(ms int64) uint64 {
	return uint64((ms - smbEpoch) * ticksPerMillisecond)
}

// SMBToSystemTime converts 100-ns ticks since 1601-01-01 UTC to epoch
// milliseconds.
func SMBToSystemTime(ticks uint64) int64 {
	return int64(ticks/ticksPerMillisecond) + smbEpoch
}

// SMBTimeToTime is a convenience wrapper returning a time.Time.
func SMBTimeToTime(ticks uint64) time.Time {
	return time.UnixMilli(SMBToSystemTime(ticks)).UTC()
}
