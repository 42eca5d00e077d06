package handlers

import (
	"github.com/macos-fuse-t/go-smb1/internal/binutil"
	"github.com/macos-fuse-t/go-smb1/internal/dispatch"
	"github.com/macos-fuse-t/go-smb1/internal/smberr"
)

const ntLM012Dialect = "NT LM 0.12"

// Capabilities this server advertises in NEGOTIATE. NT_SMBS and
// STATUS32 are load-bearing: without them clients won't send
// NT_CREATE_ANDX or interpret our 32-bit NTSTATUS codes.
const (
	capRawMode        = 0x00000001
	capUnicode        = 0x00000004
	capLargeFiles     = 0x00000008
	capNTSMBs         = 0x00000010
	capStatus32       = 0x00000040
	capNTFind         = 0x00000200
	capLargeReadX     = 0x00004000
	capLargeWriteX    = 0x00008000
	capExtendedSecure = 0x80000000
)

const securityModeUserLevel = 0x01

// Negotiate implements SMB_COM_NEGOTIATE (0x72): pick "NT LM 0.12" out
// of the client's dialect list and reply with the capability set and
// server challenge the rest of this server relies on.
func Negotiate(req *dispatch.Request) dispatch.Result {
	index := findDialectIndex(req.Data, ntLM012Dialect)
	if index < 0 {
		return dispatch.Err(smberr.STATUS_INVALID_NETWORK_RESPONSE, "no compatible dialect")
	}

	challenge := req.Conn.Challenge()

	params := make([]byte, 34)
	binutil.WriteU16LE(params, 0, uint16(index))
	params[2] = securityModeUserLevel
	binutil.WriteU16LE(params, 3, 50)   // MaxMpxCount
	binutil.WriteU16LE(params, 5, 1)    // MaxNumberVcs
	binutil.WriteU32LE(params, 7, 0x10000)
	binutil.WriteU32LE(params, 11, 0x10000)
	binutil.WriteU32LE(params, 15, 0)   // SessionKey
	binutil.WriteU32LE(params, 19, capRawMode|capUnicode|capLargeFiles|capNTSMBs|
		capStatus32|capNTFind|capLargeReadX|capLargeWriteX)
	binutil.WriteU64LE(params, 23, binutil.SystemToSMBTime(nowMillis()))
	binutil.WriteU16LE(params, 31, 0) // ServerTimeZone
	params[33] = 8                    // ChallengeLength

	data := make([]byte, 0, 8+2)
	data = append(data, challenge[:]...)
	data = append(data, 0, 0) // empty unicode domain name terminator

	return dispatch.Ok(params, data)
}

func findDialectIndex(data []byte, want string) int {
	idx := 0
	off := 0
	for off < len(data) {
		if data[off] != 0x02 {
			break
		}
		off++
		start := off
		for off < len(data) && data[off] != 0 {
			off++
		}
		dialect := string(data[start:off])
		off++ // null terminator
		if dialect == want {
			return idx
		}
		idx++
	}
	return -1
}
