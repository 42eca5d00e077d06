package handlers

import (
	"github.com/macos-fuse-t/go-smb1/internal/binutil"
	"github.com/macos-fuse-t/go-smb1/internal/dispatch"
	"github.com/macos-fuse-t/go-smb1/internal/smb1"
	"github.com/macos-fuse-t/go-smb1/internal/smberr"
)

const readAndXPad = 1

// ReadAndX implements SMB_COM_READ_ANDX (0x2E). The response payload
// always starts at the fixed DATA_OFFSET (60 bytes into the SMB
// header), regardless of how much padding that leaves before the
// header's actual end — clients rely on the fixed offset, not on any
// header-length arithmetic.
func ReadAndX(req *dispatch.Request) dispatch.Result {
	tree, errRes := preflightTree(req)
	if errRes != nil {
		return *errRes
	}

	p := req.Params
	if len(p) < 20 {
		return dispatch.Err(smberr.STATUS_UNSUCCESSFUL, "read params too short")
	}
	fid := binutil.ReadU16LE(p, 4)
	offset := int64(binutil.ReadU32LE(p, 6))
	maxCount := int(binutil.ReadU16LE(p, 10))
	// timeoutOrMaxCountHigh @16-17 doubles as MaxCount's high word
	// when the share isn't a named pipe (where it's a genuine pipe
	// timeout instead).
	if !tree.IsNamedPipe() {
		maxCount |= int(binutil.ReadU16LE(p, 16)) << 16
	}
	if len(p) >= 24 {
		offsetHigh := int64(binutil.ReadU32LE(p, 20))
		offset |= offsetHigh << 32
	}

	f, errRes := preflightFile(tree, fid)
	if errRes != nil {
		return *errRes
	}

	buf := make([]byte, maxCount)
	n, err := f.Read(buf, 0, maxCount, offset)
	if err != nil {
		return dispatch.ErrFrom(err)
	}
	buf = buf[:n]

	respParams := make([]byte, 24)
	respParams[0] = 0xFF // AndXCommand
	binutil.WriteU16LE(respParams, 6, 0)           // Remaining, unknown for streamed backends
	binutil.WriteU16LE(respParams, 10, uint16(n))  // DataLength low 16 bits
	binutil.WriteU16LE(respParams, 12, uint16(smb1.DATA_OFFSET))

	// 32-byte header + 1 wordCount byte + 24 params bytes + 2 byteCount
	// bytes = 59; one pad byte brings the payload up to DATA_OFFSET (60).
	respData := make([]byte, 0, readAndXPad+len(buf))
	respData = append(respData, make([]byte, readAndXPad)...)
	respData = append(respData, buf...)

	return dispatch.Ok(respParams, respData)
}
