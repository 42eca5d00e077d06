// Package handlers implements one function per SMB1 opcode this server
// supports, each a pure transformation from (request params, request
// data) to (status, response params, response data).
package handlers

import (
	"time"

	"github.com/macos-fuse-t/go-smb1/internal/binutil"
	"github.com/macos-fuse-t/go-smb1/internal/dispatch"
	"github.com/macos-fuse-t/go-smb1/internal/share"
	"github.com/macos-fuse-t/go-smb1/internal/smberr"
)

// nowMillis is the current time in epoch milliseconds, split out so
// tests can't be time-flaky on the exact value (handlers never assert
// on it, only on its presence/shape).
func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// preflightTree resolves the request's TID to a bound Tree, returning
// STATUS_SMB_BAD_TID if it doesn't resolve — the precondition every
// tree-scoped handler shares.
func preflightTree(req *dispatch.Request) (share.Tree, *dispatch.Result) {
	tree, ok := req.Conn.Tree(req.Message.Header.TID)
	if !ok {
		r := dispatch.Err(smberr.STATUS_SMB_BAD_TID, "unknown TID")
		return nil, &r
	}
	return tree, nil
}

// preflightFile resolves fid within tree, returning STATUS_SMB_BAD_FID
// if it doesn't resolve.
func preflightFile(tree share.Tree, fid uint16) (share.File, *dispatch.Result) {
	f, ok := tree.GetFile(fid)
	if !ok {
		r := dispatch.Err(smberr.STATUS_SMB_BAD_FID, "unknown FID")
		return nil, &r
	}
	return f, nil
}

// readAlignedUnicodeString reads a null-terminated UTF-16LE string
// starting at a 2-byte-aligned offset relative to the header start, the
// alignment CIFS text fields consistently use.
func readAlignedUnicodeString(data []byte, dataOffset uint32, relOff int) (string, int) {
	abs := int(dataOffset) + relOff
	pad := binutil.PadToAlign(abs, 2)
	start := relOff + pad
	if start > len(data) {
		return "", len(data)
	}
	raw, end := binutil.ExtractUnicodeString(data, start)
	return binutil.DecodeUTF16LE(raw), end
}
