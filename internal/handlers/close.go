package handlers

import (
	"github.com/macos-fuse-t/go-smb1/internal/binutil"
	"github.com/macos-fuse-t/go-smb1/internal/dispatch"
	"github.com/macos-fuse-t/go-smb1/internal/smberr"
)

// Close implements SMB_COM_CLOSE (0x04): it flushes the file and
// releases its FID. The request's LastTimeModified field (params 2-5,
// Unix seconds) is not read, so a close never changes the file's
// modification time.
func Close(req *dispatch.Request) dispatch.Result {
	tree, errRes := preflightTree(req)
	if errRes != nil {
		return *errRes
	}

	p := req.Params
	if len(p) < 6 {
		return dispatch.Err(smberr.STATUS_UNSUCCESSFUL, "close params too short")
	}
	fid := binutil.ReadU16LE(p, 0)

	f, errRes := preflightFile(tree, fid)
	if errRes != nil {
		return *errRes
	}
	if err := f.Flush(); err != nil {
		return dispatch.ErrFrom(err)
	}
	if err := tree.CloseFile(fid); err != nil {
		return dispatch.ErrFrom(err)
	}

	return dispatch.Ok(nil, nil)
}
