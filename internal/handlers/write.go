package handlers

import (
	"github.com/macos-fuse-t/go-smb1/internal/dispatch"
	"github.com/macos-fuse-t/go-smb1/internal/smberr"
)

// WriteAndX implements SMB_COM_WRITE_ANDX (0x2F). This server's shares
// are read-only, so every write is rejected outright — the point of
// still registering a handler (rather than leaving the opcode
// unregistered) is to fail it with STATUS_NOT_SUPPORTED instead of the
// more confusing STATUS_NOT_IMPLEMENTED an unregistered CIFS command
// would produce.
func WriteAndX(req *dispatch.Request) dispatch.Result {
	return dispatch.Err(smberr.STATUS_NOT_SUPPORTED, "share is read-only")
}
