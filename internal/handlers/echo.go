package handlers

import (
	"github.com/macos-fuse-t/go-smb1/internal/binutil"
	"github.com/macos-fuse-t/go-smb1/internal/dispatch"
	"github.com/macos-fuse-t/go-smb1/internal/smb1"
	"github.com/macos-fuse-t/go-smb1/internal/smberr"
)

// Echo implements SMB_COM_ECHO (0x2B). Unlike every other handler in
// this table, ECHO writes its own reply directly onto the connection
// (one per requested repetition, each carrying an incrementing
// SequenceNumber) and returns AlreadyReplied so Dispatch never encodes
// a second response.
func Echo(req *dispatch.Request) dispatch.Result {
	p := req.Params
	if len(p) < 2 {
		return dispatch.Err(smberr.STATUS_INVALID_PARAMETER, "echo params too short")
	}
	count := binutil.ReadU16LE(p, 0)
	if count == 0 {
		count = 1
	}

	for i := uint16(1); i <= count; i++ {
		respParams := make([]byte, 2)
		binutil.WriteU16LE(respParams, 0, i)

		reply := &smb1.Message{
			Header:   req.Message.Header,
			Commands: []smb1.Command{{CommandId: smb1.SMB_COM_ECHO, Params: respParams, Data: req.Data}},
		}
		reply.Header.Flags |= smb1.FLAGS_REPLY
		reply.Header.Flags2 |= smb1.FLAGS2_NT_STATUS

		if err := req.Conn.SendRaw(reply); err != nil {
			return dispatch.ErrFrom(err)
		}
	}

	return dispatch.AlreadyReplied()
}
