package handlers

import "github.com/macos-fuse-t/go-smb1/internal/dispatch"

// LogoffAndX implements SMB_COM_LOGOFF_ANDX (0x74). It only acknowledges
// the request: neither this handler nor the connection removes the UID's
// session, which stays bound until the connection closes.
func LogoffAndX(req *dispatch.Request) dispatch.Result {
	respParams := make([]byte, 2)
	respParams[0] = 0xFF // AndXCommand
	return dispatch.Ok(respParams, nil)
}

// TreeDisconnect implements SMB_COM_TREE_DISCONNECT (0x71).
func TreeDisconnect(req *dispatch.Request) dispatch.Result {
	tree, errRes := preflightTree(req)
	if errRes != nil {
		return *errRes
	}
	if err := tree.Disconnect(); err != nil {
		return dispatch.ErrFrom(err)
	}
	req.Conn.UnbindTree(req.Message.Header.TID)
	return dispatch.Ok(nil, nil)
}
