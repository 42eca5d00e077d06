package handlers

import (
	"strings"

	"github.com/macos-fuse-t/go-smb1/internal/binutil"
	"github.com/macos-fuse-t/go-smb1/internal/dispatch"
	"github.com/macos-fuse-t/go-smb1/internal/smberr"
)

// TreeConnectAndX implements SMB_COM_TREE_CONNECT_ANDX (0x75): resolves
// a \\server\share UNC path to a registered Share and binds a fresh Tree
// under a new TID.
func TreeConnectAndX(req *dispatch.Request) dispatch.Result {
	p := req.Params
	if len(p) < 8 {
		return dispatch.Err(smberr.STATUS_UNSUCCESSFUL, "tree connect params too short")
	}
	pwLen := int(binutil.ReadU16LE(p, 6))

	data := req.Data
	if pwLen > len(data) {
		return dispatch.Err(smberr.STATUS_UNSUCCESSFUL, "truncated tree connect password")
	}
	password := data[:pwLen]

	path, off := readAlignedUnicodeString(data, req.DataOffset, pwLen)
	_, _ = readAlignedUnicodeString(data, req.DataOffset, off) // service, unused

	shareName := lastUNCComponent(path)
	sh, ok := req.Conn.ShareByName(shareName)
	if !ok {
		return dispatch.Err(smberr.STATUS_BAD_NETWORK_NAME, "no such share: "+shareName)
	}

	session, ok := req.Conn.SessionByUID(req.Message.Header.UID)
	if !ok {
		return dispatch.Err(smberr.STATUS_ACCESS_DENIED, "no session for tree connect")
	}

	tree, err := sh.Connect(session, string(password))
	if err != nil {
		return dispatch.ErrFrom(err)
	}
	tid := req.Conn.BindTree(tree)
	req.Message.Header.TID = tid

	// Bytes 0-3 are the AndX chain header (nextCommandId, reserved,
	// nextOffset), filled in once the full response chain is known;
	// OptionalSupport follows it at byte 4.
	respParams := make([]byte, 6)
	if sh.IsNamedPipe() {
		binutil.WriteU16LE(respParams, 4, 0) // OptionalSupport left zero
	}

	respData := make([]byte, 0, 16)
	respData = append(respData, []byte("A:")...)
	respData = append(respData, 0)
	respData = append(respData, binutil.EncodeUTF16LE("NTFS")...)
	respData = append(respData, 0, 0)

	return dispatch.Ok(respParams, respData)
}

// lastUNCComponent extracts the share name out of a \\server\share UNC
// path, tolerating either backslash form the client sends.
func lastUNCComponent(path string) string {
	path = strings.TrimRight(path, `\`)
	if idx := strings.LastIndexByte(path, '\\'); idx >= 0 {
		return path[idx+1:]
	}
	return path
}
