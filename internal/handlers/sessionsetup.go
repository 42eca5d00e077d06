package handlers

import (
	"github.com/macos-fuse-t/go-smb1/internal/binutil"
	"github.com/macos-fuse-t/go-smb1/internal/dispatch"
	"github.com/macos-fuse-t/go-smb1/internal/share"
	"github.com/macos-fuse-t/go-smb1/internal/smberr"
)

// SessionSetupAndX implements the non-extended-security form of
// SMB_COM_SESSION_SETUP_ANDX (0x73): classic LM/NTLM or LMv2/NTLMv2
// challenge-response authentication against the connection's NTLM
// account database.
func SessionSetupAndX(req *dispatch.Request) dispatch.Result {
	p := req.Params
	if len(p) < 26 {
		return dispatch.Err(smberr.STATUS_UNSUCCESSFUL, "session setup params too short")
	}

	lmLen := int(binutil.ReadU16LE(p, 14))
	ntLen := int(binutil.ReadU16LE(p, 16))

	data := req.Data
	if lmLen+ntLen > len(data) {
		return dispatch.Err(smberr.STATUS_UNSUCCESSFUL, "truncated session setup response bytes")
	}
	lmResponse := data[0:lmLen]
	ntResponse := data[lmLen : lmLen+ntLen]

	off := lmLen + ntLen
	account, off2 := readAlignedUnicodeString(data, req.DataOffset, off)
	domain, off3 := readAlignedUnicodeString(data, req.DataOffset, off2)
	nativeOS, _ := readAlignedUnicodeString(data, req.DataOffset, off3)
	_ = nativeOS

	guest := false
	if account == "" {
		if !req.Conn.NTLM().AllowGuest {
			return dispatch.Err(smberr.STATUS_LOGON_FAILURE, "guest access disabled")
		}
		guest = true
	} else if !req.Conn.NTLM().Authenticate(account, req.Conn.Challenge(), lmResponse, ntResponse) {
		return dispatch.Err(smberr.STATUS_LOGON_FAILURE, "authentication failed")
	}

	session := &share.Session{User: account, Domain: domain, IsGuest: guest}
	uid := req.Conn.BindSession(session)
	req.Message.Header.UID = uid

	// Bytes 0-3 are the AndX chain header (nextCommandId, reserved,
	// nextOffset), filled in once the full response chain is known; Action
	// follows it at byte 4.
	respParams := make([]byte, 6)
	if guest {
		binutil.WriteU16LE(respParams, 4, 1)
	}

	respData := make([]byte, 0, 32)
	respData = append(respData, binutil.EncodeUTF16LE("go-smb1")...)
	respData = append(respData, 0, 0)
	respData = append(respData, binutil.EncodeUTF16LE("go-smb1")...)
	respData = append(respData, 0, 0)

	return dispatch.Ok(respParams, respData)
}
