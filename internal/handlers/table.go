package handlers

import (
	"github.com/macos-fuse-t/go-smb1/internal/dispatch"
	"github.com/macos-fuse-t/go-smb1/internal/smb1"
)

// Table returns the full command dispatch table this server registers,
// wired once at startup and shared read-only across every connection.
func Table() dispatch.Table {
	return dispatch.Table{
		smb1.SMB_COM_NEGOTIATE:          Negotiate,
		smb1.SMB_COM_SESSION_SETUP_ANDX: SessionSetupAndX,
		smb1.SMB_COM_LOGOFF_ANDX:        LogoffAndX,
		smb1.SMB_COM_TREE_CONNECT_ANDX:  TreeConnectAndX,
		smb1.SMB_COM_TREE_DISCONNECT:    TreeDisconnect,
		smb1.SMB_COM_NT_CREATE_ANDX:     NtCreateAndX,
		smb1.SMB_COM_READ_ANDX:          ReadAndX,
		smb1.SMB_COM_WRITE_ANDX:         WriteAndX,
		smb1.SMB_COM_CLOSE:              Close,
		smb1.SMB_COM_DELETE:             Delete,
		smb1.SMB_COM_ECHO:               Echo,
		smb1.SMB_COM_TRANSACTION2:       Trans2,
		smb1.SMB_COM_TRANSACTION2_ANDX:  Trans2,
	}
}
