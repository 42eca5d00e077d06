package handlers

import (
	"testing"

	"github.com/macos-fuse-t/go-smb1/internal/smb1"
)

func TestTableRegistersEveryCoreOpcode(t *testing.T) {
	table := Table()
	want := []uint8{
		smb1.SMB_COM_NEGOTIATE,
		smb1.SMB_COM_SESSION_SETUP_ANDX,
		smb1.SMB_COM_LOGOFF_ANDX,
		smb1.SMB_COM_TREE_CONNECT_ANDX,
		smb1.SMB_COM_TREE_DISCONNECT,
		smb1.SMB_COM_NT_CREATE_ANDX,
		smb1.SMB_COM_READ_ANDX,
		smb1.SMB_COM_WRITE_ANDX,
		smb1.SMB_COM_CLOSE,
		smb1.SMB_COM_DELETE,
		smb1.SMB_COM_ECHO,
		smb1.SMB_COM_TRANSACTION2,
		smb1.SMB_COM_TRANSACTION2_ANDX,
	}
	for _, cmd := range want {
		if _, ok := table[cmd]; !ok {
			t.Errorf("Table() missing a handler for opcode %v", cmd)
		}
	}
	if len(table) != len(want) {
		t.Errorf("Table() has %d entries, want exactly %d", len(table), len(want))
	}
}
