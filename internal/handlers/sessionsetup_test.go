package handlers

import (
	"testing"

	"github.com/macos-fuse-t/go-smb1/internal/binutil"
	"github.com/macos-fuse-t/go-smb1/internal/dispatch"
	"github.com/macos-fuse-t/go-smb1/internal/ntlm"
	"github.com/macos-fuse-t/go-smb1/internal/smb1"
)

func TestSessionSetupAndXRejectsGuestWhenDisabled(t *testing.T) {
	conn := &fakeConn{ntlmSrv: ntlm.NewServer("TEST")}
	conn.ntlmSrv.AllowGuest = false

	params := make([]byte, 26) // lmLen = ntLen = 0
	req := &dispatch.Request{
		Message: &smb1.Message{Header: smb1.Header{}},
		Params:  params,
		Data:    []byte{0, 0, 0, 0, 0, 0}, // empty account/domain/native-os strings
		Conn:    conn,
	}

	res := SessionSetupAndX(req)
	if res.Kind != dispatch.KindErr {
		t.Fatalf("expected KindErr with guest access disabled, got %+v", res)
	}
}

func TestSessionSetupAndXAllowsGuestWhenEnabled(t *testing.T) {
	conn := &fakeConn{ntlmSrv: ntlm.NewServer("TEST")}
	conn.ntlmSrv.AllowGuest = true

	params := make([]byte, 26)
	req := &dispatch.Request{
		Message: &smb1.Message{Header: smb1.Header{}},
		Params:  params,
		Data:    []byte{0, 0, 0, 0, 0, 0},
		Conn:    conn,
	}

	res := SessionSetupAndX(req)
	if res.Kind != dispatch.KindOk {
		t.Fatalf("SessionSetupAndX returned %+v, want KindOk for guest fallback", res)
	}
	if len(conn.sessions) != 1 {
		t.Fatalf("expected the guest session to be bound, got %d sessions", len(conn.sessions))
	}
	for _, s := range conn.sessions {
		if !s.IsGuest {
			t.Error("expected the bound session to be marked as guest")
		}
	}
}

func TestSessionSetupAndXRejectsBadCredentials(t *testing.T) {
	conn := &fakeConn{ntlmSrv: ntlm.NewServer("TEST")}
	conn.ntlmSrv.AddAccount("alice", "correct-password")

	params := make([]byte, 26)
	data := append(binutil.EncodeUTF16LE("alice"), 0, 0)
	req := &dispatch.Request{
		Message: &smb1.Message{Header: smb1.Header{}},
		Params:  params,
		Data:    data,
		Conn:    conn,
	}

	res := SessionSetupAndX(req)
	if res.Kind != dispatch.KindErr {
		t.Fatalf("expected KindErr for a bogus challenge response, got %+v", res)
	}
}
