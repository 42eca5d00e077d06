package handlers

import (
	"testing"

	"github.com/macos-fuse-t/go-smb1/internal/binutil"
	"github.com/macos-fuse-t/go-smb1/internal/dispatch"
	"github.com/macos-fuse-t/go-smb1/internal/smb1"
)

func TestEchoSendsOneReplyPerRepetitionAndReturnsAlreadyReplied(t *testing.T) {
	conn := &fakeConn{}

	params := make([]byte, 2)
	binutil.WriteU16LE(params, 0, 3)

	req := &dispatch.Request{
		Message: &smb1.Message{Header: smb1.Header{}},
		Params:  params,
		Conn:    conn,
	}

	res := Echo(req)
	if res.Kind != dispatch.KindAlreadyReplied {
		t.Fatalf("Echo returned %+v, want KindAlreadyReplied", res)
	}
	if len(conn.sent) != 3 {
		t.Fatalf("expected 3 echoed replies, got %d", len(conn.sent))
	}
	for i, msg := range conn.sent {
		seq := binutil.ReadU16LE(msg.Commands[0].Params, 0)
		if seq != uint16(i+1) {
			t.Errorf("reply %d SequenceNumber = %d, want %d", i, seq, i+1)
		}
	}
}

func TestEchoTreatsZeroCountAsOne(t *testing.T) {
	conn := &fakeConn{}
	params := make([]byte, 2) // count = 0

	req := &dispatch.Request{
		Message: &smb1.Message{Header: smb1.Header{}},
		Params:  params,
		Conn:    conn,
	}

	Echo(req)
	if len(conn.sent) != 1 {
		t.Fatalf("expected exactly 1 reply for a zero count, got %d", len(conn.sent))
	}
}
