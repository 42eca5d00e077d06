package server

import (
	"net"
	"testing"

	"github.com/macos-fuse-t/go-smb1/internal/ntlm"
	"github.com/macos-fuse-t/go-smb1/internal/share"
	"github.com/macos-fuse-t/go-smb1/internal/smb1"
	"github.com/macos-fuse-t/go-smb1/transport"
)

// stubTree is a no-op share.Tree for exercising Connection's own
// bookkeeping, independent of any concrete backend.
type stubTree struct {
	disconnected bool
}

func (t *stubTree) IsNamedPipe() bool                    { return false }
func (t *stubTree) Open(name string) (share.File, error) { return nil, nil }
func (t *stubTree) OpenOrCreate(name string, disposition share.CreateDisposition, isDir bool) (share.File, uint32, error) {
	return nil, 0, nil
}
func (t *stubTree) List(pattern string) ([]share.File, error)       { return nil, nil }
func (t *stubTree) Rename(file share.File, targetPath string) error { return nil }
func (t *stubTree) CloseFile(fid uint16) error                      { return nil }
func (t *stubTree) GetFile(fid uint16) (share.File, bool)           { return nil, false }
func (t *stubTree) Disconnect() error                               { t.disconnected = true; return nil }

func newTestConnection(t *testing.T) (*Connection, net.Conn) {
	t.Helper()
	client, srv := net.Pipe()
	shares := map[string]share.Share{}
	conn, err := newConnection(srv, shares, ntlm.NewServer("TEST"))
	if err != nil {
		t.Fatalf("newConnection: %v", err)
	}
	return conn, client
}

func TestBindTreeAllocatesIncrementingTIDs(t *testing.T) {
	conn, client := newTestConnection(t)
	defer client.Close()

	tid1 := conn.BindTree(&stubTree{})
	tid2 := conn.BindTree(&stubTree{})
	if tid1 == tid2 {
		t.Fatalf("expected distinct TIDs, got %d twice", tid1)
	}

	if _, ok := conn.Tree(tid1); !ok {
		t.Errorf("Tree(%d) not found after BindTree", tid1)
	}
	if _, ok := conn.Tree(9999); ok {
		t.Error("Tree() should not resolve an unbound TID")
	}
}

func TestUnbindTreeDisconnects(t *testing.T) {
	conn, client := newTestConnection(t)
	defer client.Close()

	tree := &stubTree{}
	tid := conn.BindTree(tree)
	conn.UnbindTree(tid)

	if !tree.disconnected {
		t.Error("expected UnbindTree to call Disconnect on the released tree")
	}
	if _, ok := conn.Tree(tid); ok {
		t.Error("Tree() should not resolve a TID after UnbindTree")
	}
}

func TestBindSessionSetsUIDAndLoggedIn(t *testing.T) {
	conn, client := newTestConnection(t)
	defer client.Close()

	s := &share.Session{User: "alice"}
	uid := conn.BindSession(s)

	if s.UID != uid {
		t.Errorf("session UID = %d, want %d", s.UID, uid)
	}
	if s.LoggedIn.IsZero() {
		t.Error("expected BindSession to stamp LoggedIn")
	}

	got, ok := conn.SessionByUID(uid)
	if !ok || got != s {
		t.Errorf("SessionByUID(%d) = %v, %v, want the bound session", uid, got, ok)
	}
}

func TestShareByNameIsCaseInsensitive(t *testing.T) {
	client, srv := net.Pipe()
	defer client.Close()
	sh := &stubShare{}
	conn, err := newConnection(srv, map[string]share.Share{"SHARE": sh}, ntlm.NewServer("TEST"))
	if err != nil {
		t.Fatalf("newConnection: %v", err)
	}

	if _, ok := conn.ShareByName("share"); !ok {
		t.Error("expected a lowercase lookup to resolve the uppercase-registered share")
	}
	if _, ok := conn.ShareByName("  Share  "); !ok {
		t.Error("expected surrounding whitespace to be trimmed")
	}
}

type stubShare struct{}

func (s *stubShare) IsNamedPipe() bool { return false }
func (s *stubShare) Connect(session *share.Session, sharePassword string) (share.Tree, error) {
	return &stubTree{}, nil
}

func TestSendRawWritesAnNBSSFramedMessage(t *testing.T) {
	conn, client := newTestConnection(t)
	defer client.Close()

	msg := &smb1.Message{
		Header:   smb1.Header{Command: smb1.SMB_COM_ECHO},
		Commands: []smb1.Command{{CommandId: smb1.SMB_COM_ECHO, Params: []byte{1, 2}, Data: nil}},
	}

	done := make(chan error, 1)
	go func() { done <- conn.SendRaw(msg) }()

	payload, err := transport.ReadMessage(client)
	if err != nil {
		t.Fatalf("transport.ReadMessage: %v", err)
	}
	if len(payload) == 0 {
		t.Fatal("expected a non-empty NBSS payload")
	}
	if err := <-done; err != nil {
		t.Fatalf("SendRaw: %v", err)
	}
}
