package handlers

import (
	"testing"

	"github.com/macos-fuse-t/go-smb1/internal/binutil"
	"github.com/macos-fuse-t/go-smb1/internal/dispatch"
	"github.com/macos-fuse-t/go-smb1/internal/ntlm"
	"github.com/macos-fuse-t/go-smb1/internal/share"
	"github.com/macos-fuse-t/go-smb1/internal/smb1"
)

// fakeFile is a minimal in-memory share.File for exercising handlers
// without a real backend.
type fakeFile struct {
	share.ReadOnly
	name    string
	fid     uint16
	size    uint64
	isDir   bool
	body    []byte
	deleted bool
}

// Delete overrides the ReadOnly mixin's STATUS_NOT_SUPPORTED stub so
// Delete-handler tests can exercise a backend that actually deletes.
func (f *fakeFile) Delete() error {
	f.deleted = true
	return nil
}

func (f *fakeFile) Name() string          { return f.name }
func (f *fakeFile) Path() string          { return f.name }
func (f *fakeFile) FID() uint16           { return f.fid }
func (f *fakeFile) IsDirectory() bool     { return f.isDir }
func (f *fakeFile) Size() uint64          { return f.size }
func (f *fakeFile) AllocationSize() uint64 { return f.size }
func (f *fakeFile) GetAttributes() uint32 { return 0x20 }
func (f *fakeFile) GetCreateAction() uint32 { return share.FileOpenedAction }
func (f *fakeFile) Times() share.Times    { return share.Times{} }
func (f *fakeFile) Close() error          { return nil }

func (f *fakeFile) Read(buf []byte, off int, length int, pos int64) (int, error) {
	n := copy(buf[:length], f.body[pos:])
	return n, nil
}

// fakeTree is a minimal in-memory share.Tree backing fakeFile handles.
type fakeTree struct {
	files              map[uint16]*fakeFile
	namedPipe          bool
	listResult         []share.File
	listErr            error
	openResult         share.File
	openErr            error
	openOrCreateResult share.File
	openOrCreateAction uint32
	openOrCreateErr    error
	renameTarget       string
	renameCalls        int
	disconnectErr      error
	disconnectCalls    int
}

func newFakeTree(files ...*fakeFile) *fakeTree {
	m := make(map[uint16]*fakeFile)
	for _, f := range files {
		m[f.fid] = f
	}
	return &fakeTree{files: m}
}

func (t *fakeTree) IsNamedPipe() bool { return t.namedPipe }
func (t *fakeTree) Open(name string) (share.File, error) { return t.openResult, t.openErr }
func (t *fakeTree) OpenOrCreate(name string, disposition share.CreateDisposition, isDir bool) (share.File, uint32, error) {
	return t.openOrCreateResult, t.openOrCreateAction, t.openOrCreateErr
}
func (t *fakeTree) List(pattern string) ([]share.File, error) { return t.listResult, t.listErr }
func (t *fakeTree) Rename(file share.File, targetPath string) error {
	t.renameCalls++
	t.renameTarget = targetPath
	return nil
}
func (t *fakeTree) CloseFile(fid uint16) error { delete(t.files, fid); return nil }
func (t *fakeTree) GetFile(fid uint16) (share.File, bool) {
	f, ok := t.files[fid]
	return f, ok
}
func (t *fakeTree) Disconnect() error {
	t.disconnectCalls++
	return t.disconnectErr
}

// fakeShare is a minimal share.Share for exercising TreeConnectAndX.
type fakeShare struct {
	namedPipe bool
	tree      share.Tree
	connErr   error
}

func (s *fakeShare) IsNamedPipe() bool { return s.namedPipe }
func (s *fakeShare) Connect(session *share.Session, sharePassword string) (share.Tree, error) {
	return s.tree, s.connErr
}

// fakeConn is a minimal dispatch.Conn backed by a single fake tree.
type fakeConn struct {
	tree     share.Tree
	tid      uint16
	sent     []*smb1.Message
	sessions map[uint16]*share.Session
	shares   map[string]share.Share
	ntlmSrv  *ntlm.Server
	unbound  []uint16
	bound    []share.Tree
}

func (c *fakeConn) Tree(tid uint16) (share.Tree, bool) {
	if tid != c.tid {
		return nil, false
	}
	return c.tree, true
}
func (c *fakeConn) BindTree(t share.Tree) uint16 {
	c.bound = append(c.bound, t)
	return 1
}
func (c *fakeConn) UnbindTree(tid uint16) { c.unbound = append(c.unbound, tid) }
func (c *fakeConn) SessionByUID(uid uint16) (*share.Session, bool) {
	if c.sessions == nil {
		return nil, false
	}
	s, ok := c.sessions[uid]
	return s, ok
}
func (c *fakeConn) BindSession(s *share.Session) uint16 {
	if c.sessions == nil {
		c.sessions = make(map[uint16]*share.Session)
	}
	s.UID = 1
	c.sessions[1] = s
	return 1
}
func (c *fakeConn) ShareByName(name string) (share.Share, bool) {
	if c.shares == nil {
		return nil, false
	}
	sh, ok := c.shares[name]
	return sh, ok
}
func (c *fakeConn) NTLM() *ntlm.Server {
	if c.ntlmSrv == nil {
		c.ntlmSrv = ntlm.NewServer("TEST")
	}
	return c.ntlmSrv
}
func (c *fakeConn) Challenge() [8]byte { return [8]byte{} }
func (c *fakeConn) SendRaw(msg *smb1.Message) error {
	c.sent = append(c.sent, msg)
	return nil
}

var _ dispatch.Conn = (*fakeConn)(nil)

func TestReadAndXServesExactByteLayout(t *testing.T) {
	body := []byte{0x01, 0x02, 0x03}
	f := &fakeFile{name: "a.bin", fid: 7, size: uint64(len(body)), body: body}
	conn := &fakeConn{tree: newFakeTree(f), tid: 1}

	params := make([]byte, 20)
	binutil.WriteU16LE(params, 4, 7)     // fid
	binutil.WriteU32LE(params, 6, 0)     // offset
	binutil.WriteU16LE(params, 10, 1024) // maxCount low

	req := &dispatch.Request{
		Message:    &smb1.Message{Header: smb1.Header{TID: 1}},
		Params:     params,
		Data:       nil,
		DataOffset: 0,
		Conn:       conn,
	}

	res := ReadAndX(req)
	if res.Kind != dispatch.KindOk {
		t.Fatalf("ReadAndX returned %+v, want KindOk", res)
	}
	if len(res.Params) != 24 {
		t.Fatalf("response params length = %d, want 24", len(res.Params))
	}
	if got := binutil.ReadU16LE(res.Params, 10); got != uint16(len(body)) {
		t.Errorf("DataLength = %d, want %d", got, len(body))
	}
	if got := binutil.ReadU16LE(res.Params, 12); got != smb1.DATA_OFFSET {
		t.Errorf("DataOffset = %d, want %d", got, smb1.DATA_OFFSET)
	}
	// One pad byte then the 3-byte body.
	if len(res.Data) != 1+len(body) {
		t.Fatalf("response data length = %d, want %d", len(res.Data), 1+len(body))
	}
	if string(res.Data[1:]) != string(body) {
		t.Errorf("response payload = %v, want %v", res.Data[1:], body)
	}
}

func TestReadAndXUnknownFID(t *testing.T) {
	conn := &fakeConn{tree: newFakeTree(), tid: 1}
	params := make([]byte, 20)
	binutil.WriteU16LE(params, 4, 99) // fid not present in tree

	req := &dispatch.Request{
		Message: &smb1.Message{Header: smb1.Header{TID: 1}},
		Params:  params,
		Conn:    conn,
	}

	res := ReadAndX(req)
	if res.Kind != dispatch.KindErr {
		t.Fatalf("expected KindErr for an unknown FID, got %+v", res)
	}
}

func TestCloseReleasesFID(t *testing.T) {
	f := &fakeFile{name: "a.bin", fid: 3}
	tree := newFakeTree(f)
	conn := &fakeConn{tree: tree, tid: 1}

	params := make([]byte, 6)
	binutil.WriteU16LE(params, 0, 3)

	req := &dispatch.Request{
		Message: &smb1.Message{Header: smb1.Header{TID: 1}},
		Params:  params,
		Conn:    conn,
	}

	res := Close(req)
	if res.Kind != dispatch.KindOk {
		t.Fatalf("Close returned %+v, want KindOk", res)
	}
	if _, ok := tree.GetFile(3); ok {
		t.Fatal("expected fid to be released after Close")
	}
}
