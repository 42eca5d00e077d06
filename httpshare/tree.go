package httpshare

import (
	"sync"

	"github.com/macos-fuse-t/go-smb1/internal/share"
	"github.com/macos-fuse-t/go-smb1/internal/smberr"
	"github.com/macos-fuse-t/go-smb1/stats"
)

// Tree is one connected instance of a Share, scoped to a single TID.
// FID allocation and the open-file table are owned here, not by the
// caller, matching how a real filesystem tree tracks its own handles.
type Tree struct {
	share   *Share
	session *share.Session

	mu      sync.Mutex
	nextFID uint16
	files   map[uint16]*File
}

func newTree(s *Share, session *share.Session) *Tree {
	return &Tree{
		share:   s,
		session: session,
		files:   make(map[uint16]*File),
	}
}

func (t *Tree) IsNamedPipe() bool {
	return t.share.IsNamedPipe()
}

func (t *Tree) Open(name string) (share.File, error) {
	entry, ok := t.share.manifest.find(name)
	if !ok {
		return nil, smberr.New(smberr.STATUS_NO_SUCH_FILE, "no such file: "+name)
	}
	return t.bind(entry), nil
}

func (t *Tree) OpenOrCreate(name string, disposition share.CreateDisposition, isDir bool) (share.File, uint32, error) {
	entry, ok := t.share.manifest.find(name)
	if !ok {
		switch disposition {
		case share.FileCreate, share.FileOpenIf, share.FileOverwriteIf:
			return nil, 0, notSupported("file creation")
		default:
			return nil, 0, smberr.New(smberr.STATUS_NO_SUCH_FILE, "no such file: "+name)
		}
	}
	switch disposition {
	case share.FileCreate:
		return nil, 0, smberr.New(smberr.STATUS_OBJECT_NAME_COLLISION, "file already exists: "+name)
	case share.FileSupersede, share.FileOverwrite, share.FileOverwriteIf:
		return nil, 0, notSupported("file overwrite")
	}
	return t.bind(entry), share.FileOpenedAction, nil
}

func (t *Tree) bind(entry ManifestEntry) *File {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextFID++
	fid := t.nextFID
	f := newFile(t, entry, fid)
	t.files[fid] = f
	stats.AddOpen(t.share.Name)
	return f
}

func (t *Tree) List(pattern string) ([]share.File, error) {
	dir, namePattern := splitDir(normalizePath(pattern))
	entries := t.share.manifest.list(dir, namePattern)
	out := make([]share.File, 0, len(entries))
	for _, e := range entries {
		out = append(out, t.bind(e))
	}
	return out, nil
}

func (t *Tree) Rename(file share.File, targetPath string) error {
	return notSupported("rename")
}

func (t *Tree) CloseFile(fid uint16) error {
	t.mu.Lock()
	f, ok := t.files[fid]
	delete(t.files, fid)
	t.mu.Unlock()
	if !ok {
		return smberr.New(smberr.STATUS_SMB_BAD_FID, "unknown fid")
	}
	return f.Close()
}

func (t *Tree) GetFile(fid uint16) (share.File, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	f, ok := t.files[fid]
	return f, ok
}

func (t *Tree) Disconnect() error {
	t.mu.Lock()
	files := make([]*File, 0, len(t.files))
	for _, f := range t.files {
		files = append(files, f)
	}
	t.files = make(map[uint16]*File)
	t.mu.Unlock()

	for _, f := range files {
		f.Close()
	}
	return nil
}

var _ share.Tree = (*Tree)(nil)
