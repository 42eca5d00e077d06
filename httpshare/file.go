package httpshare

import (
	"context"
	"path"
	"time"

	"github.com/macos-fuse-t/go-smb1/internal/rectifier"
	"github.com/macos-fuse-t/go-smb1/internal/share"
	"github.com/macos-fuse-t/go-smb1/stats"
)

// File is one open FID against a manifest entry, backed by a
// Rectifier that turns sequential SMB reads into one ranged HTTP GET.
type File struct {
	share.ReadOnly

	tree  *Tree
	entry ManifestEntry
	fid   uint16

	rect *rectifier.Rectifier
}

func newFile(t *Tree, entry ManifestEntry, fid uint16) *File {
	return &File{
		tree:  t,
		entry: entry,
		fid:   fid,
		rect:  rectifier.New(t.share.client, entry.URL, entry.Headers, entry.Size, 0),
	}
}

func (f *File) Name() string            { return path.Base(f.entry.Path) }
func (f *File) Path() string            { return f.entry.Path }
func (f *File) FID() uint16             { return f.fid }
func (f *File) IsDirectory() bool       { return false }
func (f *File) Size() uint64            { return uint64(f.entry.Size) }
func (f *File) AllocationSize() uint64  { return uint64(f.entry.Size) }
func (f *File) GetAttributes() uint32   { return 0x20 } // FILE_ATTRIBUTE_ARCHIVE
func (f *File) GetCreateAction() uint32 { return share.FileOpenedAction }

func (f *File) Times() share.Times {
	return share.Times{
		Created:      f.entry.ModTime,
		LastModified: f.entry.ModTime,
		LastChanged:  f.entry.ModTime,
		LastAccessed: f.entry.ModTime,
	}
}

// Read serves length bytes starting at pos, blocking until the
// Rectifier's upstream GET has delivered at least that far.
func (f *File) Read(buf []byte, off int, length int, pos int64) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	ready, err := f.rect.When(ctx, pos+int64(length))
	if err != nil {
		return 0, err
	}
	select {
	case <-ready:
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	if err := f.rect.Err(); err != nil {
		return 0, err
	}
	n, err := f.rect.Read(buf, off, length, pos)
	if n > 0 {
		stats.AddReadBytes(f.tree.share.Name, uint64(n))
	}
	return n, err
}

func (f *File) Close() error {
	return f.rect.Close()
}

var _ share.File = (*File)(nil)
