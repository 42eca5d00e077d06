package share

import "github.com/macos-fuse-t/go-smb1/internal/smberr"

// Write, SetLength, SetLastModifiedTime, SetDeleteOnClose, and Delete
// all report STATUS_NOT_SUPPORTED for an embedder of ReadOnly, so a
// read-only backend only has to implement the read-side File methods.

func (ReadOnly) Write(buf []byte, off int, length int, pos int64) (int, error) {
	return 0, smberr.New(smberr.STATUS_NOT_SUPPORTED, "write not supported on a read-only share")
}

func (ReadOnly) SetLength(n uint64) error {
	return smberr.New(smberr.STATUS_NOT_SUPPORTED, "truncate not supported on a read-only share")
}

func (ReadOnly) SetLastModifiedTime(ms int64) error {
	return smberr.New(smberr.STATUS_NOT_SUPPORTED, "setting mtime not supported on a read-only share")
}

func (ReadOnly) SetDeleteOnClose() error {
	return smberr.New(smberr.STATUS_NOT_SUPPORTED, "delete not supported on a read-only share")
}

func (ReadOnly) Delete() error {
	return smberr.New(smberr.STATUS_NOT_SUPPORTED, "delete not supported on a read-only share")
}

func (ReadOnly) Flush() error {
	return nil
}
