package handlers

import (
	"github.com/macos-fuse-t/go-smb1/internal/dispatch"
	"github.com/macos-fuse-t/go-smb1/internal/smberr"
)

// Delete implements SMB_COM_DELETE (0x06): resolves the (possibly
// wildcarded) filename pattern in the request data against the tree
// and deletes every match. An empty match list is itself an error
// (STATUS_NO_SUCH_FILE), and the first failure among a multi-file
// wildcard delete wins — the rest are left untouched.
func Delete(req *dispatch.Request) dispatch.Result {
	tree, errRes := preflightTree(req)
	if errRes != nil {
		return *errRes
	}

	pattern, _ := readAlignedUnicodeString(req.Data, req.DataOffset, 1)

	matches, err := tree.List(pattern)
	if err != nil {
		return dispatch.ErrFrom(err)
	}
	if len(matches) == 0 {
		return dispatch.Err(smberr.STATUS_NO_SUCH_FILE, "no files match "+pattern)
	}

	for _, f := range matches {
		if f.IsDirectory() {
			continue
		}
		if err := f.Delete(); err != nil {
			return dispatch.ErrFrom(err)
		}
	}

	return dispatch.Ok(nil, nil)
}
