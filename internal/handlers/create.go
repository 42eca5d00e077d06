package handlers

import (
	"github.com/macos-fuse-t/go-smb1/internal/binutil"
	"github.com/macos-fuse-t/go-smb1/internal/dispatch"
	"github.com/macos-fuse-t/go-smb1/internal/share"
	"github.com/macos-fuse-t/go-smb1/internal/smb1"
	"github.com/macos-fuse-t/go-smb1/internal/smberr"
)

// extendedRespWordCount is what real clients expect a NT_CREATE_ANDX
// extended response's wordCount field to read: not the true word count
// of the extended response params (extendedCreateRespWords, 50), but the
// legacy 0x2a value every implementation this server has been tested
// against still hardcodes.
const extendedRespWordCount = 0x2a

// readOnlyMaximalAccess is the access mask this read-only backend grants:
// FILE_READ_DATA | FILE_READ_ATTRIBUTES | FILE_READ_EA | READ_CONTROL |
// SYNCHRONIZE. Reported as both MaximalAccessRights and
// GuestMaximalAccessRights in the extended NT_CREATE_ANDX response tail,
// since this server never distinguishes guest from authenticated access.
const readOnlyMaximalAccess = 0x00120089

// NtCreateAndX implements SMB_COM_NT_CREATE_ANDX (0xA2): opens or
// creates a file or directory and returns its FID plus attributes.
func NtCreateAndX(req *dispatch.Request) dispatch.Result {
	tree, errRes := preflightTree(req)
	if errRes != nil {
		return *errRes
	}

	p := req.Params
	if len(p) < 48 {
		return dispatch.Err(smberr.STATUS_UNSUCCESSFUL, "nt create params too short")
	}

	nameLen := int(binutil.ReadU16LE(p, 5))
	flags := binutil.ReadU32LE(p, 7)
	createOptions := binutil.ReadU32LE(p, 39)

	name, _ := readAlignedUnicodeString(append(req.Data[:nameLen:nameLen], 0, 0), req.DataOffset, 0)

	isDir := flags&smb1.NTCREATE_FLAGS_OPEN_DIRECTORY != 0 || createOptions&smb1.FILE_DIRECTORY_FILE != 0
	disposition := share.CreateDisposition(binutil.ReadU32LE(p, 35))

	f, action, err := tree.OpenOrCreate(name, disposition, isDir)
	if err != nil {
		return dispatch.ErrFrom(err)
	}
	if createOptions&smb1.FILE_DELETE_ON_CLOSE != 0 {
		if err := f.SetDeleteOnClose(); err != nil {
			return dispatch.ErrFrom(err)
		}
	}

	extended := flags&smb1.NTCREATE_FLAGS_EXTENDED_RESPONSE != 0
	respParams := buildCreateResponse(f, action, isDir, extended)
	if tree.IsNamedPipe() {
		binutil.WriteU16LE(respParams, 63, smb1.FILE_TYPE_MESSAGEMODEPIPE) // ResourceType
	}

	// The extended-response layout runs to extendedCreateRespWords words,
	// but every client this server has been tested against still expects
	// wordCount to read the legacy 0x2a fixed value rather than the true
	// length — the parser sizes the params buffer off the fixed struct,
	// not off wordCount, for this one response.
	var wc *uint8
	if extended {
		v := uint8(extendedRespWordCount)
		wc = &v
	}
	return dispatch.Result{
		Kind:      dispatch.KindOk,
		Status:    smberr.STATUS_SUCCESS,
		Params:    respParams,
		Data:      nil,
		WordCount: wc,
	}
}

// baseCreateRespWords is the classic (non-extended) NT_CREATE_ANDX
// response length: 34 words (68 bytes) per MS-CIFS 2.2.4.64.2.
const baseCreateRespWords = 34

// extendedCreateRespWords is the extended-response body's true word
// count once the ZERO_GUID/FileId/MaximalAccessRights tail is appended
// after ResourceType. The wire WordCount field is still forced to
// extendedRespWordCount regardless (see NtCreateAndX).
const extendedCreateRespWords = 50

func buildCreateResponse(f share.File, action uint32, isDir, extended bool) []byte {
	times := f.Times()

	size := baseCreateRespWords * 2
	if extended {
		size = extendedCreateRespWords * 2
	}
	b := make([]byte, size)

	b[0] = 0xFF // AndXCommand
	// b[1] AndXReserved, b[2..3] AndXOffset patched by dispatch chain link
	// b[4] OplockLevel left 0 (no oplocks granted)
	binutil.WriteU16LE(b, 5, f.FID())
	binutil.WriteU32LE(b, 7, action)
	binutil.WriteU64LE(b, 11, binutil.SystemToSMBTime(times.Created))
	binutil.WriteU64LE(b, 19, binutil.SystemToSMBTime(times.LastAccessed))
	binutil.WriteU64LE(b, 27, binutil.SystemToSMBTime(times.LastModified))
	binutil.WriteU64LE(b, 35, binutil.SystemToSMBTime(times.LastChanged))
	binutil.WriteU32LE(b, 43, f.GetAttributes())
	binutil.WriteU64LE(b, 47, f.AllocationSize())
	binutil.WriteU64LE(b, 55, f.Size())
	binutil.WriteU16LE(b, 63, smb1.FILE_TYPE_DISK)

	if extended {
		// FileStatusFlags@65-66, DirectoryFlag@67, ZERO_GUID@68-83,
		// FileId@84-91, MaximalAccessRights@92-95,
		// GuestMaximalAccessRights@96-99.
		binutil.WriteU16LE(b, 65, smb1.NO_EAS|smb1.NO_SUBSTREAMS|smb1.NO_REPARSETAG)
		if isDir {
			b[67] = 1
		}
		binutil.WriteU32LE(b, 92, readOnlyMaximalAccess)
		binutil.WriteU32LE(b, 96, readOnlyMaximalAccess)
	} else {
		// NMPipeStatus2@65-66 left zero, DirectoryFlag@67.
		if isDir {
			b[67] = 1
		}
	}
	return b
}
