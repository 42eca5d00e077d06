package handlers

import (
	"github.com/macos-fuse-t/go-smb1/internal/binutil"
	"github.com/macos-fuse-t/go-smb1/internal/dispatch"
	"github.com/macos-fuse-t/go-smb1/internal/share"
	"github.com/macos-fuse-t/go-smb1/internal/smb1"
	"github.com/macos-fuse-t/go-smb1/internal/smberr"
)

// trans2Request is a TRANS2's nested parameter/data blocks, which live
// inside the outer SMB command's data section at offsets the outer
// params spell out relative to the header, not relative to that data
// section — every sub-handler works from this instead of req.Params
// directly.
type trans2Request struct {
	setup       uint16
	params      []byte
	data        []byte
	paramOffset uint32 // absolute offset of `params`'s first byte, for aligned string reads
	dataOffset  uint32 // absolute offset of `data`'s first byte, for aligned string reads
}

func parseTrans2(req *dispatch.Request) (*trans2Request, error) {
	p := req.Params
	if len(p) < 30 {
		return nil, smberr.New(smberr.STATUS_UNSUCCESSFUL, "trans2 params too short")
	}
	paramCount := int(binutil.ReadU16LE(p, 18))
	paramOffset := int(binutil.ReadU16LE(p, 20))
	dataCount := int(binutil.ReadU16LE(p, 22))
	dataOffset := int(binutil.ReadU16LE(p, 24))
	setupCount := p[26]

	var setup uint16
	if setupCount >= 1 && len(p) >= 30 {
		setup = binutil.ReadU16LE(p, 28)
	}

	base := int(req.DataOffset)
	relParam := paramOffset - base
	relData := dataOffset - base
	if relParam < 0 || relParam+paramCount > len(req.Data) || relData < 0 || relData+dataCount > len(req.Data) {
		return nil, smberr.New(smberr.STATUS_UNSUCCESSFUL, "trans2 nested offsets out of range")
	}

	return &trans2Request{
		setup:       setup,
		params:      req.Data[relParam : relParam+paramCount],
		data:        req.Data[relData : relData+dataCount],
		paramOffset: uint32(paramOffset),
		dataOffset:  uint32(dataOffset),
	}, nil
}

// buildTrans2Response packs params/data back into the flat layout
// TRANS2's SMB_Data section carries: parameters immediately followed by
// data, both self-describing via the outer response's ParameterCount /
// DataCount fields (the response is never AndX-chained, so there is no
// pad-to-DATA_OFFSET concern here).
func buildTrans2Response(params, data []byte) ([]byte, []byte) {
	respParams := make([]byte, 20)
	binutil.WriteU16LE(respParams, 0, uint16(len(params))) // TotalParameterCount
	binutil.WriteU16LE(respParams, 2, uint16(len(data)))   // TotalDataCount
	binutil.WriteU16LE(respParams, 6, uint16(len(params))) // ParameterCount
	binutil.WriteU16LE(respParams, 8, 55)                  // ParameterOffset (right after this fixed response params block plus wordcount/bytecount)
	binutil.WriteU16LE(respParams, 12, uint16(len(data)))  // DataCount
	binutil.WriteU16LE(respParams, 14, uint16(55+len(params)))

	respData := make([]byte, 0, len(params)+len(data))
	respData = append(respData, params...)
	respData = append(respData, data...)
	return respParams, respData
}

// Trans2 implements SMB_COM_TRANSACTION2 / SMB_COM_TRANSACTION2_ANDX
// (0x32/0x33): dispatches to the sub-command named in the transaction's
// Setup[0] word.
func Trans2(req *dispatch.Request) dispatch.Result {
	t, err := parseTrans2(req)
	if err != nil {
		return dispatch.ErrFrom(err)
	}

	switch t.setup {
	case smb1.TRANS2_FIND_FIRST2:
		return findFirst2(req, t)
	case smb1.TRANS2_FIND_NEXT2:
		return findNext2(req, t)
	case smb1.TRANS2_QUERY_PATH_INFORMATION:
		return trans2QueryPathInformation(req, t)
	case smb1.TRANS2_QUERY_FILE_INFORMATION:
		return trans2QueryFileInformation(req, t)
	case smb1.TRANS2_SET_FILE_INFORMATION:
		return trans2SetFileInformation(req, t)
	default:
		return dispatch.Err(smberr.STATUS_NOT_IMPLEMENTED, "unsupported trans2 subcommand")
	}
}

func trans2QueryPathInformation(req *dispatch.Request, t *trans2Request) dispatch.Result {
	tree, errRes := preflightTree(req)
	if errRes != nil {
		return *errRes
	}
	if len(t.params) < 6 {
		return dispatch.Err(smberr.STATUS_UNSUCCESSFUL, "query path info params too short")
	}
	level := binutil.ReadU16LE(t.params, 0)
	name, _ := readAlignedUnicodeString(t.params, t.paramOffset, 6)

	f, err := tree.Open(name)
	if err != nil {
		return dispatch.ErrFrom(err)
	}
	data, err := encodeFileInformation(f, level)
	if err != nil {
		return dispatch.ErrFrom(err)
	}

	respParams, respData := buildTrans2Response(nil, data)
	return dispatch.Ok(respParams, respData)
}

func trans2QueryFileInformation(req *dispatch.Request, t *trans2Request) dispatch.Result {
	tree, errRes := preflightTree(req)
	if errRes != nil {
		return *errRes
	}
	if len(t.params) < 4 {
		return dispatch.Err(smberr.STATUS_UNSUCCESSFUL, "query file info params too short")
	}
	fid := binutil.ReadU16LE(t.params, 0)
	level := binutil.ReadU16LE(t.params, 2)

	f, errRes := preflightFile(tree, fid)
	if errRes != nil {
		return *errRes
	}
	data, err := encodeFileInformation(f, level)
	if err != nil {
		return dispatch.ErrFrom(err)
	}

	respParams, respData := buildTrans2Response(nil, data)
	return dispatch.Ok(respParams, respData)
}

func trans2SetFileInformation(req *dispatch.Request, t *trans2Request) dispatch.Result {
	tree, errRes := preflightTree(req)
	if errRes != nil {
		return *errRes
	}
	if len(t.params) < 4 {
		return dispatch.Err(smberr.STATUS_UNSUCCESSFUL, "set file info params too short")
	}
	fid := binutil.ReadU16LE(t.params, 0)
	level := binutil.ReadU16LE(t.params, 2)

	f, errRes := preflightFile(tree, fid)
	if errRes != nil {
		return *errRes
	}

	var err error
	switch level {
	case smb1.FILE_DISPOSITION_INFORMATION:
		if len(t.data) >= 1 && t.data[0] != 0 {
			err = f.SetDeleteOnClose()
		}
	case smb1.FILE_END_OF_FILE_INFORMATION:
		if len(t.data) >= 8 {
			err = f.SetLength(binutil.ReadU64LE(t.data, 0))
		}
	case smb1.FILE_ALLOCATION_INFORMATION:
		// Accepted and acknowledged but never applied: allocation size is
		// a hint about future writes, and this tree never grows a file
		// ahead of an actual write the way a local filesystem would.
	case smb1.FILE_RENAME_INFORMATION:
		// ReplaceIfExists(1)+Reserved(3)+RootDirectoryHandle(4) precede
		// FileNameLength@8-11; the target name itself starts at 12.
		if len(t.data) >= 12 {
			nameLen := int(binutil.ReadU32LE(t.data, 8))
			target, _ := readAlignedUnicodeString(t.data[:min(len(t.data), 12+nameLen+2)], t.dataOffset, 12)
			err = tree.Rename(f, target)
		}
	default:
		return dispatch.Err(smberr.STATUS_NOT_IMPLEMENTED, "unsupported set-file-information level")
	}
	if err != nil {
		return dispatch.ErrFrom(err)
	}

	respParams, respData := buildTrans2Response(make([]byte, 2), nil)
	return dispatch.Ok(respParams, respData)
}

func encodeFileInformation(f share.File, level uint16) ([]byte, error) {
	times := f.Times()
	switch level {
	case smb1.FILE_BASIC_INFORMATION:
		b := make([]byte, 40)
		binutil.WriteU64LE(b, 0, binutil.SystemToSMBTime(times.Created))
		binutil.WriteU64LE(b, 8, binutil.SystemToSMBTime(times.LastAccessed))
		binutil.WriteU64LE(b, 16, binutil.SystemToSMBTime(times.LastModified))
		binutil.WriteU64LE(b, 24, binutil.SystemToSMBTime(times.LastChanged))
		binutil.WriteU32LE(b, 32, f.GetAttributes())
		return b, nil

	case smb1.FILE_STANDARD_INFORMATION:
		b := make([]byte, 24)
		binutil.WriteU64LE(b, 0, f.AllocationSize())
		binutil.WriteU64LE(b, 8, f.Size())
		if f.IsDirectory() {
			b[20] = 1
		}
		return b, nil

	case smb1.FILE_ALL_INFORMATION:
		basic, _ := encodeFileInformation(f, smb1.FILE_BASIC_INFORMATION)
		std, _ := encodeFileInformation(f, smb1.FILE_STANDARD_INFORMATION)
		nameBytes := binutil.EncodeUTF16LE(f.Name())
		b := make([]byte, 0, len(basic)+len(std)+4+8+4+4+len(nameBytes))
		b = append(b, basic...)
		b = append(b, std...)
		b = append(b, make([]byte, 32)...) // Internal(8), Ea(4), Access(4), Position(8), Mode(4), Alignment(4) information, all zero
		nameLen := make([]byte, 4)
		binutil.WriteU32LE(nameLen, 0, uint32(len(nameBytes)))
		b = append(b, nameLen...)
		b = append(b, nameBytes...)
		return b, nil

	default:
		return nil, smberr.New(smberr.STATUS_NOT_IMPLEMENTED, "unsupported query-information level")
	}
}
