package handlers

import (
	"github.com/macos-fuse-t/go-smb1/internal/binutil"
	"github.com/macos-fuse-t/go-smb1/internal/dispatch"
	"github.com/macos-fuse-t/go-smb1/internal/share"
	"github.com/macos-fuse-t/go-smb1/internal/smberr"
)

// findFirst2 implements TRANS2_FIND_FIRST2: resolves a wildcard search
// pattern within the tree and returns up to SearchCount matches in one
// batch, with EndOfSearch set once nothing remains.
func findFirst2(req *dispatch.Request, t *trans2Request) dispatch.Result {
	if len(t.params) < 12 {
		return dispatch.Err(smberr.STATUS_INVALID_PARAMETER, "find first2 params too short")
	}
	searchCount := int(binutil.ReadU16LE(t.params, 2))
	pattern, _ := readAlignedUnicodeString(t.params, t.paramOffset, 12)

	tree, errRes := preflightTree(req)
	if errRes != nil {
		return *errRes
	}
	matches, err := tree.List(pattern)
	if err != nil {
		return dispatch.ErrFrom(err)
	}

	endOfSearch := len(matches) <= searchCount
	if len(matches) > searchCount {
		matches = matches[:searchCount]
	}

	respParams := make([]byte, 10)
	binutil.WriteU16LE(respParams, 0, 1) // SID (search handle); this server never resumes across calls
	binutil.WriteU16LE(respParams, 2, uint16(len(matches)))
	if endOfSearch {
		binutil.WriteU16LE(respParams, 4, 1)
	}

	data := encodeDirectoryInformationFixed(matches)
	fullRespParams, fullRespData := buildTrans2Response(respParams, data)
	return dispatch.Ok(fullRespParams, fullRespData)
}

// findNext2 implements TRANS2_FIND_NEXT2. This server's Tree.List
// re-evaluates the pattern each call rather than tracking a live cursor
// across FIND_FIRST2/FIND_NEXT2 pairs, so a FIND_NEXT2 always reports
// end-of-search: the whole match set was already returned by the
// preceding FIND_FIRST2.
func findNext2(req *dispatch.Request, t *trans2Request) dispatch.Result {
	respParams := make([]byte, 8)
	binutil.WriteU16LE(respParams, 2, 1) // EndOfSearch
	fullRespParams, fullRespData := buildTrans2Response(respParams, nil)
	return dispatch.Ok(fullRespParams, fullRespData)
}

// encodeDirectoryInformationFixed builds the FILE_BOTH_DIRECTORY_INFORMATION
// run with correctly chained NextEntryOffset fields.
func encodeDirectoryInformationFixed(matches []share.File) []byte {
	entries := make([][]byte, 0, len(matches))
	for _, f := range matches {
		times := f.Times()
		nameBytes := binutil.EncodeUTF16LE(f.Name())

		entry := make([]byte, 94+len(nameBytes))
		binutil.WriteU64LE(entry, 8, binutil.SystemToSMBTime(times.Created))
		binutil.WriteU64LE(entry, 16, binutil.SystemToSMBTime(times.LastAccessed))
		binutil.WriteU64LE(entry, 24, binutil.SystemToSMBTime(times.LastModified))
		binutil.WriteU64LE(entry, 32, binutil.SystemToSMBTime(times.LastChanged))
		binutil.WriteU64LE(entry, 40, f.Size())
		binutil.WriteU64LE(entry, 48, f.AllocationSize())
		binutil.WriteU32LE(entry, 56, f.GetAttributes())
		binutil.WriteU32LE(entry, 60, uint32(len(nameBytes)))
		copy(entry[94:], nameBytes)

		pad := binutil.PadToAlign(len(entry), 4)
		entry = append(entry, make([]byte, pad)...)
		entries = append(entries, entry)
	}

	var out []byte
	for i, entry := range entries {
		if i < len(entries)-1 {
			binutil.WriteU32LE(entry, 0, uint32(len(entry)))
		}
		out = append(out, entry...)
	}
	return out
}
