package handlers

import (
	"testing"

	"github.com/macos-fuse-t/go-smb1/internal/dispatch"
	"github.com/macos-fuse-t/go-smb1/internal/smberr"
)

func TestWriteAndXAlwaysRejected(t *testing.T) {
	req := &dispatch.Request{}
	res := WriteAndX(req)
	if res.Kind != dispatch.KindErr {
		t.Fatalf("WriteAndX returned %+v, want KindErr", res)
	}
	if res.Status != smberr.STATUS_NOT_SUPPORTED {
		t.Errorf("WriteAndX status = %v, want STATUS_NOT_SUPPORTED", res.Status)
	}
}
