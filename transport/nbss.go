// Package transport implements the NetBIOS Session Service framing SMB1
// rides over: a 4-byte big-endian length prefix, nothing else. It knows
// nothing about SMB1 itself — its only job is handing whole message
// buffers to the caller.
package transport

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxMessageSize bounds a single NBSS frame, guarding against a
// malicious or buggy peer claiming an unbounded length. NBSS's length
// field is only 3 bytes wide (max 16MiB-1); this server caps well below
// that, since no legitimate SMB1 message approaches it.
const MaxMessageSize = 4 * 1024 * 1024

// nbssSessionMessage is the only NBSS packet type this server accepts;
// the historical session-request/positive-response handshake is not
// needed once a raw TCP connection is already established on the SMB
// port (direct-hosted NetBIOS, RFC 1001/1002 §5.3.1 mode 139-over-445).
const nbssSessionMessage = 0x00

// ReadMessage reads one length-prefixed NBSS frame from r and returns
// its payload.
func ReadMessage(r io.Reader) ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	msgType := hdr[0]
	length := int(hdr[1])<<16 | int(binary.BigEndian.Uint16(hdr[2:4]))

	if msgType != nbssSessionMessage {
		return nil, fmt.Errorf("transport: unsupported NBSS message type %#x", msgType)
	}
	if length > MaxMessageSize {
		return nil, fmt.Errorf("transport: NBSS frame too large: %d bytes", length)
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteMessage frames payload as one NBSS session message and writes it
// to w.
func WriteMessage(w io.Writer, payload []byte) error {
	if len(payload) > MaxMessageSize {
		return fmt.Errorf("transport: payload too large to frame: %d bytes", len(payload))
	}
	var hdr [4]byte
	hdr[0] = nbssSessionMessage
	hdr[1] = byte(len(payload) >> 16)
	binary.BigEndian.PutUint16(hdr[2:4], uint16(len(payload)))

	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}
