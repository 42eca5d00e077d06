// Package smb1 decodes and encodes SMB1/CIFS messages: the fixed 32-byte
// header, the AndX-chained command list that follows it, and the offset
// bookkeeping handlers need to embed absolute positions (e.g. READ_ANDX's
// DataOffset) into their responses.
package smb1

import (
	"fmt"

	"github.com/macos-fuse-t/go-smb1/internal/binutil"
)

const headerSize = 32

// Header is the fixed 32-byte SMB1 header.
type Header struct {
	Command  uint8
	Status   uint32
	Flags    uint8
	Flags2   uint16
	PIDHigh  uint16
	Security [8]byte
	TID      uint16
	PID      uint16
	UID      uint16
	MID      uint16
}

// Command is one link of an (optionally AndX-chained) command list.
type Command struct {
	CommandId    uint8
	WordCount    uint8
	Params       []byte
	ByteCount    uint16
	Data         []byte
	ParamsOffset uint32
	DataOffset   uint32

	// isAndX marks a command whose params begin with the AndX header. The
	// header's nextCommandId/nextOffset values are not cached; Encode
	// re-derives nextOffset from chain order.
	isAndX       bool
	nextOffsetAt int // byte offset within Params of the AndX nextOffset field, or -1
}

// Message is a decoded SMB1 request or response: a header plus its
// ordered command list. Processed signals the dispatcher that a handler
// already sent its own reply and encoding must be skipped.
type Message struct {
	Header    Header
	Commands  []Command
	Processed bool
}

// FramingError signals decode() rejected the buffer before touching any
// command.
type FramingError struct {
	Reason string
}

func (e *FramingError) Error() string { return "smb1: framing error: " + e.Reason }

// Decode validates and parses a raw SMB1 message buffer.
func Decode(buf []byte) (*Message, error) {
	if len(buf) < SMB_MIN_LENGTH {
		return nil, &FramingError{Reason: fmt.Sprintf("buffer too short: %d bytes", len(buf))}
	}
	if buf[0] != smbMagic[0] || buf[1] != smbMagic[1] || buf[2] != smbMagic[2] || buf[3] != smbMagic[3] {
		return nil, &FramingError{Reason: "bad protocol magic"}
	}

	msg := &Message{}
	h := &msg.Header
	h.Command = buf[4]
	h.Status = binutil.ReadU32LE(buf, 5)
	h.Flags = buf[9]
	h.Flags2 = binutil.ReadU16LE(buf, 10)
	h.PIDHigh = binutil.ReadU16LE(buf, 12)
	copy(h.Security[:], buf[14:22])
	h.TID = binutil.ReadU16LE(buf, 24)
	h.PID = binutil.ReadU16LE(buf, 26)
	h.UID = binutil.ReadU16LE(buf, 28)
	h.MID = binutil.ReadU16LE(buf, 30)

	commandId := h.Command
	off := headerSize

	for {
		cmd, next, err := decodeCommand(buf, off, commandId)
		if err != nil {
			return nil, err
		}
		msg.Commands = append(msg.Commands, *cmd)

		if !cmd.isAndX || next == nil {
			break
		}
		commandId = next.commandId
		off = next.offset
		if commandId == SMB_COM_NO_ANDX_COMMAND {
			break
		}
	}

	if len(msg.Commands) == 0 {
		return nil, &FramingError{Reason: "message has no commands"}
	}
	return msg, nil
}

type andxLink struct {
	commandId uint8
	offset    int
}

func decodeCommand(buf []byte, off int, commandId uint8) (*Command, *andxLink, error) {
	if off >= len(buf) {
		return nil, nil, &FramingError{Reason: "command offset past end of buffer"}
	}

	wordCount := buf[off]
	paramsStart := off + 1
	paramsLen := int(wordCount) * 2
	if paramsStart+paramsLen+2 > len(buf) {
		return nil, nil, &FramingError{Reason: "truncated command params"}
	}

	params := buf[paramsStart : paramsStart+paramsLen]
	byteCountOff := paramsStart + paramsLen
	byteCount := binutil.ReadU16LE(buf, byteCountOff)
	dataStart := byteCountOff + 2
	if dataStart+int(byteCount) > len(buf) {
		return nil, nil, &FramingError{Reason: "truncated command data"}
	}
	data := buf[dataStart : dataStart+int(byteCount)]

	cmd := &Command{
		CommandId:    commandId,
		WordCount:    wordCount,
		Params:       params,
		ByteCount:    byteCount,
		Data:         data,
		ParamsOffset: uint32(paramsStart),
		DataOffset:   uint32(dataStart),
		nextOffsetAt: -1,
	}

	if !IsAndX(commandId) || len(params) < 4 {
		return cmd, nil, nil
	}

	cmd.isAndX = true
	cmd.nextOffsetAt = 2
	nextCommandId := params[0]
	nextOffset := int(binutil.ReadU16LE(params, 2))

	if nextCommandId == SMB_COM_NO_ANDX_COMMAND {
		return cmd, &andxLink{commandId: nextCommandId}, nil
	}
	return cmd, &andxLink{commandId: nextCommandId, offset: nextOffset}, nil
}

// Encode serialises msg back to a wire buffer, patching each AndX
// command's nextOffset field to the absolute start of the command that
// follows it once final positions are known.
func Encode(msg *Message) ([]byte, error) {
	if len(msg.Commands) == 0 {
		return nil, fmt.Errorf("smb1: cannot encode message with no commands")
	}

	buf := make([]byte, headerSize)
	encodeHeader(buf, &msg.Header, msg.Commands[0].CommandId)

	starts := make([]int, len(msg.Commands))
	for i, cmd := range msg.Commands {
		starts[i] = len(buf)
		buf = appendCommand(buf, &cmd)
	}

	for i := range msg.Commands {
		cmd := &msg.Commands[i]
		if !cmd.isAndX || i == len(msg.Commands)-1 {
			continue
		}
		paramsStart := starts[i] + 1
		nextStart := starts[i+1]
		binutil.WriteU16LE(buf[paramsStart:], 2, uint16(nextStart))
	}

	return buf, nil
}

func encodeHeader(buf []byte, h *Header, firstCommand uint8) {
	buf[0], buf[1], buf[2], buf[3] = smbMagic[0], smbMagic[1], smbMagic[2], smbMagic[3]
	buf[4] = firstCommand
	binutil.WriteU32LE(buf, 5, h.Status)
	buf[9] = h.Flags
	binutil.WriteU16LE(buf, 10, h.Flags2)
	binutil.WriteU16LE(buf, 12, h.PIDHigh)
	copy(buf[14:22], h.Security[:])
	binutil.WriteU16LE(buf, 24, h.TID)
	binutil.WriteU16LE(buf, 26, h.PID)
	binutil.WriteU16LE(buf, 28, h.UID)
	binutil.WriteU16LE(buf, 30, h.MID)
}

func appendCommand(buf []byte, cmd *Command) []byte {
	wordCount := len(cmd.Params) / 2
	if cmd.WordCount != 0 {
		// An explicit WordCount is written as given, even where it differs
		// from the params length (NT_CREATE_ANDX's extended response).
		wordCount = int(cmd.WordCount)
	}
	buf = append(buf, byte(wordCount))
	buf = append(buf, cmd.Params...)

	byteCount := make([]byte, 2)
	binutil.WriteU16LE(byteCount, 0, uint16(len(cmd.Data)))
	buf = append(buf, byteCount...)
	buf = append(buf, cmd.Data...)
	return buf
}

// SetAndXLink marks cmd as an AndX command whose params begin with the
// standard {nextCommandId, reserved, nextOffset} header. The dispatcher
// calls this on every AndX reply before encoding so Encode knows to patch
// the offset. Params shorter than that header are grown to it.
func (c *Command) SetAndXLink(nextCommandId uint8) {
	c.isAndX = true
	if len(c.Params) < 4 {
		grown := make([]byte, 4)
		copy(grown, c.Params)
		c.Params = grown
		c.WordCount = 2
	}
	c.Params[0] = nextCommandId
	c.Params[1] = 0
}

// IsAndX reports whether cmd carries an AndX chain header.
func (c *Command) IsAndX() bool { return c.isAndX }
