// Package dispatch sequences a decoded SMB1 message's commands through
// the static command-id -> handler table, commits each handler's
// mutation of the message, and hands the mutated message back to the
// caller for encoding.
package dispatch

import (
	"fmt"

	"github.com/macos-fuse-t/go-smb1/internal/ntlm"
	"github.com/macos-fuse-t/go-smb1/internal/share"
	"github.com/macos-fuse-t/go-smb1/internal/smb1"
	"github.com/macos-fuse-t/go-smb1/internal/smberr"

	log "github.com/sirupsen/logrus"
)

// Conn is the connection-scoped state a handler needs: the TID/UID/FID
// tables the server owns, plus the per-connection NTLM challenge.
// Implemented by server.Connection; kept as an interface here
// so internal/handlers never imports the server package (avoiding an
// import cycle back through internal/dispatch).
type Conn interface {
	// Tree resolves TID to a bound Tree, or false if unknown
	// (STATUS_SMB_BAD_TID).
	Tree(tid uint16) (share.Tree, bool)
	// BindTree records a newly connected Tree under a fresh TID.
	BindTree(t share.Tree) (tid uint16)
	// UnbindTree drops tid's Tree, disconnecting it first.
	UnbindTree(tid uint16)

	// SessionByUID resolves UID to an authenticated Session.
	SessionByUID(uid uint16) (*share.Session, bool)
	// BindSession records a newly authenticated Session under a fresh
	// UID.
	BindSession(s *share.Session) (uid uint16)

	// ShareByName resolves a share name (case-insensitive) for
	// TREE_CONNECT_ANDX.
	ShareByName(name string) (share.Share, bool)

	// NTLM returns this connection's account database.
	NTLM() *ntlm.Server
	// Challenge returns the 8-byte server challenge generated at
	// NEGOTIATE for this connection.
	Challenge() [8]byte

	// SendRaw encodes and writes msg directly to the connection, for the
	// rare handler (ECHO) that must reply more than once per request.
	SendRaw(msg *smb1.Message) error
}

// Request bundles everything a handler needs to inspect one command and
// build its response: the message, commandId, params, data,
// paramsOffset, dataOffset, and connection.
type Request struct {
	Message      *smb1.Message
	CommandId    uint8
	Params       []byte
	Data         []byte
	ParamsOffset uint32
	DataOffset   uint32
	Conn         Conn
}

// ResultKind tags a Result's variant.
type ResultKind int

const (
	// KindOk commits new params/data (and, for MoreProcessing, also
	// sets header.status) and continues the chain.
	KindOk ResultKind = iota
	// KindErr aborts the chain and records the failing status.
	KindErr
	// KindAlreadyReplied means the handler already sent its own
	// response (e.g. ECHO); dispatch sets message.Processed and stops.
	KindAlreadyReplied
)

// Result is the tagged variant every handler returns, a Go sum type in
// place of an ad-hoc response object.
type Result struct {
	Kind           ResultKind
	Status         smberr.NTStatus
	Params         []byte
	Data           []byte
	WordCount      *uint8
	ByteCount      *uint16
	MoreProcessing bool
	Message        string
}

// Ok builds a KindOk result committing params/data.
func Ok(params, data []byte) Result {
	return Result{Kind: KindOk, Status: smberr.STATUS_SUCCESS, Params: params, Data: data}
}

// MoreProcessing builds a KindOk result that also sets header.status to
// STATUS_MORE_PROCESSING_REQUIRED (the SessionSetupAndX multi-round-trip
// case).
func MoreProcessing(params, data []byte) Result {
	return Result{
		Kind:           KindOk,
		Status:         smberr.STATUS_MORE_PROCESSING_REQUIRED,
		Params:         params,
		Data:           data,
		MoreProcessing: true,
	}
}

// Err builds a KindErr result carrying status and a diagnostic message.
func Err(status smberr.NTStatus, message string) Result {
	return Result{Kind: KindErr, Status: status, Message: message}
}

// ErrFrom builds a KindErr result from a Go error, mapping it through
// smberr when it isn't already an *smberr.Error.
func ErrFrom(err error) Result {
	return Result{Kind: KindErr, Status: smberr.StatusOf(err), Message: err.Error()}
}

// AlreadyReplied builds the sentinel result for handlers that sent their
// own response.
func AlreadyReplied() Result {
	return Result{Kind: KindAlreadyReplied}
}

// HandlerFunc is a pure transformation from one command's request to its
// result.
type HandlerFunc func(req *Request) Result

// Table maps command ids to their handler: a static registry in place
// of dynamic dispatch by name.
type Table map[uint8]HandlerFunc

// Response flag bits applied to every generated reply.
func applyResponseFlags(h *smb1.Header) {
	h.Flags |= smb1.FLAGS_REPLY
	h.Flags2 |= smb1.FLAGS2_NT_STATUS | smb1.FLAGS2_UNICODE | smb1.FLAGS2_LONG_NAMES
}

// FatalHandlerFault is what Dispatch panics with when it recovers a
// panic escaping a handler; the caller (the connection's serve loop) is
// expected to let this propagate and terminate the process.
type FatalHandlerFault struct {
	CommandId uint8
	Cause     any
}

func (f *FatalHandlerFault) Error() string {
	return fmt.Sprintf("dispatch: fatal fault in handler for command %#x: %v", f.CommandId, f.Cause)
}

// Dispatch iterates msg's commands in order, invoking the matching
// handler from table for each, sequentially — never in parallel, since a
// handler may mutate header.status or share state with the next AndX
// link. It returns the possibly-mutated message ready for smb1.Encode,
// unless a handler already replied (msg.Processed is set).
//
// A handler panic is recovered here into a FatalHandlerFault and
// re-panicked, so the caller's process-level recovery (or lack thereof)
// decides the server's fate: a bug in one handler must not corrupt
// another connection's state, but it is fatal to the process.
func Dispatch(msg *smb1.Message, table Table, conn Conn) *smb1.Message {
	for i := range msg.Commands {
		cmd := &msg.Commands[i]

		handler, ok := table[cmd.CommandId]
		if !ok {
			if smb1.IsAndX(cmd.CommandId) || knownCommand(cmd.CommandId) {
				msg.Header.Status = uint32(smberr.STATUS_NOT_IMPLEMENTED)
			} else {
				msg.Header.Status = uint32(smberr.STATUS_SMB_BAD_COMMAND)
			}
			clearCommand(cmd, msg.Header.Status)
			truncateChain(msg, i)
			break
		}

		result := invoke(handler, &Request{
			Message:      msg,
			CommandId:    cmd.CommandId,
			Params:       cmd.Params,
			Data:         cmd.Data,
			ParamsOffset: cmd.ParamsOffset,
			DataOffset:   cmd.DataOffset,
			Conn:         conn,
		})

		switch result.Kind {
		case KindAlreadyReplied:
			msg.Processed = true
			return msg

		case KindOk:
			cmd.Params = result.Params
			cmd.Data = result.Data
			if result.WordCount != nil {
				cmd.WordCount = *result.WordCount
			} else {
				cmd.WordCount = uint8(len(result.Params) / 2)
			}
			if result.ByteCount != nil {
				cmd.ByteCount = *result.ByteCount
			} else {
				cmd.ByteCount = uint16(len(result.Data))
			}
			if result.MoreProcessing {
				msg.Header.Status = uint32(result.Status)
			}

		default: // KindErr
			log.Debugf("dispatch: command %#x failed: %s (%#x)", cmd.CommandId, result.Message, result.Status)
			msg.Header.Status = uint32(result.Status)
			clearCommand(cmd, msg.Header.Status)
			truncateChain(msg, i)
			applyResponseFlags(&msg.Header)
			finalizeChain(msg)
			return msg
		}
	}

	applyResponseFlags(&msg.Header)
	finalizeChain(msg)
	return msg
}

// finalizeChain rewrites each surviving AndX command's chain-link header
// (nextCommandId, reserved) to name the command that actually follows it
// in msg.Commands, growing a short Params slice to the 4-byte AndX header
// via Command.SetAndXLink. The last command in the chain gets
// SMB_COM_NO_ANDX_COMMAND. Encode's own patch loop then fills in
// nextOffset once final wire positions are known. A cleared command
// (Params == nil, the tail of a truncated chain after an error) is left
// alone: there is nothing after it to link to.
func finalizeChain(msg *smb1.Message) {
	cmds := msg.Commands
	for i := range cmds {
		cmd := &cmds[i]
		if !cmd.IsAndX() || cmd.Params == nil {
			continue
		}
		next := uint8(smb1.SMB_COM_NO_ANDX_COMMAND)
		if i+1 < len(cmds) {
			next = cmds[i+1].CommandId
		}
		cmd.SetAndXLink(next)
	}
}

func invoke(handler HandlerFunc, req *Request) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			panic(&FatalHandlerFault{CommandId: req.CommandId, Cause: r})
		}
	}()
	return handler(req)
}

// clearCommand empties a failed command's params/data.
func clearCommand(cmd *smb1.Command, status uint32) {
	cmd.Params = nil
	cmd.Data = nil
	cmd.WordCount = 0
	cmd.ByteCount = 0
}

// truncateChain drops every command after index i: once a command fails,
// the remaining AndX chain never executes.
func truncateChain(msg *smb1.Message, i int) {
	msg.Commands = msg.Commands[:i+1]
}

// knownCommand reports whether id is one of the opcodes this server has
// any opinion about, purely to distinguish STATUS_SMB_BAD_COMMAND
// (unknown to CIFS entirely) from STATUS_NOT_IMPLEMENTED (a real CIFS
// command this table simply hasn't registered a handler for).
func knownCommand(id uint8) bool {
	switch id {
	case smb1.SMB_COM_CREATE_DIRECTORY, smb1.SMB_COM_DELETE_DIRECTORY, smb1.SMB_COM_CLOSE,
		smb1.SMB_COM_DELETE, smb1.SMB_COM_RENAME, smb1.SMB_COM_QUERY_INFORMATION,
		smb1.SMB_COM_SET_INFORMATION, smb1.SMB_COM_WRITE, smb1.SMB_COM_CHECK_DIRECTORY,
		smb1.SMB_COM_ECHO, smb1.SMB_COM_WRITE_ANDX, smb1.SMB_COM_READ_ANDX,
		smb1.SMB_COM_TRANSACTION2, smb1.SMB_COM_TRANSACTION2_ANDX, smb1.SMB_COM_FIND_CLOSE2,
		smb1.SMB_COM_TREE_DISCONNECT, smb1.SMB_COM_NEGOTIATE, smb1.SMB_COM_SESSION_SETUP_ANDX,
		smb1.SMB_COM_LOGOFF_ANDX, smb1.SMB_COM_TREE_CONNECT_ANDX, smb1.SMB_COM_NT_TRANSACT,
		smb1.SMB_COM_NT_TRANSACT_ANDX, smb1.SMB_COM_NT_CREATE_ANDX:
		return true
	}
	return false
}
