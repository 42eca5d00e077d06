// Package smberr maps errors surfaced by the Tree/File/Share backend and
// by the codec layers onto NTSTATUS values, the only error vocabulary a
// client ever sees.
package smberr

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/sys/unix"
)

// NTStatus is a 32-bit Windows status code, as carried in the SMB1
// header's Status field.
type NTStatus uint32

// Status values referenced throughout the handlers and dispatcher. Not
// exhaustive of MS-ERREF, only what this server ever emits.
const (
	STATUS_SUCCESS                  NTStatus = 0x00000000
	STATUS_MORE_PROCESSING_REQUIRED NTStatus = 0xC0000016
	STATUS_UNSUCCESSFUL             NTStatus = 0xC0000001
	STATUS_NOT_IMPLEMENTED          NTStatus = 0xC0000002
	STATUS_INVALID_HANDLE           NTStatus = 0xC0000008
	STATUS_ACCESS_DENIED            NTStatus = 0xC0000022
	STATUS_OBJECT_NAME_COLLISION    NTStatus = 0xC0000035
	STATUS_NO_SUCH_FILE             NTStatus = 0xC000000F
	STATUS_END_OF_FILE              NTStatus = 0xC0000011
	STATUS_NOT_SUPPORTED            NTStatus = 0xC00000BB
	STATUS_NETWORK_ACCESS_DENIED    NTStatus = 0xC00000CA
	STATUS_FILE_IS_A_DIRECTORY      NTStatus = 0xC00000BA
	STATUS_SMB_BAD_TID              NTStatus = 0x00050002
	STATUS_SMB_BAD_FID              NTStatus = 0x00060001
	STATUS_SMB_BAD_COMMAND          NTStatus = 0x00160002
	STATUS_BAD_NETWORK_NAME         NTStatus = 0xC00000CC
	STATUS_INVALID_PARAMETER        NTStatus = 0xC000000D
	STATUS_DIRECTORY_NOT_EMPTY      NTStatus = 0xC0000101
	STATUS_NOT_A_DIRECTORY          NTStatus = 0xC0000103
	STATUS_LOGON_FAILURE            NTStatus = 0xC000006D
	STATUS_INVALID_NETWORK_RESPONSE NTStatus = 0xC000023C
)

// Error is an SMBError: an NTSTATUS with a human-readable message,
// wrapping an optional underlying cause.
type Error struct {
	Status  NTStatus
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error with no wrapped cause.
func New(status NTStatus, message string) *Error {
	return &Error{Status: status, Message: message}
}

// Wrap builds an Error with the given status that carries cause; cause
// is not consulted to derive the status.
func Wrap(status NTStatus, message string, cause error) *Error {
	return &Error{Status: status, Message: message, Cause: cause}
}

// StatusOf extracts the NTSTATUS from err, defaulting to
// STATUS_UNSUCCESSFUL for anything not produced by this package.
func StatusOf(err error) NTStatus {
	if err == nil {
		return STATUS_SUCCESS
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Status
	}
	return FromSystemError(err)
}

// FromSystemError maps an OS-level error to an NTSTATUS code. Total:
// io.EOF and the unix.Errno values matched below (also when wrapped,
// e.g. in an *os.PathError) produce the mapped status; everything else
// produces STATUS_UNSUCCESSFUL.
func FromSystemError(err error) NTStatus {
	if err == nil {
		return STATUS_SUCCESS
	}

	switch {
	case errors.Is(err, io.EOF):
		return STATUS_END_OF_FILE
	}

	var errno unix.Errno
	if errors.As(err, &errno) {
		switch errno {
		case unix.EINVAL:
			return STATUS_NOT_IMPLEMENTED
		case unix.ENOENT:
			return STATUS_NO_SUCH_FILE
		case unix.EPERM:
			return STATUS_ACCESS_DENIED
		case unix.EBADF:
			return STATUS_SMB_BAD_FID
		case unix.EEXIST:
			return STATUS_OBJECT_NAME_COLLISION
		case unix.EACCES:
			return STATUS_NETWORK_ACCESS_DENIED
		}
	}

	return STATUS_UNSUCCESSFUL
}
