package smb1

// Command ids this server understands, plus the constants handlers and
// the dispatcher need. Not exhaustive of MS-CIFS, only what the covered
// backend surfaces.
const (
	SMB_COM_CREATE_DIRECTORY   = 0x00
	SMB_COM_DELETE_DIRECTORY   = 0x01
	SMB_COM_CLOSE              = 0x04
	SMB_COM_DELETE             = 0x06
	SMB_COM_RENAME             = 0x07
	SMB_COM_QUERY_INFORMATION  = 0x08
	SMB_COM_SET_INFORMATION    = 0x09
	SMB_COM_WRITE              = 0x0B
	SMB_COM_CHECK_DIRECTORY    = 0x10
	SMB_COM_ECHO               = 0x2B
	SMB_COM_WRITE_ANDX         = 0x2F
	SMB_COM_READ_ANDX          = 0x2E
	SMB_COM_TRANSACTION2       = 0x32
	SMB_COM_TRANSACTION2_ANDX  = 0x33
	SMB_COM_FIND_CLOSE2        = 0x34
	SMB_COM_TREE_DISCONNECT    = 0x71
	SMB_COM_NEGOTIATE          = 0x72
	SMB_COM_SESSION_SETUP_ANDX = 0x73
	SMB_COM_LOGOFF_ANDX        = 0x74
	SMB_COM_TREE_CONNECT_ANDX  = 0x75
	SMB_COM_NT_TRANSACT        = 0xA0
	SMB_COM_NT_TRANSACT_ANDX   = 0xA1
	SMB_COM_NT_CREATE_ANDX     = 0xA2
	SMB_COM_NO_ANDX_COMMAND    = 0xFF
)

// TRANS2 sub-command codes, dispatched on the request's Setup[0] word.
const (
	TRANS2_FIND_FIRST2            = 0x0001
	TRANS2_FIND_NEXT2             = 0x0002
	TRANS2_QUERY_PATH_INFORMATION = 0x0005
	TRANS2_QUERY_FILE_INFORMATION = 0x0007
	TRANS2_SET_FILE_INFORMATION   = 0x0008
)

// Information levels TRANS2_SET_FILE_INFORMATION accepts. Only NT
// passthrough levels (>= INFO_PASSTHROUGH) are implemented.
const (
	INFO_PASSTHROUGH               = 0x03E8
	FILE_DISPOSITION_INFORMATION   = INFO_PASSTHROUGH + 13
	FILE_END_OF_FILE_INFORMATION   = INFO_PASSTHROUGH + 20
	FILE_ALLOCATION_INFORMATION    = INFO_PASSTHROUGH + 19
	FILE_RENAME_INFORMATION        = INFO_PASSTHROUGH + 10
	FILE_BASIC_INFORMATION         = INFO_PASSTHROUGH + 4
	FILE_STANDARD_INFORMATION      = INFO_PASSTHROUGH + 5
	FILE_ALL_INFORMATION           = INFO_PASSTHROUGH + 18
	FILE_NETWORK_OPEN_INFORMATION  = INFO_PASSTHROUGH + 34
	FILE_INTERNAL_INFORMATION_TYPE = INFO_PASSTHROUGH + 6
)

// Header flag bits (byte Flags).
const (
	FLAGS_CASE_INSENSITIVE = 0x08
	FLAGS_CANONICALIZED    = 0x10
	FLAGS_REPLY            = 0x80
)

// Header flags2 bits (u16 Flags2).
const (
	FLAGS2_LONG_NAMES        = 0x0001
	FLAGS2_EAS               = 0x0002
	FLAGS2_SECURITY_SIGNATURE = 0x0004
	FLAGS2_IS_LONG_NAME      = 0x0040
	FLAGS2_EXTENDED_SECURITY = 0x0800
	FLAGS2_NT_STATUS         = 0x4000
	FLAGS2_UNICODE           = 0x8000
)

// NT_CREATE_ANDX flags (request params).
const (
	NTCREATE_FLAGS_REQUEST_OPLOCK       = 0x2
	NTCREATE_FLAGS_REQUEST_OPBATCH      = 0x4
	NTCREATE_FLAGS_OPEN_DIRECTORY       = 0x8
	NTCREATE_FLAGS_EXTENDED_RESPONSE    = 0x10
)

// NT_CREATE_ANDX createOptions bits relevant to this server.
const (
	FILE_DIRECTORY_FILE    = 0x00000001
	FILE_DELETE_ON_CLOSE   = 0x00001000
	FILE_NON_DIRECTORY_FILE = 0x00000040
)

// File types for NT_CREATE_ANDX's ResourceType response field.
const (
	FILE_TYPE_DISK             = 0x0000
	FILE_TYPE_MESSAGEMODEPIPE  = 0x0005
)

// FileStatusFlags bits (extended NT_CREATE_ANDX response tail).
const (
	NO_EAS         = 0x1
	NO_SUBSTREAMS  = 0x2
	NO_REPARSETAG  = 0x4
)

// READ_ANDX response layout.
const (
	DATA_OFFSET = 60
)

// Protocol framing limits.
const (
	SMB_MIN_LENGTH = 35
)

// smbMagic is the mandatory 4-byte protocol signature.
var smbMagic = [4]byte{0xFF, 'S', 'M', 'B'}

// andxCommands is the static table of command ids that carry an AndX
// chain header (nextCommandId, reserved, nextOffset) at the start of
// their params.
var andxCommands = map[uint8]bool{
	SMB_COM_SESSION_SETUP_ANDX: true,
	SMB_COM_TREE_CONNECT_ANDX:  true,
	SMB_COM_LOGOFF_ANDX:        true,
	SMB_COM_NT_CREATE_ANDX:     true,
	SMB_COM_READ_ANDX:          true,
	SMB_COM_WRITE_ANDX:         true,
	SMB_COM_TRANSACTION2_ANDX:  true,
	SMB_COM_NT_TRANSACT_ANDX:   true,
}

// IsAndX reports whether commandId carries an AndX chain header.
func IsAndX(commandId uint8) bool {
	return andxCommands[commandId]
}
