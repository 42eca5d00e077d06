// Package share defines the abstract Tree/File/Share contract the
// command handlers consume. The core never implements this — httpshare
// is the one concrete backend shipped alongside it.
package share

import "time"

// CreateDisposition mirrors the NT_CREATE_ANDX disposition values
// handlers pass through to Tree.OpenOrCreate unmodified.
type CreateDisposition uint32

const (
	FileSupersede   CreateDisposition = 0
	FileOpen        CreateDisposition = 1
	FileCreate      CreateDisposition = 2
	FileOpenIf      CreateDisposition = 3
	FileOverwrite   CreateDisposition = 4
	FileOverwriteIf CreateDisposition = 5
)

// CreateAction values returned in NT_CREATE_ANDX responses.
const (
	FileSupersededAction uint32 = 0
	FileOpenedAction      uint32 = 1
	FileCreatedAction     uint32 = 2
	FileOverwrittenAction uint32 = 3
)

// Times bundles the four SMB timestamps every File must expose, in
// epoch milliseconds.
type Times struct {
	Created      int64
	LastModified int64
	LastChanged  int64
	LastAccessed int64
}

// Share is a named share definition: it knows whether it behaves as a
// named pipe (affects READ_ANDX's maxCount interpretation and
// NT_CREATE_ANDX's ResourceType) and how to bind a session to a Tree.
type Share interface {
	// IsNamedPipe reports whether this share is IPC$-shaped.
	IsNamedPipe() bool
	// Connect authenticates sharePassword (may be empty for
	// user-level security) and returns a Tree bound to session.
	Connect(session *Session, sharePassword string) (Tree, error)
}

// Session identifies an authenticated user for the lifetime of one
// SMB1 UID.
type Session struct {
	UID      uint16
	User     string
	Domain   string
	IsGuest  bool
	LoggedIn time.Time
}

// Tree is a connected share instance, scoped to one TID. All the
// mutating methods return smberr.STATUS_NOT_SUPPORTED-shaped errors for
// backends that expose a read-only tree, as httpshare does.
type Tree interface {
	// IsNamedPipe reports whether the Share this Tree was connected
	// from is IPC$-shaped, the same flag READ_ANDX consults to decide
	// whether MaxCount's high word is meaningful.
	IsNamedPipe() bool
	// Open resolves an existing path to a File, or returns
	// smberr STATUS_NO_SUCH_FILE.
	Open(name string) (File, error)
	// OpenOrCreate resolves name per disposition, creating a file or
	// directory (isDir) when the disposition allows it.
	OpenOrCreate(name string, disposition CreateDisposition, isDir bool) (File, uint32 /* create action */, error)
	// List returns every File whose name matches pattern (an SMB
	// wildcard, "*"/"?"), for FIND_FIRST2 and DELETE.
	List(pattern string) ([]File, error)
	// Rename moves file to targetPath, relative to the tree root.
	Rename(file File, targetPath string) error
	// CloseFile releases fid's resources. Trees track their own FID
	// table; handlers never allocate FIDs directly.
	CloseFile(fid uint16) error
	// GetFile resolves an open FID back to its File.
	GetFile(fid uint16) (File, bool)
	// Disconnect tears down the tree at TREE_DISCONNECT / connection
	// close.
	Disconnect() error
}

// File is an open (or freshly created) file or directory handle.
type File interface {
	Name() string
	Path() string
	FID() uint16
	IsDirectory() bool
	Size() uint64
	AllocationSize() uint64
	Times() Times
	GetAttributes() uint32
	GetCreateAction() uint32

	Read(buf []byte, off int, length int, pos int64) (int, error)
	Write(buf []byte, off int, length int, pos int64) (int, error)

	SetLength(n uint64) error
	SetLastModifiedTime(ms int64) error
	SetDeleteOnClose() error
	Delete() error
	Flush() error
	Close() error
}

// ReadOnly is an embeddable mixin backends can compose into a File
// implementation to satisfy every mutating method with
// STATUS_NOT_SUPPORTED. httpshare.File embeds this.
type ReadOnly struct{}
