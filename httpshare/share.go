package httpshare

import (
	"net/http"
	"time"

	"github.com/macos-fuse-t/go-smb1/internal/share"
	"github.com/macos-fuse-t/go-smb1/internal/smberr"
)

// Share is a read-only share backed by one HTTP-addressable manifest.
// It never rejects a password: authentication already happened at
// SessionSetupAndX, and share-level passwords are a share-mode-security
// artifact this server doesn't support.
type Share struct {
	Name     string
	manifest *Manifest
	client   *http.Client
}

// New builds a Share serving the files listed in manifest.
func New(name string, manifest *Manifest) *Share {
	return &Share{
		Name:     name,
		manifest: manifest,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *Share) IsNamedPipe() bool { return false }

func (s *Share) Connect(session *share.Session, sharePassword string) (share.Tree, error) {
	return newTree(s, session), nil
}

var _ share.Share = (*Share)(nil)

// notSupported is the stock error every mutating operation returns.
func notSupported(op string) error {
	return smberr.New(smberr.STATUS_NOT_SUPPORTED, "httpshare: "+op+" is not supported on a read-only share")
}
