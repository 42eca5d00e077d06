package server

import (
	"net"
	"strings"

	"github.com/macos-fuse-t/go-smb1/internal/ntlm"
	"github.com/macos-fuse-t/go-smb1/internal/share"

	log "github.com/sirupsen/logrus"
)

// Server accepts SMB1 connections and hands each one its own Connection.
// It owns the share table and the NTLM account database, both shared
// read-only across every accepted connection.
type Server struct {
	shares map[string]share.Share
	ntlm   *ntlm.Server
}

// New builds a Server serving shares under the given NetBIOS domain name
// (used for NTLMv2 hash computation). Register shares with AddShare and
// accounts with AddAccount before calling Serve.
func New(domain string) *Server {
	return &Server{
		shares: make(map[string]share.Share),
		ntlm:   ntlm.NewServer(domain),
	}
}

// AddShare registers sh under name, matched case-insensitively by
// TreeConnectAndX.
func (s *Server) AddShare(name string, sh share.Share) {
	s.shares[normalizeShareName(name)] = sh
}

// AddAccount registers a user/password pair against the account
// database every connection's SessionSetupAndX authenticates against.
func (s *Server) AddAccount(user, password string) {
	s.ntlm.AddAccount(user, password)
}

// NTLMServer returns the shared account database, so callers can tune
// settings like AllowGuest before Serve is called.
func (s *Server) NTLMServer() *ntlm.Server {
	return s.ntlm
}

func normalizeShareName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Serve listens on addr and serves NBSS-framed SMB1 connections until the
// listener fails, returning that error. Each connection is handled on its
// own goroutine with its own TID/UID tables; a handler fault escaping
// dispatch (dispatch.FatalHandlerFault) terminates the whole process.
func (s *Server) Serve(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer l.Close()

	for {
		nc, err := l.Accept()
		if err != nil {
			return err
		}

		conn, err := newConnection(nc, s.shares, s.ntlm)
		if err != nil {
			log.Errorf("server: %v", err)
			nc.Close()
			continue
		}
		go conn.serve()
	}
}
