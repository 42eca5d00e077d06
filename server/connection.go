// Package server owns the connection, session, and tree bookkeeping a
// running instance needs on top of internal/dispatch: TID/UID allocation,
// the per-connection NTLM challenge, and the single-writer discipline
// SMB1's occasional multi-reply commands (ECHO) require.
package server

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/macos-fuse-t/go-smb1/internal/dispatch"
	"github.com/macos-fuse-t/go-smb1/internal/handlers"
	"github.com/macos-fuse-t/go-smb1/internal/ntlm"
	"github.com/macos-fuse-t/go-smb1/internal/share"
	"github.com/macos-fuse-t/go-smb1/internal/smb1"
	"github.com/macos-fuse-t/go-smb1/stats"
	"github.com/macos-fuse-t/go-smb1/transport"

	log "github.com/sirupsen/logrus"
)

// Connection is one accepted TCP connection carrying NBSS-framed SMB1
// traffic. It implements dispatch.Conn, owning the TID/UID tables and
// the per-connection NTLM challenge that SessionSetupAndX validates
// against.
type Connection struct {
	nc net.Conn

	shares map[string]share.Share
	ntlm   *ntlm.Server
	chal   [8]byte
	table  dispatch.Table

	mu       sync.Mutex
	nextTID  uint16
	nextUID  uint16
	trees    map[uint16]share.Tree
	sessions map[uint16]*share.Session

	writeMu sync.Mutex
}

// newConnection wires nc against the shared account database and share
// table, generating the one server challenge this connection's
// SessionSetupAndX requests will authenticate against.
func newConnection(nc net.Conn, shares map[string]share.Share, ntlmSrv *ntlm.Server) (*Connection, error) {
	chal, err := ntlmSrv.Challenge()
	if err != nil {
		return nil, fmt.Errorf("server: generating NTLM challenge: %w", err)
	}
	stats.AddConnection()
	return &Connection{
		nc:       nc,
		shares:   shares,
		ntlm:     ntlmSrv,
		chal:     chal,
		table:    handlers.Table(),
		trees:    make(map[uint16]share.Tree),
		sessions: make(map[uint16]*share.Session),
	}, nil
}

// serve reads NBSS-framed messages until the connection closes or a
// fatal handler fault escapes dispatch.Dispatch, decoding, dispatching,
// and writing back one response per request.
func (c *Connection) serve() {
	defer c.close()

	for {
		buf, err := transport.ReadMessage(c.nc)
		if err != nil {
			log.Debugf("server: connection closed: %v", err)
			return
		}

		msg, err := smb1.Decode(buf)
		if err != nil {
			log.Warnf("server: dropping unparseable message: %v", err)
			continue
		}

		msg = dispatch.Dispatch(msg, c.table, c)
		if msg.Processed {
			// The handler already sent its own reply(ies) via SendRaw.
			continue
		}
		if err := c.SendRaw(msg); err != nil {
			log.Warnf("server: write failed: %v", err)
			return
		}
	}
}

func (c *Connection) close() {
	c.mu.Lock()
	trees := make([]share.Tree, 0, len(c.trees))
	for _, t := range c.trees {
		trees = append(trees, t)
	}
	c.trees = nil
	c.mu.Unlock()

	for _, t := range trees {
		t.Disconnect()
	}
	c.nc.Close()
}

// SendRaw implements dispatch.Conn: it encodes msg and writes it whole,
// under a mutex so ECHO's several replies to one request never interleave
// with another goroutine's write.
func (c *Connection) SendRaw(msg *smb1.Message) error {
	buf, err := smb1.Encode(msg)
	if err != nil {
		return fmt.Errorf("server: encoding response: %w", err)
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return transport.WriteMessage(c.nc, buf)
}

// Tree implements dispatch.Conn.
func (c *Connection) Tree(tid uint16) (share.Tree, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.trees[tid]
	return t, ok
}

// BindTree implements dispatch.Conn.
func (c *Connection) BindTree(t share.Tree) uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextTID++
	tid := c.nextTID
	c.trees[tid] = t
	return tid
}

// UnbindTree implements dispatch.Conn.
func (c *Connection) UnbindTree(tid uint16) {
	c.mu.Lock()
	t, ok := c.trees[tid]
	delete(c.trees, tid)
	c.mu.Unlock()
	if ok {
		t.Disconnect()
	}
}

// SessionByUID implements dispatch.Conn.
func (c *Connection) SessionByUID(uid uint16) (*share.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[uid]
	return s, ok
}

// BindSession implements dispatch.Conn.
func (c *Connection) BindSession(s *share.Session) uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextUID++
	uid := c.nextUID
	s.UID = uid
	s.LoggedIn = time.Now()
	c.sessions[uid] = s
	return uid
}

// ShareByName implements dispatch.Conn, matching case-insensitively as
// SMB1 share names are.
func (c *Connection) ShareByName(name string) (share.Share, bool) {
	sh, ok := c.shares[normalizeShareName(name)]
	return sh, ok
}

// NTLM implements dispatch.Conn.
func (c *Connection) NTLM() *ntlm.Server { return c.ntlm }

// Challenge implements dispatch.Conn.
func (c *Connection) Challenge() [8]byte { return c.chal }

var _ dispatch.Conn = (*Connection)(nil)
