// Package httpshare is the one concrete backend this server ships: a
// read-only share whose files live behind ranged HTTP GETs rather than
// on a local filesystem, indexed by a small JSON manifest that
// LoadManifest reads from a local file once at startup.
package httpshare

import (
	"encoding/json"
	"os"
	"strings"
	"time"
)

// ManifestEntry describes one file the share exposes.
type ManifestEntry struct {
	Path    string            `json:"path"`
	Size    int64             `json:"size"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
	ModTime int64             `json:"mod_time_ms,omitempty"`
}

// Manifest is the whole share's file index.
type Manifest struct {
	Entries []ManifestEntry `json:"entries"`
}

// LoadManifest reads and parses a manifest JSON file from disk.
func LoadManifest(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	for i := range m.Entries {
		m.Entries[i].Path = normalizePath(m.Entries[i].Path)
		if m.Entries[i].ModTime == 0 {
			m.Entries[i].ModTime = time.Now().UnixMilli()
		}
	}
	return &m, nil
}

// normalizePath rewrites a manifest path into the backslash-free,
// leading-slash form this package matches SMB path components against.
func normalizePath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	p = strings.TrimPrefix(p, "/")
	return p
}

// find returns the entry at path, or false.
func (m *Manifest) find(path string) (ManifestEntry, bool) {
	path = normalizePath(path)
	for _, e := range m.Entries {
		if strings.EqualFold(e.Path, path) {
			return e, true
		}
	}
	return ManifestEntry{}, false
}

// list returns every entry whose path matches an SMB wildcard pattern
// within one directory level (SMB1 FIND_FIRST2 never recurses).
func (m *Manifest) list(dir, pattern string) []ManifestEntry {
	dir = normalizePath(dir)
	var out []ManifestEntry
	for _, e := range m.Entries {
		entryDir, name := splitDir(e.Path)
		if !strings.EqualFold(entryDir, dir) {
			continue
		}
		if matchWildcard(pattern, name) {
			out = append(out, e)
		}
	}
	return out
}

func splitDir(path string) (dir, name string) {
	idx := strings.LastIndexByte(path, '/')
	if idx < 0 {
		return "", path
	}
	return path[:idx], path[idx+1:]
}

// matchWildcard implements the small subset of SMB wildcard matching
// (`*` and `?`) FIND_FIRST2 patterns use.
func matchWildcard(pattern, name string) bool {
	if pattern == "" || pattern == "*" || pattern == "*.*" {
		return true
	}
	return wildcardMatch([]rune(strings.ToLower(pattern)), []rune(strings.ToLower(name)))
}

func wildcardMatch(pattern, name []rune) bool {
	if len(pattern) == 0 {
		return len(name) == 0
	}
	switch pattern[0] {
	case '*':
		if wildcardMatch(pattern[1:], name) {
			return true
		}
		if len(name) > 0 && wildcardMatch(pattern, name[1:]) {
			return true
		}
		return false
	case '?':
		if len(name) == 0 {
			return false
		}
		return wildcardMatch(pattern[1:], name[1:])
	default:
		if len(name) == 0 || pattern[0] != name[0] {
			return false
		}
		return wildcardMatch(pattern[1:], name[1:])
	}
}
