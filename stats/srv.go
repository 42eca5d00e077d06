// Package stats exposes a live snapshot of server activity — per-share
// I/O byte counters and open counts — as JSON over HTTP, the shape and
// reset semantics the teacher's stats package uses, generalized from
// per-local-path counters to per-share counters (this server has no
// local paths, only manifest entries served over HTTP).
package stats

import (
	"encoding/json"
	"net/http"
	"sync"

	"golang.org/x/exp/maps"
)

// ShareStats accumulates counters for one connected share.
type ShareStats struct {
	ReadBytes   uint64 `json:"read-bytes"`
	OpenCount   uint64 `json:"open-count"`
	DeleteCount uint64 `json:"delete-count"`
}

// Stats is the whole server's counter set.
type Stats struct {
	ReadBytes   uint64                 `json:"read-bytes"`
	OpenCount   uint64                 `json:"open-count"`
	DeleteCount uint64                 `json:"delete-count"`
	Connections uint64                 `json:"connections"`
	Shares      map[string]*ShareStats `json:"shares"`
}

var (
	mu = sync.RWMutex{}
	s  = &Stats{Shares: make(map[string]*ShareStats)}
)

func shareLocked(name string) *ShareStats {
	sh, ok := s.Shares[name]
	if !ok {
		sh = &ShareStats{}
		s.Shares[name] = sh
	}
	return sh
}

// AddReadBytes records cnt bytes read against share.
func AddReadBytes(share string, cnt uint64) {
	mu.Lock()
	defer mu.Unlock()
	s.ReadBytes += cnt
	shareLocked(share).ReadBytes += cnt
}

// AddOpen records one open against share.
func AddOpen(share string) {
	mu.Lock()
	defer mu.Unlock()
	s.OpenCount++
	shareLocked(share).OpenCount++
}

// AddDelete records one delete against share.
func AddDelete(share string) {
	mu.Lock()
	defer mu.Unlock()
	s.DeleteCount++
	shareLocked(share).DeleteCount++
}

// AddConnection records one newly accepted connection.
func AddConnection() {
	mu.Lock()
	defer mu.Unlock()
	s.Connections++
}

// ShareNames returns the names of every share with recorded activity.
func ShareNames() []string {
	mu.RLock()
	defer mu.RUnlock()
	return maps.Keys(s.Shares)
}

// StatServer serves the JSON snapshot at "/" and a counter reset at
// "/reset" until addr's listener fails.
func StatServer(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", statsHandler)
	mux.HandleFunc("/reset", resetHandler)
	return http.ListenAndServe(addr, mux)
}

func statsHandler(w http.ResponseWriter, r *http.Request) {
	mu.RLock()
	defer mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s)
}

func resetHandler(w http.ResponseWriter, r *http.Request) {
	mu.Lock()
	s = &Stats{Shares: make(map[string]*ShareStats)}
	mu.Unlock()

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("stats reset"))
}
