package live

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/Napageneral/rolodex/internal/state"
)

const (
	StatusRunning = "running"
	StatusStopped = "stopped"
	StatusError   = "error"
)

const (
	keyLiveStatus        = "live_status"
	keyLiveLastHeartbeat = "live_last_heartbeat"
	keyLiveLastError     = "live_last_error"
	keyLiveRestarts      = "live_restarts"
)

// Imported files are tracked per path with their modification time.
const processedScope = "inbox_files"

func setLiveStatus(db *sql.DB, watcher string, status string) {
	_ = state.Set(db, watcher, keyLiveStatus, status)
}

func setLiveHeartbeat(db *sql.DB, watcher string, t time.Time) {
	_ = state.Set(db, watcher, keyLiveLastHeartbeat, fmt.Sprintf("%d", t.Unix()))
}

func setLiveError(db *sql.DB, watcher string, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	_ = state.Set(db, watcher, keyLiveLastError, msg)
}

func incrementLiveRestarts(db *sql.DB, watcher string) {
	v, ok, err := state.Get(db, watcher, keyLiveRestarts)
	if err != nil {
		return
	}
	cur := 0
	if ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cur = n
		}
	}
	_ = state.Set(db, watcher, keyLiveRestarts, fmt.Sprintf("%d", cur+1))
}

func readLiveStatus(db *sql.DB, watcher string) (status string, lastHeartbeat *int64, lastError string, restarts int) {
	if v, ok, _ := state.Get(db, watcher, keyLiveStatus); ok {
		status = v
	}
	if v, ok, _ := state.Get(db, watcher, keyLiveLastHeartbeat); ok && v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			lastHeartbeat = &n
		}
	}
	if v, ok, _ := state.Get(db, watcher, keyLiveLastError); ok {
		lastError = v
	}
	if v, ok, _ := state.Get(db, watcher, keyLiveRestarts); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			restarts = n
		}
	}
	return status, lastHeartbeat, lastError, restarts
}

func processedAt(db *sql.DB, path string) (int64, bool) {
	v, ok, err := state.Get(db, processedScope, path)
	if err != nil || !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func markProcessed(db *sql.DB, path string, modTime time.Time) error {
	return state.Set(db, processedScope, path, strconv.FormatInt(modTime.UnixNano(), 10))
}
