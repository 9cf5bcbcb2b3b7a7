package live

import (
	"database/sql"
	"fmt"

	"github.com/Napageneral/rolodex/internal/config"
)

type WatcherStatus struct {
	Watcher       string `json:"watcher"`
	Dir           string `json:"dir"`
	Enabled       bool   `json:"enabled"`
	Status        string `json:"status,omitempty"`
	LastHeartbeat *int64 `json:"last_heartbeat,omitempty"`
	LastError     string `json:"last_error,omitempty"`
	Restarts      int    `json:"restarts,omitempty"`
}

func GetStatuses(db *sql.DB, cfg *config.Config) ([]WatcherStatus, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	dir, err := cfg.ImportPath()
	if err != nil {
		return nil, err
	}
	status, lastHeartbeat, lastError, restarts := readLiveStatus(db, InboxWatcherName)
	return []WatcherStatus{{
		Watcher:       InboxWatcherName,
		Dir:           dir,
		Enabled:       cfg.Live.Enabled,
		Status:        status,
		LastHeartbeat: lastHeartbeat,
		LastError:     lastError,
		Restarts:      restarts,
	}}, nil
}
