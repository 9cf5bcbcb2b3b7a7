// Package live runs background watchers that feed the address book, with
// restart backoff and status kept in the state table.
package live

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/Napageneral/rolodex/internal/config"
)

type WatcherSpec struct {
	Name string
	Run  func(ctx context.Context, beat func()) error
}

// ImportFunc imports one CSV file into the address book.
type ImportFunc func(ctx context.Context, path string) (string, error)

type Manager struct {
	DB                *sql.DB
	Config            *config.Config
	Import            ImportFunc
	HeartbeatInterval time.Duration
	RestartBackoff    time.Duration
	MaxBackoff        time.Duration
	Logf              func(format string, args ...any)
}

func NewManager(db *sql.DB, cfg *config.Config, importFn ImportFunc) *Manager {
	return &Manager{
		DB:                db,
		Config:            cfg,
		Import:            importFn,
		HeartbeatInterval: 10 * time.Second,
		RestartBackoff:    3 * time.Second,
		MaxBackoff:        30 * time.Second,
		Logf:              log.Printf,
	}
}

// Run starts every enabled watcher and blocks until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	specs, err := m.BuildSpecs()
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		return fmt.Errorf("no live watchers enabled")
	}

	done := make(chan struct{}, len(specs))
	for _, spec := range specs {
		spec := spec
		go func() {
			m.runWatcher(ctx, spec)
			done <- struct{}{}
		}()
	}

	<-ctx.Done()
	for range specs {
		<-done
	}
	return nil
}

func (m *Manager) runWatcher(ctx context.Context, spec WatcherSpec) {
	backoff := m.RestartBackoff
	if backoff <= 0 {
		backoff = 2 * time.Second
	}
	maxBackoff := m.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = 30 * time.Second
	}

	for {
		if ctx.Err() != nil {
			setLiveStatus(m.DB, spec.Name, StatusStopped)
			return
		}

		setLiveStatus(m.DB, spec.Name, StatusRunning)
		setLiveError(m.DB, spec.Name, nil)
		setLiveHeartbeat(m.DB, spec.Name, time.Now())

		beat := func() {
			setLiveHeartbeat(m.DB, spec.Name, time.Now())
		}

		err := spec.Run(ctx, beat)
		if ctx.Err() != nil {
			setLiveStatus(m.DB, spec.Name, StatusStopped)
			return
		}

		setLiveStatus(m.DB, spec.Name, StatusError)
		setLiveError(m.DB, spec.Name, err)
		incrementLiveRestarts(m.DB, spec.Name)
		if err != nil {
			m.Logf("live watcher %s stopped: %v (restarting in %s)", spec.Name, err, backoff)
		} else {
			m.Logf("live watcher %s stopped (restarting in %s)", spec.Name, backoff)
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			setLiveStatus(m.DB, spec.Name, StatusStopped)
			return
		}

		backoff = backoff * 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func (m *Manager) BuildSpecs() ([]WatcherSpec, error) {
	if m.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if !m.Config.Live.Enabled {
		return nil, nil
	}
	if m.Import == nil {
		return nil, fmt.Errorf("import function is required")
	}

	dir, err := m.Config.ImportPath()
	if err != nil {
		return nil, err
	}
	spec, err := NewInboxWatcher(InboxOptions{
		DB:                m.DB,
		Dir:               dir,
		Debounce:          m.Config.Debounce(),
		Rescan:            m.Config.Live.Rescan,
		Archive:           m.Config.Live.Archive,
		HeartbeatInterval: m.HeartbeatInterval,
	}, m.Import, m.Logf)
	if err != nil {
		return nil, err
	}
	return []WatcherSpec{spec}, nil
}
