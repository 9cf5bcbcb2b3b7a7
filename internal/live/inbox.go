package live

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
)

const (
	InboxWatcherName = "inbox"
	archiveDirName   = "imported"
)

type InboxOptions struct {
	DB  *sql.DB
	Dir string
	// Debounce delays a scan after the last file event. Zero scans at once.
	Debounce time.Duration
	// Rescan is a cron expression for periodic full scans. Empty disables it.
	Rescan            string
	Archive           bool
	HeartbeatInterval time.Duration
}

type inbox struct {
	opts       InboxOptions
	importFile ImportFunc
	schedule   cron.Schedule
	logf       func(format string, args ...any)
}

// NewInboxWatcher watches opts.Dir for CSV files and imports each new or
// modified one. Scans triggered by file events, the rescan schedule and the
// initial pass all run on the watcher goroutine, one at a time.
func NewInboxWatcher(opts InboxOptions, importFile ImportFunc, logf func(format string, args ...any)) (WatcherSpec, error) {
	if opts.DB == nil {
		return WatcherSpec{}, fmt.Errorf("inbox watcher requires a database")
	}
	if opts.Dir == "" {
		return WatcherSpec{}, fmt.Errorf("inbox watcher requires a directory")
	}
	if importFile == nil {
		return WatcherSpec{}, fmt.Errorf("inbox watcher requires an import function")
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}
	in := &inbox{opts: opts, importFile: importFile, logf: logf}
	if opts.Rescan != "" {
		schedule, err := cron.ParseStandard(opts.Rescan)
		if err != nil {
			return WatcherSpec{}, fmt.Errorf("invalid rescan schedule %q: %w", opts.Rescan, err)
		}
		in.schedule = schedule
	}
	return WatcherSpec{Name: InboxWatcherName, Run: in.run}, nil
}

func (in *inbox) run(ctx context.Context, beat func()) error {
	if err := os.MkdirAll(in.opts.Dir, 0755); err != nil {
		return fmt.Errorf("create inbox: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(in.opts.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", in.opts.Dir, err)
	}

	in.logf("Watching for CSV files in %s (debounce: %s)", in.opts.Dir, in.opts.Debounce)
	in.scan(ctx)
	beat()

	interval := in.opts.HeartbeatInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	heartbeat := time.NewTicker(interval)
	defer heartbeat.Stop()

	var debounce *time.Timer
	var debounceC <-chan time.Time
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	var rescan *time.Timer
	var rescanC <-chan time.Time
	if in.schedule != nil {
		rescan = time.NewTimer(time.Until(in.schedule.Next(time.Now())))
		rescanC = rescan.C
		defer rescan.Stop()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			if !relevant(event) {
				continue
			}
			if in.opts.Debounce <= 0 {
				in.scan(ctx)
				beat()
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(in.opts.Debounce)
			} else {
				debounce.Stop()
				debounce.Reset(in.opts.Debounce)
			}
			debounceC = debounce.C
		case <-debounceC:
			debounceC = nil
			in.scan(ctx)
			beat()
		case <-rescanC:
			in.scan(ctx)
			beat()
			rescan.Reset(time.Until(in.schedule.Next(time.Now())))
		case <-heartbeat.C:
			beat()
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			in.logf("[%s] Watch error: %v", time.Now().Format("15:04:05"), err)
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if !isCSV(event.Name) {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename)
}

func isCSV(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}

// scan imports every CSV file in the inbox that has not been imported at its
// current modification time, in name order. It returns how many succeeded.
func (in *inbox) scan(ctx context.Context) int {
	entries, err := os.ReadDir(in.opts.Dir)
	if err != nil {
		in.logf("inbox scan error: %v", err)
		return 0
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && isCSV(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	imported := 0
	for _, name := range names {
		if ctx.Err() != nil {
			break
		}
		path := filepath.Join(in.opts.Dir, name)
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if seen, ok := processedAt(in.opts.DB, path); ok && seen == info.ModTime().UnixNano() {
			continue
		}

		feedback, err := in.importFile(ctx, path)
		if markErr := markProcessed(in.opts.DB, path, info.ModTime()); markErr != nil {
			in.logf("inbox: failed to record %s: %v", name, markErr)
		}
		if err != nil {
			in.logf("[%s] Import of %s failed: %v", time.Now().Format("15:04:05"), name, err)
			continue
		}
		imported++
		in.logf("[%s] %s", time.Now().Format("15:04:05"), feedback)

		if in.opts.Archive {
			if err := archive(in.opts.Dir, name); err != nil {
				in.logf("inbox: failed to archive %s: %v", name, err)
			}
		}
	}
	return imported
}

// archive moves name into the imported/ subdirectory, adding a timestamp
// when a file of that name was archived before.
func archive(dir, name string) error {
	dest := filepath.Join(dir, archiveDirName)
	if err := os.MkdirAll(dest, 0755); err != nil {
		return err
	}
	target := filepath.Join(dest, name)
	if _, err := os.Stat(target); err == nil {
		ext := filepath.Ext(name)
		base := strings.TrimSuffix(name, ext)
		target = filepath.Join(dest, fmt.Sprintf("%s-%s%s", base, time.Now().Format("20060102-150405.000"), ext))
	}
	return os.Rename(filepath.Join(dir, name), target)
}
