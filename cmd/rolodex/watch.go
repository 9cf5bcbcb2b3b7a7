package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Napageneral/rolodex/internal/config"
	"github.com/Napageneral/rolodex/internal/db"
	"github.com/Napageneral/rolodex/internal/live"
)

func newWatchCmd() *cobra.Command {
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Import CSV files dropped into the import directory",
		Long: `Watch the import directory and import every new or modified CSV file.
Requires live.enabled: true in config.yaml. Runs until interrupted.`,
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, s := openSession(ctx, "live")
			defer s.Close()

			m := live.NewManager(s.DB, cfg, func(ctx context.Context, path string) (string, error) {
				res, err := s.ImportFile(ctx, path)
				return res.Feedback, err
			})
			dir, _ := cfg.ImportPath()
			m.Logf("Watching %s (Ctrl+C to stop)", dir)
			if err := m.Run(ctx); err != nil {
				s.Close()
				exitWith(failure{Message: err.Error()}, "%v", err)
			}
		},
	}

	watchCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show watcher status",
		Run: func(cmd *cobra.Command, args []string) {
			type Result struct {
				OK       bool                 `json:"ok"`
				Message  string               `json:"message,omitempty"`
				Watchers []live.WatcherStatus `json:"watchers,omitempty"`
			}

			cfg, err := config.Load()
			if err != nil {
				exitWith(Result{Message: fmt.Sprintf("Failed to load config: %v", err)}, "Failed to load config: %v", err)
			}
			database, err := db.OpenConfigured(cfg)
			if err != nil {
				exitWith(Result{Message: fmt.Sprintf("Failed to open database: %v", err)}, "Failed to open database: %v", err)
			}
			defer database.Close()

			statuses, err := live.GetStatuses(database, cfg)
			if err != nil {
				database.Close()
				exitWith(Result{Message: err.Error()}, "%v", err)
			}

			if jsonOutput {
				printJSON(Result{OK: true, Watchers: statuses})
				return
			}
			for _, st := range statuses {
				status := st.Status
				if status == "" {
					status = "never run"
				}
				fmt.Printf("%s (%s)\n", st.Watcher, st.Dir)
				fmt.Printf("  Enabled: %v\n", st.Enabled)
				fmt.Printf("  Status: %s\n", status)
				if st.LastHeartbeat != nil {
					fmt.Printf("  Last heartbeat: %s\n", time.Unix(*st.LastHeartbeat, 0).Format("2006-01-02 15:04:05"))
				}
				if st.LastError != "" {
					fmt.Printf("  Last error: %s\n", st.LastError)
				}
				if st.Restarts > 0 {
					fmt.Printf("  Restarts: %d\n", st.Restarts)
				}
			}
		},
	})

	return watchCmd
}
