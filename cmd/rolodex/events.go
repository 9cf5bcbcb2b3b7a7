package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Napageneral/rolodex/internal/calendar"
	"github.com/Napageneral/rolodex/internal/command"
	"github.com/Napageneral/rolodex/internal/config"
)

func newEventsCmd() *cobra.Command {
	eventsCmd := &cobra.Command{
		Use:   "events",
		Short: "Calendar import, export and agenda",
	}

	eventsCmd.AddCommand(&cobra.Command{
		Use:   "import-ics <file>",
		Short: "Import VEVENTs from an iCalendar file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			_, s := openSession(ctx, "exec")
			defer s.Close()
			if failed := report(s.Run(ctx, &command.ImportICS{File: args[0]}, "importics "+args[0])); failed {
				s.Close()
				os.Exit(1)
			}
		},
	})

	eventsCmd.AddCommand(&cobra.Command{
		Use:   "export-ics <file>",
		Short: "Write every event to an iCalendar file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			_, s := openSession(ctx, "exec")
			defer s.Close()
			if failed := report(s.Run(ctx, &command.ExportICS{File: args[0]}, "exportics "+args[0])); failed {
				s.Close()
				os.Exit(1)
			}
		},
	})

	upcomingCmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List event occurrences in the coming days",
		Run: func(cmd *cobra.Command, args []string) {
			type Occurrence struct {
				EventID  int        `json:"event_id"`
				Name     string     `json:"name"`
				Start    time.Time  `json:"start"`
				End      *time.Time `json:"end,omitempty"`
				Location string     `json:"location,omitempty"`
			}
			type Result struct {
				OK          bool         `json:"ok"`
				Message     string       `json:"message,omitempty"`
				Days        int          `json:"days"`
				Occurrences []Occurrence `json:"occurrences"`
			}

			days, _ := cmd.Flags().GetInt("days")

			ctx := context.Background()
			cfg, s := openSession(ctx, "exec")
			defer s.Close()

			if !jsonOutput {
				report(s.Run(ctx, &command.Upcoming{Days: days}, "upcoming"))
				return
			}

			if days <= 0 {
				days = cfg.Calendar.HorizonDays
			}
			opts := s.Model.Options()
			now := time.Now().In(opts.Location)
			result := Result{OK: true, Days: days, Occurrences: []Occurrence{}}
			for _, o := range calendar.Expand(s.Model.Events(), now, now.AddDate(0, 0, days), opts.Location) {
				occ := Occurrence{
					EventID:  o.Event.ID,
					Name:     o.Event.Name,
					Start:    o.Start,
					Location: o.Event.Location,
				}
				if !o.End.IsZero() {
					end := o.End
					occ.End = &end
				}
				result.Occurrences = append(result.Occurrences, occ)
			}
			printJSON(result)
		},
	}
	upcomingCmd.Flags().Int("days", 0, fmt.Sprintf("Days ahead to look (default: calendar.horizon_days, %d)", config.DefaultHorizonDays))
	eventsCmd.AddCommand(upcomingCmd)

	return eventsCmd
}
