package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Napageneral/rolodex/internal/app"
	"github.com/Napageneral/rolodex/internal/bus"
	"github.com/Napageneral/rolodex/internal/command"
	"github.com/Napageneral/rolodex/internal/config"
	"github.com/Napageneral/rolodex/internal/model"
)

type failure struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// openSession loads config and the stored address book, exiting on failure.
func openSession(ctx context.Context, source string) (*config.Config, *app.Session) {
	cfg, err := config.Load()
	if err != nil {
		exitWith(failure{Message: fmt.Sprintf("Failed to load config: %v", err)}, "Failed to load config: %v", err)
	}
	s, err := app.Open(ctx, cfg, source)
	if err != nil {
		exitWith(failure{Message: fmt.Sprintf("Failed to open address book: %v", err)}, "Failed to open address book: %v", err)
	}
	return cfg, s
}

type commandResult struct {
	OK       bool   `json:"ok"`
	Message  string `json:"message,omitempty"`
	Feedback string `json:"feedback,omitempty"`
	Changed  bool   `json:"changed,omitempty"`
}

// report prints the outcome of one command and reports whether it failed.
func report(res command.Result, err error) bool {
	if err != nil {
		if jsonOutput {
			printJSON(commandResult{Message: err.Error()})
		} else {
			fmt.Fprintln(os.Stderr, err.Error())
		}
		return true
	}
	if jsonOutput {
		printJSON(commandResult{OK: true, Feedback: res.Feedback, Changed: res.Changed})
		return false
	}
	fmt.Println(res.Feedback)
	return false
}

func newExecCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec <command line>",
		Short: "Run one address book command",
		Long: `Run one command line exactly as typed in the shell, e.g.
  rolodex exec add n/John Doe p/98765432 e/johnd@example.com a/311, Clementi Ave 2 t/friends`,
		Args: cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			_, s := openSession(ctx, "exec")
			defer s.Close()

			if failed := report(s.Execute(ctx, strings.Join(args, " "))); failed {
				s.Close()
				os.Exit(1)
			}
		},
	}
}

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive address book session",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			_, s := openSession(ctx, "shell")
			defer s.Close()

			interactive := !jsonOutput
			if interactive {
				fmt.Println("Rolodex shell. Type help for commands, exit to quit.")
			}
			scanner := bufio.NewScanner(os.Stdin)
			for {
				if interactive {
					fmt.Print("> ")
				}
				if !scanner.Scan() {
					break
				}
				line := scanner.Text()
				if strings.TrimSpace(line) == "" {
					continue
				}
				res, err := s.Execute(ctx, line)
				report(res, err)
				if err == nil && res.Exit {
					return
				}
			}
			if err := scanner.Err(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		},
	}
}

type personView struct {
	Index   int      `json:"index"`
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Phone   string   `json:"phone"`
	Email   string   `json:"email"`
	Address string   `json:"address"`
	Tags    []string `json:"tags"`
	Events  []int    `json:"event_ids,omitempty"`
}

func viewPerson(index int, p *model.Person) personView {
	tags := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		tags = append(tags, string(t))
	}
	return personView{
		Index:   index,
		ID:      p.ID,
		Name:    string(p.Name),
		Phone:   string(p.Phone),
		Email:   string(p.Email),
		Address: string(p.Address),
		Tags:    tags,
		Events:  p.EventIDs,
	}
}

func newListCmd() *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list [keywords...]",
		Short: "List persons, optionally filtered by name keywords",
		Run: func(cmd *cobra.Command, args []string) {
			type Result struct {
				OK      bool         `json:"ok"`
				Message string       `json:"message,omitempty"`
				Persons []personView `json:"persons"`
			}

			ctx := context.Background()
			_, s := openSession(ctx, "list")
			defer s.Close()

			line := "list"
			if len(args) > 0 {
				line = "find " + strings.Join(args, " ")
			}
			if _, err := s.Execute(ctx, line); err != nil {
				s.Close()
				exitWith(Result{Message: err.Error()}, "%v", err)
			}

			persons := s.Model.FilteredPersons()
			result := Result{OK: true, Persons: make([]personView, 0, len(persons))}
			for i, p := range persons {
				result.Persons = append(result.Persons, viewPerson(i+1, p))
			}

			if jsonOutput {
				printJSON(result)
				return
			}
			if len(persons) == 0 {
				fmt.Println("No persons.")
				return
			}
			for i, p := range persons {
				fmt.Printf("%d. %s\n", i+1, command.FormatPerson(p))
			}
		},
	}
	return listCmd
}

func newHistoryCmd() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent changes to the address book",
		Run: func(cmd *cobra.Command, args []string) {
			type Result struct {
				OK      bool        `json:"ok"`
				Message string      `json:"message,omitempty"`
				Events  []bus.Event `json:"events"`
			}

			limit, _ := cmd.Flags().GetInt("limit")

			ctx := context.Background()
			_, s := openSession(ctx, "history")
			defer s.Close()

			events, err := bus.Tail(s.DB, limit)
			if err != nil {
				s.Close()
				exitWith(Result{Message: err.Error()}, "%v", err)
			}
			if events == nil {
				events = []bus.Event{}
			}

			if jsonOutput {
				printJSON(Result{OK: true, Events: events})
				return
			}
			if len(events) == 0 {
				fmt.Println("No changes recorded yet.")
				return
			}
			for _, ev := range events {
				source := ""
				if ev.Source != nil {
					source = *ev.Source
				}
				fmt.Printf("%4d  %s  %-16s %-6s %s\n",
					ev.Seq,
					time.Unix(ev.CreatedAt, 0).Format("2006-01-02 15:04:05"),
					ev.Type,
					source,
					describePayload(ev),
				)
			}
		},
	}
	historyCmd.Flags().IntP("limit", "n", 20, "Number of entries to show")
	return historyCmd
}

func describePayload(ev bus.Event) string {
	if ev.Payload == nil {
		return ""
	}
	raw := []byte(*ev.Payload)
	switch ev.Type {
	case bus.TypeCommand:
		var p app.CommandPayload
		if err := json.Unmarshal(raw, &p); err == nil {
			return p.Line
		}
	case bus.TypeImport:
		var p app.ImportRecord
		if err := json.Unmarshal(raw, &p); err == nil {
			return p.Feedback
		}
	}
	return *ev.Payload
}
