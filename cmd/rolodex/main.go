package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Napageneral/rolodex/internal/config"
	"github.com/Napageneral/rolodex/internal/db"
)

var (
	version    = "dev"
	commit     = "none"
	buildDate  = "unknown"
	jsonOutput bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rolodex",
		Short: "Address book with events and a CSV inbox",
		Long: `Rolodex keeps contacts and the events they attend in a local
SQLite database. Commands can be run one at a time (exec), in an
interactive shell, or fed by CSV files dropped into the import directory.`,
	}

	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	// version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			if jsonOutput {
				printJSON(map[string]string{
					"version": version,
					"commit":  commit,
					"date":    buildDate,
				})
			} else {
				fmt.Printf("rolodex %s (%s, %s)\n", version, commit, buildDate)
			}
		},
	})

	// init command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Initialize rolodex config and database",
		Run: func(cmd *cobra.Command, args []string) {
			type Result struct {
				OK        bool   `json:"ok"`
				Message   string `json:"message,omitempty"`
				ConfigDir string `json:"config_dir,omitempty"`
				DataDir   string `json:"data_dir,omitempty"`
				DBPath    string `json:"db_path,omitempty"`
				ImportDir string `json:"import_dir,omitempty"`
			}

			result := Result{OK: true}

			configDir, err := config.GetConfigDir()
			if err != nil {
				exitWith(Result{Message: fmt.Sprintf("Failed to get config directory: %v", err)}, "Failed to get config directory: %v", err)
			}
			result.ConfigDir = configDir

			dataDir, err := config.GetDataDir()
			if err != nil {
				exitWith(Result{Message: fmt.Sprintf("Failed to get data directory: %v", err)}, "Failed to get data directory: %v", err)
			}
			result.DataDir = dataDir

			if err := os.MkdirAll(dataDir, 0755); err != nil {
				exitWith(Result{Message: fmt.Sprintf("Failed to create data directory: %v", err)}, "Failed to create data directory: %v", err)
			}

			cfg, err := config.Load()
			if err != nil {
				exitWith(Result{Message: fmt.Sprintf("Failed to load config: %v", err)}, "Failed to load config: %v", err)
			}
			// Write the defaults out so there is a file to edit.
			if _, statErr := os.Stat(filepath.Join(configDir, "config.yaml")); os.IsNotExist(statErr) {
				if err := cfg.Save(); err != nil {
					exitWith(Result{Message: fmt.Sprintf("Failed to save config: %v", err)}, "Failed to save config: %v", err)
				}
			}

			if err := db.Init(cfg); err != nil {
				exitWith(Result{Message: fmt.Sprintf("Failed to initialize database: %v", err)}, "Failed to initialize database: %v", err)
			}
			result.DBPath, _ = cfg.DatabasePath()

			importDir, err := cfg.ImportPath()
			if err == nil {
				err = os.MkdirAll(importDir, 0755)
			}
			if err != nil {
				exitWith(Result{Message: fmt.Sprintf("Failed to create import directory: %v", err)}, "Failed to create import directory: %v", err)
			}
			result.ImportDir = importDir
			result.Message = "Rolodex initialized successfully"

			if jsonOutput {
				printJSON(result)
			} else {
				fmt.Println("✓ Rolodex initialized")
				fmt.Printf("  Config: %s\n", result.ConfigDir)
				fmt.Printf("  Database: %s\n", result.DBPath)
				fmt.Printf("  Imports: %s\n", result.ImportDir)
				fmt.Println("\nNext: rolodex shell, or rolodex exec \"add n/... p/... e/... a/...\"")
			}
		},
	})

	// config command
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Run: func(cmd *cobra.Command, args []string) {
			type Result struct {
				OK      bool           `json:"ok"`
				Message string         `json:"message,omitempty"`
				Config  *config.Config `json:"config,omitempty"`
			}
			cfg, err := config.Load()
			if err != nil {
				exitWith(Result{Message: fmt.Sprintf("Failed to load config: %v", err)}, "Failed to load config: %v", err)
			}
			if jsonOutput {
				printJSON(Result{OK: true, Config: cfg})
				return
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				exitWith(Result{Message: err.Error()}, "%v", err)
			}
			fmt.Print(string(data))
		},
	})
	rootCmd.AddCommand(configCmd)

	rootCmd.AddCommand(newExecCmd())
	rootCmd.AddCommand(newShellCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newWatchCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// exitWith reports a failure as result (with --json) or as a plain error
// line, then exits with status 1. result should carry OK false.
func exitWith(result any, format string, args ...any) {
	if jsonOutput {
		printJSON(result)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", fmt.Sprintf(format, args...))
	}
	os.Exit(1)
}
