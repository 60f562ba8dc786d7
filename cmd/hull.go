// Package cmd provides command-line interface commands for working with
// hull definitions without running the API server: importing hull files,
// computing hydrostatics tables, and righting-arm curves.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"navarch/bootstrap"
	"navarch/storage"
)

// CLI output formatters
var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgBlue, color.Bold)
)

// Global flags for hull commands
var (
	outputJSON bool
	noColor    bool
	quiet      bool
)

const (
	maxImportFileSize = 10 * 1024 * 1024 // protection against memory exhaustion
	defaultTimeout    = 5 * time.Minute
)

// validateFilePath rejects paths that traverse outside the working
// directory, including URL-encoded traversal sequences.
func validateFilePath(filename string) error {
	decoded, err := url.QueryUnescape(filename)
	if err != nil {
		decoded = filename
	}

	if strings.Contains(decoded, "..") || strings.Contains(filename, "..") {
		return fmt.Errorf("path traversal detected: '..' not allowed in file path")
	}

	cleanPath := filepath.Clean(decoded)
	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	if !strings.HasPrefix(absPath, workDir) {
		return fmt.Errorf("path escapes current directory")
	}
	return nil
}

// NewHullCmd creates the root hull command with all subcommands.
func NewHullCmd() *cobra.Command {
	hullCmd := &cobra.Command{
		Use:   "hull",
		Short: "Work with hull definitions from the command line",
		Long: `Import hull definition files and compute hydrostatics and stability
without running the API server. Results are written to the configured
storage backend and printed to the terminal.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}

	hullCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output in JSON format")
	hullCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	hullCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress non-essential output")

	hullCmd.AddCommand(newImportCmd())
	hullCmd.AddCommand(newListCmd())
	hullCmd.AddCommand(newHydroCmd())
	hullCmd.AddCommand(newTableCmd())
	hullCmd.AddCommand(newGZCmd())
	hullCmd.AddCommand(newCriteriaCmd())

	return hullCmd
}

// initStore opens the configured storage backend for a CLI invocation.
func initStore() (storage.Store, func(), error) {
	_, sugar, err := bootstrap.InitLogger("error", false)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := bootstrap.InitConfig(sugar)
	if err != nil {
		return nil, nil, err
	}
	store, err := bootstrap.InitStorage(cfg, sugar)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { store.Close() }, nil
}

// newSpinner returns a started spinner, or nil when quiet or JSON output
// is requested.
func newSpinner(message string) *spinner.Spinner {
	if quiet || outputJSON {
		return nil
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Start()
	return s
}

func stopSpinner(s *spinner.Spinner) {
	if s != nil {
		s.Stop()
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newListCmd creates the 'list' subcommand
func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored vessels",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
			defer cancel()

			store, cleanup, err := initStore()
			if err != nil {
				return err
			}
			defer cleanup()

			vessels, err := store.GetVessels(ctx, 500, 0)
			if err != nil {
				return fmt.Errorf("failed to list vessels: %w", err)
			}

			if outputJSON {
				return printJSON(vessels)
			}

			if len(vessels) == 0 {
				warningColor.Println("No vessels stored")
				return nil
			}
			headerColor.Printf("%-38s %-24s %-12s %s\n", "ID", "NAME", "GEOM REV", "UPDATED")
			for _, v := range vessels {
				fmt.Printf("%-38s %-24s %-12d %s\n", v.ID, v.Name, v.GeometryRev, v.UpdatedAt.Format(time.RFC3339))
			}
			return nil
		},
	}
}
