// Package main is the entry point for the navarch hydrostatics service.
package main

import (
	"fmt"
	"os"

	"navarch/bootstrap"
	"navarch/cmd"
)

// run initializes and starts the API server.
func run() error {
	app, err := bootstrap.NewApp()
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Start()
	}()

	// A listen failure surfaces here before any shutdown signal arrives.
	select {
	case err := <-errCh:
		app.Shutdown()
		return err
	case <-app.ShutdownSignal():
	}

	app.Shutdown()
	return nil
}

// main is the entry point.
func main() {
	// Check if running as CLI command
	if len(os.Args) > 1 && os.Args[1] == "hull" {
		// Strip "hull" from os.Args since the command already knows its name
		os.Args = append([]string{os.Args[0]}, os.Args[2:]...)

		hullCmd := cmd.NewHullCmd()
		if err := hullCmd.Execute(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}
