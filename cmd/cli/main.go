package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/pipelibgo/internal/app"
	"github.com/vk/pipelibgo/internal/cli"
	"github.com/vk/pipelibgo/internal/executor"
)

// main is the entrypoint for the pipelibgo application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	pipelibApp, err := app.NewApp(outW, appConfig)
	if err != nil {
		return err
	}

	return pipelibApp.Run(context.Background())
}

// printError writes err to w. Module execution failures additionally get
// their pruned stack span, innermost frame first.
func printError(w io.Writer, err error) {
	fmt.Fprintln(w, err)

	var execErr *executor.ModuleExecutionError
	if errors.As(err, &execErr) {
		for _, frame := range execErr.Frames {
			fmt.Fprintf(w, "\tat %s (%s:%d)\n", frame.Function, frame.File, frame.Line)
		}
	}
}
