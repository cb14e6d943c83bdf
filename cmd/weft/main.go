package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/weftworks/weft/internal/app"
	"github.com/weftworks/weft/internal/cli"
	"github.com/weftworks/weft/internal/hcl"
)

// main is the entrypoint for the weft application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and
// error handling.
func run(outW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	loader := hcl.NewLoader()
	weftApp, err := app.New(outW, appConfig, loader)
	if err != nil {
		return err
	}

	return weftApp.Run(context.Background(), appConfig)
}
