// lumenlog drives the logger from the command line.
//
// Usage:
//
//	lumenlog [global options] <command> [command options]
//
// Commands:
//
//	render   simulate a frame loop with nested contexts, counters and summaries
//	stress   run concurrent producers and verify completeness and per-producer order
//
// Examples:
//
//	lumenlog --path ./logs/render.log render --frames 120
//	lumenlog --set rotation=size --set max_size_bytes=65536 stress --producers 8 --records 5000
//	lumenlog --config ./lumenlog.toml stress
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

func main() {
	os.Exit(run())
}

// createApp builds the CLI application.
func createApp() *cli.Command {
	return &cli.Command{
		Name:  "lumenlog",
		Usage: "exercise the async context-aware logger",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "TOML file with a [log] table",
			},
			&cli.StringSliceFlag{
				Name:  "set",
				Usage: "config override as key=value, repeatable",
			},
			&cli.StringFlag{
				Name:    "path",
				Aliases: []string{"p"},
				Usage:   "log file path",
			},
			&cli.BoolFlag{
				Name:  "async",
				Usage: "deliver through the background processor",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "console",
				Usage: "mirror lines to stdout",
			},
		},
		Commands: createCommands(),
	}
}

func run() int {
	app := createApp()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		var verr *verifyError
		if errors.As(err, &verr) {
			fmt.Fprintf(os.Stderr, "verification failed: %v\n", verr)
			return 3
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
