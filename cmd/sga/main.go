// Command sga inspects and unpacks SGA game archives.
//
// Archive formats and Chunky extractors are provided by plugin packages that
// declare themselves at init time. Build a binary that blank-imports them to
// make their versions available:
//
//	import _ "example.com/sga-v2"
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/meigma/sga"
	"github.com/meigma/sga/chunky"
	"github.com/meigma/sga/internal/cli"
	"github.com/meigma/sga/plugin"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := cli.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return cli.ExitUsage
	}
	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return cli.ExitUsage
	}

	opener, err := sga.NewOpener(
		sga.WithAutoload(cfg.PluginAutoload),
		sga.WithLogger(logger),
	)
	if err != nil {
		logger.Error("failed to load archive plugins", "error", err)
		return cli.ExitError
	}

	extractors := chunky.NewRegistry(chunky.WithLogger(logger))
	if cfg.PluginAutoload {
		if _, err := extractors.Load(plugin.Declared[chunky.Extractor]{}); err != nil {
			logger.Error("failed to load chunky extractors", "error", err)
			return cli.ExitError
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := &cli.App{
		Opener:     opener,
		Extractors: extractors,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		Logger:     logger,
	}
	return app.Run(ctx, os.Args[1:])
}
