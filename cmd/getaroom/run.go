package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func run(args []string, stdout, stderr io.Writer) int {
	cmd, rest := parseCommand(args)
	if cmd == CommandHelp {
		printUsage(stdout)
		return exitOK
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd {
	case CommandIn:
		opts, perr := parseInArgs(rest, time.Now())
		if perr != nil {
			fmt.Fprintln(stderr, perr)
			printUsage(stderr)
			return exitUsage
		}
		err = withApp(ctx, func(a *app) error { return a.in(ctx, opts, stdout, stderr) })
	case CommandPopulate:
		err = withApp(ctx, func(a *app) error { return a.populate(ctx, populateSource(a, rest), stdout) })
	case CommandMigrate:
		err = withApp(ctx, func(a *app) error { return a.migrate(stdout) })
	case CommandServe:
		err = withApp(ctx, func(a *app) error { return a.serve(ctx) })
	}

	if err != nil {
		fmt.Fprintf(stderr, "getaroom %s: %v\n", cmd, err)
		return exitError
	}
	return exitOK
}

func populateSource(a *app, args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return a.cfg.Ingestion.SourceFile
}

// withApp opens the store once for the invocation and always closes it.
func withApp(ctx context.Context, fn func(*app) error) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
