// ahi-probe is an offline diagnostic tool for a HealthImaging data store.
// It is not part of the HTTP service.
//
//	ahi-probe inspect [--image-set ID] [--out frame.bin]
//	    Prints the state of one image set, walks its metadata, prints
//	    per-series instance counts and writes the middle frame of the
//	    first instance to disk.
//
//	ahi-probe speed --image-set ID --frame ID [--loops 10]
//	    Times frame retrieval against reading S3_URI from S3 and, for
//	    https URIs, over plain HTTP.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/floryst/aws-ahi-playground/internal/config"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" {
		printUsage(stdout)
		return nil
	}

	command, rest := args[0], args[1:]

	var debug bool
	flagSet := pflag.NewFlagSet("ahi-probe "+command, pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.BoolVar(&debug, "debug", false, "enable debug logging")

	var runCommand func(ctx context.Context, cfg *config.Config, stdout io.Writer) error
	switch command {
	case "inspect":
		var opts inspectOptions
		opts.addFlags(flagSet)
		runCommand = opts.run
	case "speed":
		var opts speedOptions
		opts.addFlags(flagSet)
		runCommand = opts.run
	default:
		printUsage(stderr)
		return fmt.Errorf("unknown command %q", command)
	}

	if err := flagSet.Parse(rest); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if debug || cfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	return runCommand(context.Background(), cfg, stdout)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `Usage: ahi-probe <command> [flags]

Commands:
  inspect   walk one image set's metadata and dump its middle frame
  speed     compare frame retrieval time against S3_URI

Environment:
  AHI_DATASTORE_ID  data store to probe (required)
  S3_URI            object used by "speed"`)
}
