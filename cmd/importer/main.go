package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"collisionos/internal/config"
	_ "collisionos/internal/parser/bms"
	_ "collisionos/internal/parser/ems"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCommand(os.Stdout)
	err := root.ParseAndRun(ctx, os.Args[1:], ff.WithEnvVarPrefix("COLLISIONOS"))
	switch {
	case err == nil:
	case errors.Is(err, ff.ErrHelp):
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Command(root.GetSelected()))
	default:
		if errors.Is(err, ff.ErrNoExec) || errors.Is(err, ff.ErrUnknownFlag) {
			fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Command(root.GetSelected()))
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(stdout io.Writer) *ff.Command {
	rootFlags := ff.NewFlagSet("importer")

	root := &ff.Command{
		Name:      "importer",
		Usage:     "importer <subcommand> [flags]",
		ShortHelp: "ingest collision repair estimates and inspect the import ledger",
		Flags:     rootFlags,
		Subcommands: []*ff.Command{
			newImportCommand(rootFlags, stdout),
			newStatsCommand(rootFlags, stdout),
			newExportCommand(rootFlags, stdout),
			newPurgeCommand(rootFlags, stdout),
		},
	}
	return root
}

// loadDeps loads configuration and returns a deps wrapper. Callers must
// close it.
func loadDeps() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &deps{cfg: cfg}, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

