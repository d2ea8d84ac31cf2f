// Package main is the entry point for the mokurodb CLI.
//
// mokurodb manages a local SQLite store of manga volumes: it imports
// and exports mokuro volume archives, lists and deletes volumes, and
// searches OCR text.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/mokurodb/mokurodb/internal/cli"
)

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "mokurodb: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	ll := &slog.LevelVar{}
	ll.Set(slog.LevelInfo)
	logger := slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
	slog.SetDefault(logger)

	return cli.NewRootCommand(ll).Execute()
}
