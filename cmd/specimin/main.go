// Package main provides the entry point for the specimin CLI tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/kelloggm/specimin/cmd/specimin/commands"
	"github.com/kelloggm/specimin/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := commands.NewRootCommand().ExecuteContext(ctx)

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
