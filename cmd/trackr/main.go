package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"trackr/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "trackr:", err)
		os.Exit(1)
	}
}
