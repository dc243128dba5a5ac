package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/dpshade/contract-desk/internal/cli"
	"github.com/dpshade/contract-desk/internal/ui"
)

var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Execute(ctx, version, ui.Run)
	stop()
	os.Exit(code)
}
