package main

import (
	"context"
	"os"
	"os/signal"

	"factoriowiki/cmd/factoriowiki/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(commands.ExecuteContext(ctx))
}
