package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"modeldoc/internal/commands"
	"modeldoc/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := commands.RootCmd().ExecuteContext(ctx); err != nil {
		logger.Error(err.Error())
		stop()
		os.Exit(1)
	}
}
