package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"storefront/client/internal/cli"

	log "github.com/sirupsen/logrus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Run the application
	if err := cli.NewRootCommand(cli.DefaultBuilder).ExecuteContext(ctx); err != nil {
		log.Errorf("❌ %v", err)
		stop()
		os.Exit(1)
	}
}
