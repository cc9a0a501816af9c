package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/yiviportal/internal/client/cli"
	"github.com/dmitrijs2005/yiviportal/internal/client/config"
	"github.com/dmitrijs2005/yiviportal/internal/logging"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()

	logger := logging.NewTextLogger(os.Stderr, logging.LevelFor(cfg.Verbose))

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}
	defer app.Close()

	app.Run(ctx)

}
