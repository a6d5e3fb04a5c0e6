package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/appello/internal/admin"
	"github.com/shrimpsizemoose/appello/internal/app"
)

// Usage:
//
//	admin -config config.toml professor add Ada Lovelace ada@uni.example
//	admin -config config.toml < catalog.txt
func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to start service: %v", err)
	}
	defer service.Close()

	var tokens admin.TokenIssuer
	if service.Config.Auth.RedisURL != "" {
		tm, err := app.NewTokenManagerFromConfig(service.Config)
		if err != nil {
			logger.Error.Fatalf("Failed to connect token store: %v", err)
		}
		defer tm.Close()
		tokens = tm
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := admin.New(service.Engine, tokens, os.Stdout)

	if flag.NArg() > 0 {
		if err := a.Run(ctx, flag.Args()); err != nil {
			logger.Error.Fatalf("Command failed: %v", err)
		}
		return
	}

	logger.Info.Println("Reading commands from stdin")
	if err := a.Serve(ctx, os.Stdin); err != nil {
		logger.Error.Fatalf("Admin session failed: %v", err)
	}
}
