package main

import (
	"flag"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/appello/internal/app"
	"github.com/shrimpsizemoose/appello/internal/handlers"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to start service: %v", err)
	}
	defer service.Close()

	mux := http.NewServeMux()
	handlers.NewHandler(service).Routes(mux)

	logger.Info.Printf("Starting appello server on %s", service.Config.Server.Port)
	logger.Debug.Println("Requiring headers:")
	for _, h := range service.Config.API.RequiredHeaders {
		logger.Debug.Printf("  %s: %s", h.Name, h.Value)
	}
	if err := http.ListenAndServe(service.Config.Server.Port, mux); err != nil {
		logger.Error.Fatalf("Appello server failed: %v", err)
	}
}
