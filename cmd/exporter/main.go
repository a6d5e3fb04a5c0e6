package main

import (
	"context"
	"flag"
	"os"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/appello/internal/app"
	"github.com/shrimpsizemoose/appello/internal/export"
)

func main() {
	var (
		configPath  = flag.String("config", "config.toml", "Path to config file")
		reportID    = flag.Int64("report", 0, "Report id to export")
		professorID = flag.Int64("professor", 0, "Professor id owning the report")
		sortKey     = flag.String("sort", "student.number", "Sort key")
		sortDir     = flag.String("dir", "asc", "Sort direction, asc or desc")
		outPath     = flag.String("out", "", "Output file, stdout when empty")
	)
	flag.Parse()

	if *reportID <= 0 || *professorID <= 0 {
		flag.Usage()
		os.Exit(2)
	}

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to start service: %v", err)
	}
	defer service.Close()

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			logger.Error.Fatalf("Failed to create %s: %v", *outPath, err)
		}
		defer f.Close()
		out = f
	}

	exporter := export.NewCSVExporter(service.Engine, service.Config.Display.TimestampFormat)
	n, err := exporter.Export(context.Background(), out, *professorID, *reportID, *sortKey, *sortDir)
	if err != nil {
		logger.Error.Fatalf("Export of report %d failed: %v", *reportID, err)
	}

	logger.Info.Printf("Exported report %d with %d registrations", *reportID, n)
}
