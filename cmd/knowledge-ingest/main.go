package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/futig/knowledge-backend/internal/builder"
	"github.com/futig/knowledge-backend/internal/entity"
	"go.uber.org/zap"
)

func main() {
	dir := flag.String("dir", "data", "Directory with .txt and .pdf files to ingest")

	// flags are parsed while loading the configuration
	job, err := builder.BuildIngestJob()
	if err != nil {
		log.Fatal("Failed to build ingestion job: ", err)
	}
	logger := job.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	report, err := job.Run(ctx, *dir)
	stop()
	job.Close()

	if err != nil {
		logger.Error("ingestion failed", zap.String("dir", *dir), zap.Error(err))
		os.Exit(1)
	}

	failed := report.Count(entity.IngestionStatusFailed)
	logger.Info("ingestion complete",
		zap.Int("ingested", report.Count(entity.IngestionStatusIngested)),
		zap.Int("skipped", report.Count(entity.IngestionStatusSkipped)),
		zap.Int("failed", failed),
	)
	if failed > 0 {
		os.Exit(1)
	}
}
