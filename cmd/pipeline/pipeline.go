package main

import (
	"context"
	"flag"
	"os"

	"github.com/DRSN-tech/reco-service/internal/app"
	config "github.com/DRSN-tech/reco-service/internal/cfg"
	"github.com/DRSN-tech/reco-service/pkg/logger"
)

func main() {
	csvPath := flag.String("csv-path", "", "path to the products CSV file (default: DATA_PATH env)")
	modelName := flag.String("model-name", "", "embedding model name (default: EMBEDDING_MODEL env)")
	flag.Parse()

	log := logger.NewSlogLogger()

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	if *modelName != "" {
		cfg.Embedder.Model = *modelName
	}

	if err := app.RunPipeline(context.Background(), cfg, log, *csvPath); err != nil {
		os.Exit(1)
	}
}
