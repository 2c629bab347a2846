package main

import (
	"os"

	"github.com/DRSN-tech/reco-service/internal/app"
	config "github.com/DRSN-tech/reco-service/internal/cfg"
	"github.com/DRSN-tech/reco-service/pkg/logger"
)

func main() {
	log := logger.NewSlogLogger()

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	if err := app.Run(cfg, log); err != nil {
		os.Exit(1)
	}
}
