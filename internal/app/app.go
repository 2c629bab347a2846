package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/reco-service/internal/cfg"
	v1Http "github.com/DRSN-tech/reco-service/internal/delivery/v1/http"
	qdrantRepo "github.com/DRSN-tech/reco-service/internal/repository/qdrant"
	redisRepo "github.com/DRSN-tech/reco-service/internal/repository/redis"
	"github.com/DRSN-tech/reco-service/internal/usecase"
	"github.com/DRSN-tech/reco-service/pkg/clients"
	"github.com/DRSN-tech/reco-service/pkg/closer"
	"github.com/DRSN-tech/reco-service/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// Run поднимает HTTP-сервис рекомендаций и блокируется до сигнала завершения.
func Run(cfg *config.Config, log logger.Logger) error {
	cl := closer.NewCloser()

	qdrantClient, err := clients.NewQdrantClient(cfg.Qdrant)
	if err != nil {
		log.Errorf(err, "failed to initialize qdrant client")
		return err
	}
	cl.Add(func(ctx context.Context) error {
		return qdrantClient.Client.Close()
	})

	qdrantCtx, qdrantCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := clients.EnsureCollection(qdrantCtx, qdrantClient); err != nil {
		qdrantCancel()
		log.Errorf(err, "failed to initialize qdrant collection")
		return err
	}
	qdrantCancel()

	productRepo := qdrantRepo.NewProductRepo(qdrantClient.Client, cfg.Qdrant)

	redisClient := clients.NewRedisClient(cfg.Redis)
	redisCtx, redisCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer redisCancel()
	if err := redisClient.Ping(redisCtx); err != nil {
		log.Errorf(err, "failed to connect to redis")
		return err
	}
	cl.Add(func(ctx context.Context) error {
		return redisClient.Client.Close()
	})

	cacheRepo := redisRepo.NewCacheRepo(redisClient, cfg.Redis, log)

	recoUC := usecase.NewRecommendationUC(productRepo, cacheRepo, log)

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, log)
	router.Init(recoUC, cfg.Reco.DefaultLimit)

	httpSrv := v1Http.NewServer(r, cfg.Http)
	cl.Add(func(ctx context.Context) error {
		return httpSrv.Stop(ctx)
	})

	errCh := make(chan error, 1)
	go func() {
		log.Infof("HTTP server started on port %s", cfg.Http.Port)
		if err := httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf(err, "HTTP server failed")
			errCh <- err
		}
	}()

	// === Ожидание сигнала или ошибки ===
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		log.Errorf(appErr, "HTTP server fatal error")
	case <-shutdown:
		log.Infof("Received shutdown signal, stopping gracefully...")
	}

	// === Graceful shutdown (LIFO) ===
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := cl.Close(shutdownCtx); err != nil {
		log.Errorf(err, "shutdown finished with errors")
	} else {
		log.Infof("Application shutdown complete")
	}

	return appErr
}
