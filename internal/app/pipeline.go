package app

import (
	"context"
	"time"

	config "github.com/DRSN-tech/reco-service/internal/cfg"
	"github.com/DRSN-tech/reco-service/internal/infrastructure/catalog"
	"github.com/DRSN-tech/reco-service/internal/infrastructure/embedder"
	"github.com/DRSN-tech/reco-service/internal/infrastructure/kafka"
	"github.com/DRSN-tech/reco-service/internal/infrastructure/snapshot"
	minioRepo "github.com/DRSN-tech/reco-service/internal/repository/minio"
	"github.com/DRSN-tech/reco-service/internal/repository/pgdb"
	qdrantRepo "github.com/DRSN-tech/reco-service/internal/repository/qdrant"
	redisRepo "github.com/DRSN-tech/reco-service/internal/repository/redis"
	"github.com/DRSN-tech/reco-service/internal/usecase"
	"github.com/DRSN-tech/reco-service/pkg/clients"
	"github.com/DRSN-tech/reco-service/pkg/logger"
	"github.com/DRSN-tech/reco-service/pkg/postgres"
)

// RunPipeline выполняет один прогон пайплайна материализации эмбеддингов.
// Предполагается ровно один одновременный прогон на коллекцию.
func RunPipeline(ctx context.Context, cfg *config.Config, log logger.Logger, csvPath string) error {
	qdrantClient, err := clients.NewQdrantClient(cfg.Qdrant)
	if err != nil {
		log.Errorf(err, "failed to initialize qdrant client")
		return err
	}
	defer func() {
		if err := qdrantClient.Client.Close(); err != nil {
			log.Warnf("Qdrant close error: %v", err)
		}
	}()

	qdrantCtx, qdrantCancel := context.WithTimeout(ctx, 10*time.Second)
	if err := clients.EnsureCollection(qdrantCtx, qdrantClient); err != nil {
		qdrantCancel()
		log.Errorf(err, "failed to initialize qdrant collection")
		return err
	}
	qdrantCancel()

	productRepo := qdrantRepo.NewProductRepo(qdrantClient.Client, cfg.Qdrant)

	db, err := postgres.Connect(cfg.Db)
	if err != nil {
		log.Errorf(err, "failed to connect to database")
		return err
	}
	defer db.Close()

	if err := db.RunMigrations(log); err != nil {
		log.Errorf(err, "failed to run migrations")
		return err
	}

	runRepo := pgdb.NewRunRepo(db.Pool)

	redisClient := clients.NewRedisClient(cfg.Redis)
	redisCtx, redisCancel := context.WithTimeout(ctx, 5*time.Second)
	if err := redisClient.Ping(redisCtx); err != nil {
		redisCancel()
		log.Errorf(err, "failed to connect to redis")
		return err
	}
	redisCancel()
	defer func() {
		if err := redisClient.Client.Close(); err != nil {
			log.Warnf("Redis close error: %v", err)
		}
	}()

	cacheRepo := redisRepo.NewCacheRepo(redisClient, cfg.Redis, log)

	// Архив снапшотов опционален: без бакета снапшот остаётся только локальным
	var snapshotRepo usecase.SnapshotArchiveRepository
	if cfg.Minio.BucketName != "" {
		minioClient, err := clients.NewMinIOClient(cfg.Minio)
		if err != nil {
			log.Errorf(err, "failed to initialize minio client")
			return err
		}

		minioCtx, minioCancel := context.WithTimeout(ctx, 10*time.Second)
		if err := clients.EnsureBucket(minioCtx, minioClient, cfg.Minio.BucketName); err != nil {
			minioCancel()
			log.Errorf(err, "failed to initialize MinIO bucket")
			return err
		}
		minioCancel()

		snapshotRepo = minioRepo.NewSnapshotRepo(minioClient, cfg.Minio)
	}

	producer, err := kafka.NewProducer(log, cfg.Kafka)
	if err != nil {
		log.Errorf(err, "failed to initialize kafka producer")
		return err
	}
	defer func() {
		if err := producer.Close(); err != nil {
			log.Warnf("Kafka producer close error: %v", err)
		}
	}()

	if err := producer.EnsureTopic(10 * time.Second); err != nil {
		log.Errorf(err, "failed to ensure kafka topic")
		return err
	}

	pipelineUC := usecase.NewPipelineUC(
		productRepo,
		runRepo,
		snapshotRepo,
		catalog.NewCSVReader(log),
		embedder.NewOpenAIEmbedder(cfg.Embedder),
		snapshot.NewParquetWriter(cfg.Pipeline.SnapshotsDir),
		producer,
		cacheRepo,
		cfg.Pipeline,
		log,
	)

	res, err := pipelineUC.Run(ctx, usecase.NewRunPipelineReq(csvPath))
	if err != nil {
		log.Errorf(err, "pipeline run failed")
		return err
	}

	log.Infof(
		"pipeline run %s completed: read=%d indexed=%d skipped=%d snapshot=%s",
		res.Run.RunID, res.Run.RowsRead, res.Run.RowsIndexed, res.Run.RowsSkipped, res.Run.SnapshotPath,
	)

	return nil
}
