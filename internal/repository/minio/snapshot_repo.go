package minio

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/DRSN-tech/reco-service/internal/cfg"
	"github.com/DRSN-tech/reco-service/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

const snapshotContentType = "application/vnd.apache.parquet"

// SnapshotRepo хранит parquet-снапшоты пайплайна в MinIO.
type SnapshotRepo struct {
	mc  *minio.Client
	cfg *cfg.MinIOCfg
}

func NewSnapshotRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *SnapshotRepo {
	return &SnapshotRepo{
		mc:  mc,
		cfg: cfg,
	}
}

// Upload загружает локальный файл снапшота под датированным ключом
// и возвращает ключ объекта.
func (s *SnapshotRepo) Upload(ctx context.Context, localPath string, runDate time.Time) (string, error) {
	objectKey := fmt.Sprintf("date=%s/%s", runDate.Format("2006-01-02"), filepath.Base(localPath))

	info, err := s.mc.FPutObject(ctx, s.cfg.BucketName, objectKey, localPath, minio.PutObjectOptions{
		ContentType: snapshotContentType,
	})
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return info.Key, nil
}
