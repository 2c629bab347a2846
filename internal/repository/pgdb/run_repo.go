package pgdb

import (
	"context"

	"github.com/DRSN-tech/reco-service/internal/usecase"
	"github.com/DRSN-tech/reco-service/pkg/e"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// RunRepo реализует реестр запусков пайплайна поверх PostgreSQL.
type RunRepo struct {
	pool *pgxpool.Pool
}

func NewRunRepo(pool *pgxpool.Pool) *RunRepo {
	return &RunRepo{
		pool: pool,
	}
}

// Create добавляет запись о завершённом запуске пайплайна.
func (r *RunRepo) Create(ctx context.Context, run *usecase.PipelineRun) error {
	query := `
		INSERT INTO pipeline_runs
			(run_id, model_version, started_at, finished_at, rows_read, rows_indexed, rows_skipped, snapshot_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`

	_, err := r.pool.Exec(ctx, query,
		run.RunID,
		run.ModelVersion,
		run.StartedAt,
		run.FinishedAt,
		run.RowsRead,
		run.RowsIndexed,
		run.RowsSkipped,
		run.SnapshotPath,
	)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
