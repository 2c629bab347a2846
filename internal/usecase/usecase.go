package usecase

import (
	"context"

	"github.com/DRSN-tech/reco-service/internal/domain"
)

type RecommendationUC interface {
	Recommend(ctx context.Context, req *RecommendReq) (*domain.Recommendations, error)
}

type PipelineUC interface {
	Run(ctx context.Context, req *RunPipelineReq) (*RunPipelineRes, error)
}
