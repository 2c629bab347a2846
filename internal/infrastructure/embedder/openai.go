package embedder

import (
	"context"

	"github.com/DRSN-tech/reco-service/internal/cfg"
	"github.com/DRSN-tech/reco-service/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/sashabaranov/go-openai"
)

// OpenAIEmbedder вычисляет эмбеддинги текстов через OpenAI-совместимый endpoint.
// Результат детерминирован при одинаковом тексте и одной версии модели;
// смешивать векторы разных версий модели в одной коллекции нельзя.
type OpenAIEmbedder struct {
	client *openai.Client
	cfg    *cfg.EmbedderCfg
}

func NewOpenAIEmbedder(cfg *cfg.EmbedderCfg) *OpenAIEmbedder {
	clientCfg := openai.DefaultConfig(cfg.Token)
	clientCfg.BaseURL = cfg.Endpoint

	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
	}
}

// EmbedTexts возвращает вектор для каждого текста, сохраняя порядок входа.
// Тексты отправляются чанками размера BatchSize.
func (o *OpenAIEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += o.cfg.BatchSize {
		end := start + o.cfg.BatchSize
		if end > len(texts) {
			end = len(texts)
		}

		resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: texts[start:end],
			Model: openai.EmbeddingModel(o.cfg.Model),
		})
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		if len(resp.Data) != end-start {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrVectorSizeMismatch)
		}

		for _, item := range resp.Data {
			vectors = append(vectors, item.Embedding)
		}
	}

	return vectors, nil
}

// ModelVersion возвращает имя модели, которой посчитаны векторы.
func (o *OpenAIEmbedder) ModelVersion() string {
	return o.cfg.Model
}
