package usecase

import (
	"context"
	"fmt"
	"strings"

	"smartinventory/internal/domain/model"
	"smartinventory/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// 顔画像から一番強い感情を返す
type EmotionClassifier interface {
	DominantEmotion(ctx context.Context, image []byte) (string, error)
}

// 感情ごとのおすすめ
type CatalogLookup interface {
	ByEmotion(emotion string) []model.CatalogItem
}

type Recommendation struct {
	Emotion string              `json:"emotion"`
	Items   []model.CatalogItem `json:"items"`
}

type RecommendUsecase struct {
	classifier EmotionClassifier
	catalog    CatalogLookup
	logger     *zap.Logger
	tracer     trace.Tracer
}

func NewRecommendUsecase(classifier EmotionClassifier, catalog CatalogLookup, logger *zap.Logger) *RecommendUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecommendUsecase{
		classifier: classifier,
		catalog:    catalog,
		logger:     logger,
		tracer:     observability.Tracer(),
	}
}

// Recommend は画像の感情を判定し、同じ感情のカタログ商品を返す。
// 該当なしは空のリスト（エラーではない）。
func (u *RecommendUsecase) Recommend(ctx context.Context, image []byte) (Recommendation, error) {
	if len(image) == 0 {
		return Recommendation{}, fmt.Errorf("%w: image required", ErrInvalidInput)
	}

	ctx, span := u.tracer.Start(ctx, "recommend.by_emotion")
	defer span.End()

	emotion, err := u.classifier.DominantEmotion(ctx, image)
	if err != nil {
		span.RecordError(err)
		u.logger.Warn("emotion detection failed", zap.Error(err))
		return Recommendation{}, fmt.Errorf("%w: %v", ErrAdapterFailure, err)
	}
	emotion = strings.ToLower(strings.TrimSpace(emotion))
	if emotion == "" {
		return Recommendation{}, fmt.Errorf("%w: empty emotion", ErrAdapterFailure)
	}
	span.SetAttributes(attribute.String("recommend.emotion", emotion))

	items := u.catalog.ByEmotion(emotion)
	if items == nil {
		items = []model.CatalogItem{}
	}
	u.logger.Info("emotion detected", zap.String("emotion", emotion), zap.Int("items", len(items)))

	return Recommendation{Emotion: emotion, Items: items}, nil
}
