package port

import (
	"context"

	"leukemia-bot/internal/domain/entity"
)

// Classifier интерфейс удалённого сервиса модели
type Classifier interface {
	// Classify отправляет изображение на классификацию выбранной моделью.
	// Ошибки: entity.ErrTransport, *entity.RemoteRejectionError, entity.ErrMalformedResponse.
	Classify(ctx context.Context, req entity.ClassificationRequest) (*entity.ClassificationResult, error)
}
