package port

import (
	"context"

	"leukemia-bot/internal/domain/entity"
)

// Preview отображаемый ресурс, построенный из выбранного изображения
type Preview struct {
	Data     []byte
	MimeType string
	Width    int
	Height   int
}

// PreviewRenderer интерфейс построителя превью
type PreviewRenderer interface {
	// Render строит уменьшенную копию изображения для показа пользователю
	Render(image *entity.SelectedImage) (*Preview, error)
}

// PreviewStore интерфейс хранилища ресурсов превью
type PreviewStore interface {
	// Create сохраняет ресурс и возвращает ссылку на него
	Create(ctx context.Context, preview *Preview, image *entity.SelectedImage) (*entity.PreviewHandle, error)

	// Open возвращает данные ресурса по ID ссылки
	Open(ctx context.Context, handleID string) (*Preview, error)

	// Release освобождает ресурс. Повторный вызов не является ошибкой.
	Release(ctx context.Context, handleID string) error
}
