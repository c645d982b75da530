package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"leukemia-bot/internal/domain/entity"
	"leukemia-bot/internal/domain/port"
)

// MemoryPreviewStore держит ресурсы превью в памяти процесса
type MemoryPreviewStore struct {
	mu       sync.RWMutex
	previews map[string]*port.Preview
}

// NewMemoryPreviewStore создаёт пустое хранилище превью
func NewMemoryPreviewStore() *MemoryPreviewStore {
	return &MemoryPreviewStore{
		previews: make(map[string]*port.Preview),
	}
}

// Create сохраняет ресурс под новым ID
func (s *MemoryPreviewStore) Create(ctx context.Context, preview *port.Preview, image *entity.SelectedImage) (*entity.PreviewHandle, error) {
	if preview == nil || len(preview.Data) == 0 {
		return nil, fmt.Errorf("create preview: empty resource")
	}

	id := uuid.NewString()

	s.mu.Lock()
	s.previews[id] = preview
	s.mu.Unlock()

	return &entity.PreviewHandle{
		ID:       id,
		FileName: image.FileName,
		MimeType: preview.MimeType,
		Size:     len(preview.Data),
		Width:    preview.Width,
		Height:   preview.Height,
	}, nil
}

// Open возвращает ресурс по ID
func (s *MemoryPreviewStore) Open(ctx context.Context, handleID string) (*port.Preview, error) {
	s.mu.RLock()
	p, ok := s.previews[handleID]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("preview %s is released", handleID)
	}
	return p, nil
}

// Release удаляет ресурс
func (s *MemoryPreviewStore) Release(ctx context.Context, handleID string) error {
	s.mu.Lock()
	delete(s.previews, handleID)
	s.mu.Unlock()

	return nil
}

// Live количество неосвобождённых ресурсов
func (s *MemoryPreviewStore) Live() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.previews)
}

// Проверка реализации интерфейса
var _ port.PreviewStore = (*MemoryPreviewStore)(nil)
