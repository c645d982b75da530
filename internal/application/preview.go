package app

import (
	"context"
	"log/slog"
	"sync"

	"leukemia-bot/internal/domain/entity"
	"leukemia-bot/internal/domain/port"
)

// SelectionEvent сообщает о смене выбранного изображения.
// Image == nil означает, что выбор очищен.
type SelectionEvent struct {
	Image  *entity.SelectedImage
	Handle *entity.PreviewHandle
}

// PreviewManager владеет выбранным изображением и его единственным живым превью.
type PreviewManager struct {
	renderer port.PreviewRenderer
	store    port.PreviewStore
	maxBytes int
	logger   *slog.Logger

	mu          sync.Mutex
	image       *entity.SelectedImage
	handle      *entity.PreviewHandle
	subscribers []func(SelectionEvent)
}

// NewPreviewManager создаёт менеджер превью. Без renderer превью совпадает с оригиналом.
func NewPreviewManager(renderer port.PreviewRenderer, store port.PreviewStore, maxBytes int, logger *slog.Logger) *PreviewManager {
	if maxBytes <= 0 {
		maxBytes = entity.DefaultMaxImageBytes
	}
	return &PreviewManager{
		renderer: renderer,
		store:    store,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// Subscribe регистрирует обработчик смены выбора.
// Обработчик вызывается синхронно, в порядке выборов, и не должен обращаться к менеджеру.
func (m *PreviewManager) Subscribe(fn func(SelectionEvent)) {
	m.mu.Lock()
	m.subscribers = append(m.subscribers, fn)
	m.mu.Unlock()
}

// Select проверяет файл, строит превью и заменяет предыдущее.
// Невалидный файл отклоняется с entity.ErrInvalidInput без изменения состояния.
func (m *PreviewManager) Select(ctx context.Context, image *entity.SelectedImage) (*entity.PreviewHandle, error) {
	if err := image.Validate(m.maxBytes); err != nil {
		return nil, err
	}

	preview := m.render(image)

	m.mu.Lock()
	defer m.mu.Unlock()

	handle, err := m.store.Create(ctx, preview, image)
	if err != nil {
		return nil, err
	}

	// Старое превью освобождается в том же шаге, где устанавливается новое.
	m.releaseLocked(ctx)
	m.image = image
	m.handle = handle

	m.emitLocked(SelectionEvent{Image: image, Handle: handle})
	return handle, nil
}

// Clear освобождает превью и сбрасывает выбор
func (m *PreviewManager) Clear(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.releaseLocked(ctx)
	m.image = nil
	m.emitLocked(SelectionEvent{})
}

// Close освобождает превью без уведомления подписчиков и отписывает их
func (m *PreviewManager) Close(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.releaseLocked(ctx)
	m.image = nil
	m.subscribers = nil
}

// Current возвращает выбранное изображение и его превью, nil если выбора нет
func (m *PreviewManager) Current() (*entity.SelectedImage, *entity.PreviewHandle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.image, m.handle
}

// Open возвращает данные живого превью
func (m *PreviewManager) Open(ctx context.Context) (*port.Preview, error) {
	m.mu.Lock()
	handle := m.handle
	m.mu.Unlock()

	if handle == nil {
		return nil, entity.InvalidInput("no image selected")
	}
	return m.store.Open(ctx, handle.ID)
}

func (m *PreviewManager) render(image *entity.SelectedImage) *port.Preview {
	if m.renderer != nil {
		preview, err := m.renderer.Render(image)
		if err == nil {
			return preview
		}
		m.logger.Warn("preview render failed, using original", "file", image.FileName, "error", err)
	}
	return &port.Preview{Data: image.Data, MimeType: image.MimeType}
}

func (m *PreviewManager) releaseLocked(ctx context.Context) {
	if m.handle == nil {
		return
	}
	if err := m.store.Release(ctx, m.handle.ID); err != nil {
		m.logger.Error("release preview", "handle", m.handle.ID, "error", err)
	}
	m.handle = nil
}

func (m *PreviewManager) emitLocked(ev SelectionEvent) {
	for _, fn := range m.subscribers {
		fn(ev)
	}
}
