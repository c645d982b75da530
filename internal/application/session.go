package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"leukemia-bot/internal/domain/entity"
	"leukemia-bot/internal/domain/port"
)

// AnalysisDeps общие зависимости всех сессий анализа
type AnalysisDeps struct {
	Classifier    port.Classifier
	Renderer      port.PreviewRenderer
	Previews      port.PreviewStore
	Directory     port.UserDirectory
	Reports       port.ReportSender
	MaxImageBytes int
	Timeout       time.Duration
	Logger        *slog.Logger
}

// AnalysisSession связывает превью, классификацию и отправку отчёта одного пользователя.
// Контекст пользователя передаётся явно при создании.
type AnalysisSession struct {
	Session    entity.Session
	Previews   *PreviewManager
	Prediction *PredictionOrchestrator
	Dispatch   *ReportDispatchWorkflow
}

// NewAnalysisSession собирает сессию; менеджер превью уведомляет оркестратор о каждом выборе
func NewAnalysisSession(session entity.Session, variant entity.ModelVariant, deps AnalysisDeps) *AnalysisSession {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("user_id", session.UserID)

	previews := NewPreviewManager(deps.Renderer, deps.Previews, deps.MaxImageBytes, logger)
	prediction := NewPredictionOrchestrator(deps.Classifier, variant, deps.Timeout, logger)
	previews.Subscribe(prediction.HandleSelection)

	return &AnalysisSession{
		Session:    session,
		Previews:   previews,
		Prediction: prediction,
		Dispatch:   NewReportDispatchWorkflow(session, deps.Directory, deps.Reports, deps.Timeout, logger),
	}
}

// Select выбирает новое изображение; классификация запускается автоматически
func (s *AnalysisSession) Select(ctx context.Context, image *entity.SelectedImage) (*entity.PreviewHandle, error) {
	return s.Previews.Select(ctx, image)
}

// Clear сбрасывает выбор, состояние классификации возвращается в Idle
func (s *AnalysisSession) Clear(ctx context.Context) {
	s.Previews.Clear(ctx)
}

// OpenDispatch открывает диалог отправки для результата запроса token.
// Если с тех пор выбрано другое изображение, вернёт ErrNoResult.
func (s *AnalysisSession) OpenDispatch(ctx context.Context, token entity.RequestToken) (DispatchView, error) {
	state := s.Prediction.State()
	if state.Status == entity.StatusSuccess && state.Token != token {
		return DispatchView{}, entity.ErrNoResult
	}
	return s.Dispatch.Open(ctx, state)
}

// Close освобождает превью и дожидается завершения запросов
func (s *AnalysisSession) Close(ctx context.Context) {
	_ = s.Dispatch.Close()
	s.Prediction.Close()
	s.Previews.Close(ctx)
}

// StateEvent изменение классификации в сессии конкретного чата
type StateEvent struct {
	UserID  int64
	ChatID  int64
	Session entity.Session
	State   entity.PredictionState
}

// AnalysisService хранит сессии анализа по пользователям Telegram
type AnalysisService struct {
	deps AnalysisDeps

	mu       sync.Mutex
	sessions map[int64]*AnalysisSession
	onState  []func(StateEvent)
}

// NewAnalysisService создаёт реестр сессий
func NewAnalysisService(deps AnalysisDeps) *AnalysisService {
	return &AnalysisService{
		deps:     deps,
		sessions: make(map[int64]*AnalysisSession),
	}
}

// OnState подписывает на изменения классификации во всех сессиях
func (s *AnalysisService) OnState(fn func(StateEvent)) {
	s.mu.Lock()
	s.onState = append(s.onState, fn)
	s.mu.Unlock()
}

// For возвращает сессию пользователя; при смене учётной записи сессия пересоздаётся.
// Модель берётся из user только при создании сессии, дальше её меняет SetVariant.
func (s *AnalysisService) For(ctx context.Context, user *entity.User) *AnalysisSession {
	var session entity.Session
	if user.Session != nil {
		session = *user.Session
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.sessions[user.ID]; ok {
		if existing.Session == session {
			return existing
		}
		go existing.Close(context.WithoutCancel(ctx))
	}

	created := NewAnalysisSession(session, user.Variant, s.deps)
	userID, chatID := user.ID, user.ChatID
	for _, fn := range s.onState {
		created.Prediction.OnChange(func(st entity.PredictionState) {
			fn(StateEvent{UserID: userID, ChatID: chatID, Session: session, State: st})
		})
	}
	s.sessions[user.ID] = created
	return created
}

// SetVariant меняет модель в живой сессии пользователя, если она есть
func (s *AnalysisService) SetVariant(userID int64, variant entity.ModelVariant) {
	s.mu.Lock()
	existing, ok := s.sessions[userID]
	s.mu.Unlock()

	if ok {
		existing.Prediction.SetVariant(variant)
	}
}

// Drop закрывает и удаляет сессию пользователя
func (s *AnalysisService) Drop(ctx context.Context, userID int64) {
	s.mu.Lock()
	existing, ok := s.sessions[userID]
	delete(s.sessions, userID)
	s.mu.Unlock()

	if ok {
		existing.Close(ctx)
	}
}

// Close закрывает все сессии
func (s *AnalysisService) Close(ctx context.Context) {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[int64]*AnalysisSession)
	s.mu.Unlock()

	for _, session := range sessions {
		session.Close(ctx)
	}
}
