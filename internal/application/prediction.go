package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"leukemia-bot/internal/domain/entity"
	"leukemia-bot/internal/domain/port"
)

const (
	DefaultRequestTimeout = 60 * time.Second

	reasonTransport = "Prediction failed. Please ensure the backend server is running and try again."
	reasonTimeout   = "Prediction timed out. Please try again."
	reasonMalformed = "Prediction service returned an unexpected response."
)

// PredictionOrchestrator держит не более одного актуального запроса классификации.
// Ответ учитывается, только если его токен совпадает с токеном текущего запроса.
type PredictionOrchestrator struct {
	classifier port.Classifier
	timeout    time.Duration
	logger     *slog.Logger
	changes    *notifier[entity.PredictionState]

	mu       sync.Mutex
	variant  entity.ModelVariant
	state    entity.PredictionState
	cancel   context.CancelFunc
	inflight sync.WaitGroup
	closed   bool
}

// NewPredictionOrchestrator создаёт оркестратор в состоянии Idle
func NewPredictionOrchestrator(classifier port.Classifier, variant entity.ModelVariant, timeout time.Duration, logger *slog.Logger) *PredictionOrchestrator {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	if variant == "" {
		variant = entity.VariantCNN
	}
	return &PredictionOrchestrator{
		classifier: classifier,
		timeout:    timeout,
		logger:     logger,
		changes:    newNotifier[entity.PredictionState](logger),
		variant:    variant,
		state:      entity.PredictionState{Status: entity.StatusIdle},
	}
}

// OnChange подписывает на переходы состояния. События приходят в порядке переходов.
func (o *PredictionOrchestrator) OnChange(fn func(entity.PredictionState)) {
	o.changes.subscribe(fn)
}

// HandleSelection реагирует на событие менеджера превью
func (o *PredictionOrchestrator) HandleSelection(ev SelectionEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}
	if ev.Image == nil {
		o.resetLocked()
		return
	}
	o.issueLocked(ev.Image)
}

// Reclassify повторяет классификацию текущего изображения текущей моделью
func (o *PredictionOrchestrator) Reclassify() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return entity.ErrDialogState
	}
	if o.state.Image == nil {
		return entity.InvalidInput("no image selected")
	}
	o.issueLocked(o.state.Image)
	return nil
}

// SetVariant меняет модель для следующих запросов; текущий результат не пересчитывается
func (o *PredictionOrchestrator) SetVariant(variant entity.ModelVariant) {
	if variant == "" {
		return
	}
	o.mu.Lock()
	o.variant = variant
	o.mu.Unlock()
}

// Variant текущая модель
func (o *PredictionOrchestrator) Variant() entity.ModelVariant {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.variant
}

// State снимок текущего состояния
func (o *PredictionOrchestrator) State() entity.PredictionState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Wait ждёт завершения запросов и доставки всех событий
func (o *PredictionOrchestrator) Wait() {
	o.inflight.Wait()
	o.changes.flush()
}

// Close отменяет текущий запрос и останавливает рассылку событий
func (o *PredictionOrchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	// Без публикации: ответ отменённого запроса отбросится по токену.
	o.state = entity.PredictionState{Status: entity.StatusIdle}
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.closed = true
	o.mu.Unlock()

	o.inflight.Wait()
	o.changes.close()
}

func (o *PredictionOrchestrator) issueLocked(image *entity.SelectedImage) {
	if o.cancel != nil {
		o.cancel()
	}

	o.setLocked(entity.PredictionState{
		Status:  entity.StatusPreviewing,
		Image:   image,
		Variant: o.variant,
	})

	req := entity.ClassificationRequest{
		Token:   entity.RequestToken(uuid.NewString()),
		Image:   image,
		Variant: o.variant,
	}
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	o.cancel = cancel

	o.setLocked(entity.PredictionState{
		Status:  entity.StatusLoading,
		Token:   req.Token,
		Image:   image,
		Variant: req.Variant,
	})

	o.logger.Info("classification requested", "token", req.Token, "file", image.FileName, "model", req.Variant)

	o.inflight.Add(1)
	go o.run(ctx, cancel, req)
}

func (o *PredictionOrchestrator) run(ctx context.Context, cancel context.CancelFunc, req entity.ClassificationRequest) {
	defer o.inflight.Done()
	defer cancel()

	result, err := o.classify(ctx, req)
	if err == nil && result == nil {
		err = fmt.Errorf("%w: empty result", entity.ErrMalformedResponse)
	}
	if err != nil && ctx.Err() == context.DeadlineExceeded {
		err = fmt.Errorf("%w: %w", entity.ErrTransport, context.DeadlineExceeded)
	}
	o.resolve(req, result, err)
}

func (o *PredictionOrchestrator) classify(ctx context.Context, req entity.ClassificationRequest) (result *entity.ClassificationResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("classifier panicked: %v", r)
		}
	}()
	return o.classifier.Classify(ctx, req)
}

func (o *PredictionOrchestrator) resolve(req entity.ClassificationRequest, result *entity.ClassificationResult, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.Status != entity.StatusLoading || o.state.Token != req.Token {
		o.logger.Debug("dropping stale classification response", "token", req.Token, "current", o.state.Token)
		return
	}
	o.cancel = nil

	next := entity.PredictionState{
		Token:   req.Token,
		Image:   req.Image,
		Variant: req.Variant,
	}
	if err != nil {
		next.Status = entity.StatusFailed
		next.Reason = FailureReason(err)
		o.logger.Error("classification failed", "token", req.Token, "error", err)
	} else {
		next.Status = entity.StatusSuccess
		next.Result = result
		o.logger.Info("classification done", "token", req.Token, "class", result.Class, "confidence", result.Confidence)
	}
	o.setLocked(next)
}

func (o *PredictionOrchestrator) resetLocked() {
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.setLocked(entity.PredictionState{Status: entity.StatusIdle})
}

func (o *PredictionOrchestrator) setLocked(state entity.PredictionState) {
	o.state = state
	o.changes.publish(state)
}

// FailureReason короткое описание ошибки для пользователя
func FailureReason(err error) string {
	var rej *entity.RemoteRejectionError
	switch {
	case errors.As(err, &rej):
		return rej.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return reasonTimeout
	case errors.Is(err, entity.ErrMalformedResponse):
		return reasonMalformed
	default:
		return reasonTransport
	}
}
