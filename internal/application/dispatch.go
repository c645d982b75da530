package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"leukemia-bot/internal/domain/entity"
	"leukemia-bot/internal/domain/port"
)

// DispatchStatus этап диалога отправки отчёта
type DispatchStatus string

const (
	DispatchClosed     DispatchStatus = "closed"
	DispatchFetching   DispatchStatus = "fetching_patients"
	DispatchSelecting  DispatchStatus = "selecting"
	DispatchSubmitting DispatchStatus = "submitting"
)

const (
	noticeSelectPatient = "Please select at least one patient."
	noticeSendFailed    = "Failed to send report. Please try again."
	noticeFetchFailed   = "Could not load your patients."
)

// DispatchView снимок диалога для отрисовки
type DispatchView struct {
	Status    DispatchStatus
	Patients  []entity.Patient
	Selected  []int64
	Notice    string // ошибка загрузки, валидации или отправки
	CanSubmit bool
}

// IsSelected сообщает, отмечен ли пациент
func (v DispatchView) IsSelected(id int64) bool {
	for _, s := range v.Selected {
		if s == id {
			return true
		}
	}
	return false
}

// ReportDispatchWorkflow диалог врача: выбрать пациентов и отправить им один отчёт.
type ReportDispatchWorkflow struct {
	session   entity.Session
	directory port.UserDirectory
	sender    port.ReportSender
	timeout   time.Duration
	logger    *slog.Logger

	mu        sync.Mutex
	status    DispatchStatus
	patients  []entity.Patient
	selection *entity.PatientSelection
	image     *entity.SelectedImage
	result    entity.ClassificationResult
	notice    string
	openSeq   uint64 // номер открытия; ответ загрузки учитывается только для своего открытия
}

// NewReportDispatchWorkflow создаёт закрытый диалог для сессии
func NewReportDispatchWorkflow(session entity.Session, directory port.UserDirectory, sender port.ReportSender, timeout time.Duration, logger *slog.Logger) *ReportDispatchWorkflow {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &ReportDispatchWorkflow{
		session:   session,
		directory: directory,
		sender:    sender,
		timeout:   timeout,
		logger:    logger,
		status:    DispatchClosed,
		selection: entity.NewPatientSelection(),
	}
}

// Open открывает диалог для успешного результата и загружает пациентов врача.
// Ошибка загрузки оставляет диалог открытым с пустым списком.
func (w *ReportDispatchWorkflow) Open(ctx context.Context, state entity.PredictionState) (DispatchView, error) {
	if !w.session.IsClinician() {
		return w.View(), entity.ErrNotClinician
	}
	if state.Status != entity.StatusSuccess || state.Result == nil || state.Image == nil {
		return w.View(), entity.ErrNoResult
	}

	w.mu.Lock()
	if w.status != DispatchClosed {
		w.mu.Unlock()
		return w.View(), entity.ErrDialogState
	}
	w.status = DispatchFetching
	w.openSeq++
	seq := w.openSeq
	w.image = state.Image
	w.result = *state.Result
	w.patients = nil
	w.notice = ""
	w.selection.Clear()
	w.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, w.timeout)
	patients, err := w.directory.LinkedPatients(fetchCtx, w.session)
	cancel()

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.status != DispatchFetching || w.openSeq != seq {
		// диалог закрыли или открыли заново, пока шла загрузка
		w.logger.Debug("dropping stale patient list", "user_id", w.session.UserID)
		return w.viewLocked(), nil
	}
	if err != nil {
		w.logger.Error("error fetching patients", "user_id", w.session.UserID, "error", err)
		patients = nil
		w.notice = noticeFetchFailed
	}
	w.patients = patients
	w.status = DispatchSelecting
	return w.viewLocked(), nil
}

// Toggle отмечает пациента или снимает отметку
func (w *ReportDispatchWorkflow) Toggle(patientID int64) (DispatchView, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.status != DispatchSelecting {
		return w.viewLocked(), entity.ErrDialogState
	}
	if !w.knownLocked(patientID) {
		return w.viewLocked(), entity.InvalidInput("patient %d is not linked", patientID)
	}
	w.selection.Toggle(patientID)
	if w.notice == noticeSelectPatient {
		w.notice = ""
	}
	return w.viewLocked(), nil
}

// Submit отправляет один отчёт всем выбранным пациентам.
// Пустой выбор отклоняется с entity.ErrValidation без сетевого запроса.
// При ошибке диалог и выбор сохраняются; при успехе диалог закрывается.
func (w *ReportDispatchWorkflow) Submit(ctx context.Context) (DispatchView, error) {
	w.mu.Lock()
	if w.status != DispatchSelecting {
		defer w.mu.Unlock()
		return w.viewLocked(), entity.ErrDialogState
	}

	report, err := entity.NewReportDispatch(w.image, w.result, w.selection)
	if err != nil {
		defer w.mu.Unlock()
		if errors.Is(err, entity.ErrValidation) {
			w.notice = noticeSelectPatient
		}
		return w.viewLocked(), err
	}
	w.status = DispatchSubmitting
	w.notice = ""
	w.mu.Unlock()

	sendCtx, cancel := context.WithTimeout(ctx, w.timeout)
	err = w.sender.CreateReport(sendCtx, w.session, report)
	cancel()

	w.mu.Lock()
	defer w.mu.Unlock()

	if err != nil {
		w.logger.Error("error sending report", "user_id", w.session.UserID, "patients", len(report.PatientIDs), "error", err)
		w.status = DispatchSelecting
		w.notice = sendFailure(err)
		return w.viewLocked(), err
	}

	w.logger.Info("report sent", "user_id", w.session.UserID, "patients", len(report.PatientIDs), "class", report.Class)
	w.resetLocked()
	return w.viewLocked(), nil
}

// Close закрывает диалог и сбрасывает выбор. Во время отправки закрыть нельзя.
func (w *ReportDispatchWorkflow) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.status == DispatchSubmitting {
		return entity.ErrDialogState
	}
	w.resetLocked()
	return nil
}

// CanSubmit активна ли кнопка отправки
func (w *ReportDispatchWorkflow) CanSubmit() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canSubmitLocked()
}

// View снимок диалога
func (w *ReportDispatchWorkflow) View() DispatchView {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.viewLocked()
}

func (w *ReportDispatchWorkflow) canSubmitLocked() bool {
	return w.status == DispatchSelecting && w.selection.Len() > 0
}

func (w *ReportDispatchWorkflow) knownLocked(id int64) bool {
	for _, p := range w.patients {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (w *ReportDispatchWorkflow) resetLocked() {
	w.status = DispatchClosed
	w.patients = nil
	w.image = nil
	w.result = entity.ClassificationResult{}
	w.notice = ""
	w.selection.Clear()
}

func (w *ReportDispatchWorkflow) viewLocked() DispatchView {
	return DispatchView{
		Status:    w.status,
		Patients:  append([]entity.Patient(nil), w.patients...),
		Selected:  w.selection.IDs(),
		Notice:    w.notice,
		CanSubmit: w.canSubmitLocked(),
	}
}

func sendFailure(err error) string {
	var rej *entity.RemoteRejectionError
	if errors.As(err, &rej) && rej.Detail != "" {
		return rej.Detail
	}
	return noticeSendFailed
}
