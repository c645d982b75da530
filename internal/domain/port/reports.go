package port

import (
	"context"

	"leukemia-bot/internal/domain/entity"
)

// ReportSender интерфейс создания отчёта по результату анализа
type ReportSender interface {
	// CreateReport отправляет один запрос на всех получателей отчёта
	CreateReport(ctx context.Context, session entity.Session, report *entity.ReportDispatch) error
}
