package port

import (
	"context"

	"leukemia-bot/internal/domain/entity"
)

// UserDirectory интерфейс справочника пользователей бэкенда
type UserDirectory interface {
	// CurrentUser возвращает владельца токена
	CurrentUser(ctx context.Context, token string) (*entity.Session, error)

	// LinkedPatients возвращает пациентов, привязанных к врачу сессии
	LinkedPatients(ctx context.Context, session entity.Session) ([]entity.Patient, error)
}
