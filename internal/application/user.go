package app

import (
	"context"

	"leukemia-bot/internal/domain/entity"
	"leukemia-bot/internal/domain/port"
)

type UserService struct {
	repo           port.UserRepository
	directory      port.UserDirectory
	defaultVariant entity.ModelVariant
}

// NewUserService создаёт сервис; defaultVariant достаётся пользователям, не выбравшим модель
func NewUserService(repo port.UserRepository, directory port.UserDirectory, defaultVariant entity.ModelVariant) *UserService {
	if defaultVariant == "" {
		defaultVariant = entity.VariantCNN
	}
	return &UserService{repo: repo, directory: directory, defaultVariant: defaultVariant}
}

func (s *UserService) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	return s.withDefaults(user), nil
}

func (s *UserService) SetState(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error) {
	return s.update(ctx, userID, chatID, func(u *entity.User) { u.SetState(state) })
}

func (s *UserService) BeginCheck(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateAwaitingPhoto)
}

func (s *UserService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateMainMenu)
}

// SetVariant запоминает модель для следующих классификаций
func (s *UserService) SetVariant(ctx context.Context, userID, chatID int64, variant entity.ModelVariant) (*entity.User, error) {
	return s.update(ctx, userID, chatID, func(u *entity.User) { u.Variant = variant })
}

// Login проверяет токен на бэкенде и сохраняет сессию
func (s *UserService) Login(ctx context.Context, userID, chatID int64, token string) (*entity.User, error) {
	session, err := s.directory.CurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, userID, chatID, func(u *entity.User) { u.SignIn(*session) })
}

// Logout забывает сессию пользователя
func (s *UserService) Logout(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.update(ctx, userID, chatID, func(u *entity.User) { u.SignOut() })
}

func (s *UserService) update(ctx context.Context, userID, chatID int64, apply func(*entity.User)) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	apply(s.withDefaults(user))
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserService) withDefaults(user *entity.User) *entity.User {
	if user.Variant == "" {
		user.Variant = s.defaultVariant
	}
	return user
}
