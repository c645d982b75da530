package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"leukemia-bot/internal/domain/entity"
	"leukemia-bot/internal/domain/port"
)

const usersSchema = `
create table if not exists bot_users (
	user_id         bigint primary key,
	chat_id         bigint not null,
	state           text not null,
	model           text not null,
	backend_user_id bigint,
	username        text,
	email           text,
	role            text,
	token           text,
	updated_at      timestamptz not null default now()
)`

// PostgresUserRepository хранит пользователей бота в Postgres (драйвер pgx)
type PostgresUserRepository struct{ DB *sql.DB }

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// Migrate создаёт таблицу, если её ещё нет
func (r *PostgresUserRepository) Migrate(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, usersSchema); err != nil {
		return fmt.Errorf("migrate bot_users: %w", err)
	}
	return nil
}

// Get возвращает пользователя по ID, создаёт нового если не найден
func (r *PostgresUserRepository) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	const q = `
select chat_id, state, model,
       coalesce(backend_user_id, 0), coalesce(username, ''), coalesce(email, ''),
       coalesce(role, ''), coalesce(token, '')
from bot_users
where user_id = $1`

	var (
		storedChat    int64
		state, model  string
		backendUserID int64
		username      string
		email         string
		role          string
		token         string
	)
	err := r.DB.QueryRowContext(ctx, q, userID).Scan(&storedChat, &state, &model,
		&backendUserID, &username, &email, &role, &token)
	if errors.Is(err, sql.ErrNoRows) {
		user := entity.NewUser(userID, chatID)
		if err := r.Save(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}

	user := &entity.User{
		ID:      userID,
		ChatID:  storedChat,
		State:   entity.UserState(state),
		Variant: entity.ModelVariant(model),
	}
	if token != "" {
		user.Session = &entity.Session{
			UserID:   backendUserID,
			Username: username,
			Email:    email,
			Role:     entity.Role(role),
			Token:    token,
		}
	}
	return user, nil
}

// Save сохраняет пользователя (upsert по user_id)
func (r *PostgresUserRepository) Save(ctx context.Context, user *entity.User) error {
	const q = `
insert into bot_users(user_id, chat_id, state, model, backend_user_id, username, email, role, token)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
on conflict (user_id)
do update set chat_id=excluded.chat_id, state=excluded.state, model=excluded.model,
              backend_user_id=excluded.backend_user_id, username=excluded.username,
              email=excluded.email, role=excluded.role, token=excluded.token, updated_at=now()`

	var (
		backendUserID sql.NullInt64
		username      sql.NullString
		email         sql.NullString
		role          sql.NullString
		token         sql.NullString
	)
	if s := user.Session; s != nil {
		backendUserID = sql.NullInt64{Int64: s.UserID, Valid: true}
		username = sql.NullString{String: s.Username, Valid: true}
		email = sql.NullString{String: s.Email, Valid: true}
		role = sql.NullString{String: string(s.Role), Valid: true}
		token = sql.NullString{String: s.Token, Valid: true}
	}

	_, err := r.DB.ExecContext(ctx, q, user.ID, user.ChatID, string(user.State), string(user.Variant),
		backendUserID, username, email, role, token)
	if err != nil {
		return fmt.Errorf("save user %d: %w", user.ID, err)
	}
	return nil
}

// UpdateState обновляет состояние пользователя
func (r *PostgresUserRepository) UpdateState(ctx context.Context, userID int64, state entity.UserState) error {
	_, err := r.DB.ExecContext(ctx, `update bot_users set state=$2, updated_at=now() where user_id=$1`, userID, string(state))
	return err
}

// Delete удаляет пользователя
func (r *PostgresUserRepository) Delete(ctx context.Context, userID int64) error {
	_, err := r.DB.ExecContext(ctx, `delete from bot_users where user_id=$1`, userID)
	return err
}

var _ port.UserRepository = (*PostgresUserRepository)(nil)
