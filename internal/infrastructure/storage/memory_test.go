package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"leukemia-bot/internal/domain/entity"
	"leukemia-bot/internal/domain/port"
)

func TestMemoryUserRepository_GetReturnsCopy(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	u, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	u.SetState(entity.StateProcessing)

	again, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, again.State)

	u.SignIn(entity.Session{UserID: 3, Token: "t"})
	require.NoError(t, repo.Save(ctx, u))

	saved, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.True(t, saved.IsAuthenticated())
	require.Equal(t, entity.StateProcessing, saved.State)
}

func TestMemoryUserRepository_UpdateStateAndDelete(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	_, err := repo.Get(ctx, 2, 20)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateState(ctx, 2, entity.StateAwaitingPhoto))

	u, _ := repo.Get(ctx, 2, 20)
	require.Equal(t, entity.StateAwaitingPhoto, u.State)

	require.NoError(t, repo.Delete(ctx, 2))
	u, _ = repo.Get(ctx, 2, 20)
	require.Equal(t, entity.StateMainMenu, u.State)
}

func TestMemoryPreviewStore_Lifecycle(t *testing.T) {
	store := NewMemoryPreviewStore()
	ctx := context.Background()
	img := &entity.SelectedImage{Data: []byte{1, 2}, FileName: "a.png", MimeType: "image/png"}

	h, err := store.Create(ctx, &port.Preview{Data: []byte{1}, MimeType: "image/jpeg", Width: 4, Height: 2}, img)
	require.NoError(t, err)
	require.Equal(t, "a.png", h.FileName)
	require.Equal(t, 4, h.Width)
	require.Equal(t, 1, store.Live())

	p, err := store.Open(ctx, h.ID)
	require.NoError(t, err)
	require.Equal(t, "image/jpeg", p.MimeType)

	require.NoError(t, store.Release(ctx, h.ID))
	require.NoError(t, store.Release(ctx, h.ID))
	require.Zero(t, store.Live())

	_, err = store.Open(ctx, h.ID)
	require.Error(t, err)

	_, err = store.Create(ctx, &port.Preview{}, img)
	require.Error(t, err)
}
