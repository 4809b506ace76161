package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskbot/internal/models"
	"taskbot/internal/repository/inmemory"
)

func newDirectoryService() *DirectoryService {
	return NewDirectoryService(inmemory.New())
}

// TestUpsertUser проверяет сохранение пользователя с нормализацией хэндла
func TestUpsertUser(t *testing.T) {
	ctx := context.Background()
	svc := newDirectoryService()

	require.NoError(t, svc.UpsertUser(ctx, &models.User{
		Username: "ivan",
		FullName: "Иван Иванов",
		Groups:   []string{"-100500"},
	}))

	user, err := svc.GetUser(ctx, "@ivan")
	require.NoError(t, err)
	assert.Equal(t, "@ivan", user.Username)
	assert.Equal(t, "Иван Иванов", user.FullName)

	t.Run("пустое имя отклоняется", func(t *testing.T) {
		err := svc.UpsertUser(ctx, &models.User{Username: ""})
		var bizErr *BusinessError
		require.True(t, errors.As(err, &bizErr))
		assert.Equal(t, CodeValidationError, bizErr.Code)
	})

	t.Run("неизвестный пользователь", func(t *testing.T) {
		_, err := svc.GetUser(ctx, "@nobody")
		var bizErr *BusinessError
		require.True(t, errors.As(err, &bizErr))
		assert.Equal(t, CodeNotFound, bizErr.Code)
	})
}

// TestDeleteUser проверяет удаление и ошибку на отсутствующем пользователе
func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	svc := newDirectoryService()

	require.NoError(t, svc.UpsertUser(ctx, &models.User{Username: "@ivan", FullName: "Иван"}))
	require.NoError(t, svc.DeleteUser(ctx, "ivan"))

	err := svc.DeleteUser(ctx, "ivan")
	var bizErr *BusinessError
	require.True(t, errors.As(err, &bizErr))
	assert.Equal(t, CodeNotFound, bizErr.Code)
}

// TestRegisterChat проверяет привязку личного чата к пользователю
func TestRegisterChat(t *testing.T) {
	ctx := context.Background()
	svc := newDirectoryService()

	require.NoError(t, svc.UpsertUser(ctx, &models.User{Username: "@ivan", FullName: "Иван"}))
	require.NoError(t, svc.RegisterChat(ctx, "ivan", 42))

	user, err := svc.GetUser(ctx, "@ivan")
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ChatID)

	t.Run("пустое имя отклоняется", func(t *testing.T) {
		err := svc.RegisterChat(ctx, "", 42)
		var bizErr *BusinessError
		require.True(t, errors.As(err, &bizErr))
		assert.Equal(t, CodeValidationError, bizErr.Code)
	})
}

// TestUpsertGroup проверяет сохранение группы и валидацию полей
func TestUpsertGroup(t *testing.T) {
	ctx := context.Background()
	svc := newDirectoryService()

	require.NoError(t, svc.UpsertGroup(ctx, &models.Group{ID: "-100500", Name: "Разработка"}))

	groups, err := svc.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Разработка", groups[0].Name)

	var bizErr *BusinessError
	t.Run("пустой id", func(t *testing.T) {
		err := svc.UpsertGroup(ctx, &models.Group{Name: "Без id"})
		require.True(t, errors.As(err, &bizErr))
		assert.Equal(t, CodeValidationError, bizErr.Code)
	})
	t.Run("пустое название", func(t *testing.T) {
		err := svc.UpsertGroup(ctx, &models.Group{ID: "-1"})
		require.True(t, errors.As(err, &bizErr))
		assert.Equal(t, CodeValidationError, bizErr.Code)
	})
}

// TestConfigRoundTrip проверяет чтение и запись флагов уведомлений
func TestConfigRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newDirectoryService()

	cfg, err := svc.GetConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultConfig(), cfg, "по умолчанию все уведомления включены")

	cfg.TaskDeleted = false
	require.NoError(t, svc.SetConfig(ctx, cfg))

	saved, err := svc.GetConfig(ctx)
	require.NoError(t, err)
	assert.False(t, saved.TaskDeleted)
	assert.True(t, saved.TaskCreated)
}
