package notify

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskbot/internal/logger"
	"taskbot/internal/models"
	"taskbot/internal/repository/inmemory"
)

func TestMain(m *testing.M) {
	logger.Init(true)
	defer logger.Sync()
	os.Exit(m.Run())
}

// recorderSender собирает отправленные сообщения по чатам
type recorderSender struct {
	sent map[int64][]string
}

func newRecorderSender() *recorderSender {
	return &recorderSender{sent: make(map[int64][]string)}
}

func (r *recorderSender) SendMessage(chatID int64, text string) error {
	r.sent[chatID] = append(r.sent[chatID], text)
	return nil
}

func newDispatcher(t *testing.T) (*Dispatcher, *inmemory.Storage, *recorderSender) {
	t.Helper()

	storage := inmemory.New()
	ctx := context.Background()
	require.NoError(t, storage.UpsertUser(ctx, &models.User{Username: "@ivan", FullName: "Иван"}))
	require.NoError(t, storage.SetChatID(ctx, "@ivan", 111))
	require.NoError(t, storage.UpsertUser(ctx, &models.User{Username: "@petr", FullName: "Пётр"}))

	sender := newRecorderSender()
	return NewDispatcher(storage, sender), storage, sender
}

// TestTaskCreated проверяет рассылку в группу и в личные чаты исполнителей
func TestTaskCreated(t *testing.T) {
	ctx := context.Background()
	d, _, sender := newDispatcher(t)

	tg := &models.TaskGroup{GroupTaskID: 1, TaskText: "Отчёт", Deadline: "05.09.2026", GroupID: "-100500"}
	tasks := []*models.Task{
		{ID: 1, AssignedTo: "@ivan", AssignedBy: "@boss"},
		{ID: 2, AssignedTo: "@petr", AssignedBy: "@boss"},
	}

	d.TaskCreated(ctx, tg, tasks)

	// одно сообщение в групповой чат
	require.Len(t, sender.sent[-100500], 1)
	assert.Contains(t, sender.sent[-100500][0], "Новая задача #1")
	assert.Contains(t, sender.sent[-100500][0], "@ivan, @petr")

	// личное сообщение только тому, чей чат известен
	require.Len(t, sender.sent[111], 1)
	assert.Contains(t, sender.sent[111][0], "Вам назначена задача #1")
	assert.Len(t, sender.sent, 2)
}

// TestTaskCreatedWithoutGroup проверяет задачу без группового чата
func TestTaskCreatedWithoutGroup(t *testing.T) {
	ctx := context.Background()
	d, _, sender := newDispatcher(t)

	tg := &models.TaskGroup{GroupTaskID: 1, TaskText: "Отчёт", Deadline: "05.09.2026"}
	d.TaskCreated(ctx, tg, []*models.Task{{ID: 1, AssignedTo: "@ivan", AssignedBy: "@boss"}})

	// уходит только личное сообщение
	require.Len(t, sender.sent, 1)
	assert.Len(t, sender.sent[111], 1)
}

// TestTaskCompleted проверяет уведомление постановщика о выполнении
func TestTaskCompleted(t *testing.T) {
	ctx := context.Background()
	d, storage, sender := newDispatcher(t)
	require.NoError(t, storage.SetChatID(ctx, "@boss", 222))

	d.TaskCompleted(ctx, &models.Task{
		ID: 5, TaskText: "Отчёт", AssignedTo: "@ivan", AssignedBy: "@boss",
		GroupID: "-100500", CompletedAt: "30.08.2026 12:00:00",
	})

	require.Len(t, sender.sent[-100500], 1)
	assert.Contains(t, sender.sent[-100500][0], "Задача #5 выполнена")
	require.Len(t, sender.sent[222], 1)
	assert.Contains(t, sender.sent[222][0], "@ivan выполнил(а) задачу #5")
}

// TestDisabledEvent проверяет подавление рассылки выключенным флагом
func TestDisabledEvent(t *testing.T) {
	ctx := context.Background()
	d, storage, sender := newDispatcher(t)

	cfg := models.DefaultConfig()
	cfg.TaskDeleted = false
	require.NoError(t, storage.SetConfig(ctx, cfg))

	d.TaskDeleted(ctx, []*models.Task{{ID: 1, TaskText: "Отчёт", AssignedTo: "@ivan", GroupID: "-100500"}})
	assert.Empty(t, sender.sent)

	// другие события при этом живы
	assert.True(t, d.OverdueReminder(ctx, &models.Task{ID: 1, TaskText: "Отчёт", Deadline: "01.08.2026", AssignedTo: "@ivan", GroupID: "-100500"}))
	assert.Len(t, sender.sent[-100500], 1)
	assert.Contains(t, sender.sent[111][0], "Ваша задача #1 просрочена")

	// выключенное напоминание возвращает false, ничего не отправив
	cfg.OverdueReminder = false
	require.NoError(t, storage.SetConfig(ctx, cfg))
	assert.False(t, d.OverdueReminder(ctx, &models.Task{ID: 2, TaskText: "Отчёт", Deadline: "01.08.2026", AssignedTo: "@ivan", GroupID: "-100500"}))
	assert.Len(t, sender.sent[-100500], 1)
}

// TestBadGroupID проверяет, что нечисловой идентификатор группы не валит рассылку
func TestBadGroupID(t *testing.T) {
	ctx := context.Background()
	d, _, sender := newDispatcher(t)

	d.OverdueReminder(ctx, &models.Task{ID: 1, TaskText: "Отчёт", Deadline: "01.08.2026", AssignedTo: "@ivan", GroupID: "dev-team"})

	// группа пропущена, личное сообщение дошло
	require.Len(t, sender.sent, 1)
	assert.Len(t, sender.sent[111], 1)
}
