package inmemory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskbot/internal/models"
	"taskbot/internal/repository"
	"taskbot/internal/repository/inmemory"
)

func newGroup(deadline string) *models.TaskGroup {
	return &models.TaskGroup{
		TaskText:  "Подготовить отчёт",
		Deadline:  deadline,
		GroupID:   "-100200",
		CreatedAt: models.FormatTimestamp(time.Now()),
	}
}

// TestStorage_CreateTaskGroup тестирует создание групповой задачи
func TestStorage_CreateTaskGroup(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.New()

	tg := newGroup("31.12.2026")
	tasks, err := storage.CreateTaskGroup(ctx, tg, []string{"@ivan", "@petr"}, "@boss")
	require.NoError(t, err)

	assert.Equal(t, int64(1), tg.GroupTaskID)
	require.Len(t, tasks, 2)
	for _, task := range tasks {
		assert.Equal(t, tg.GroupTaskID, task.GroupTaskID)
		assert.Equal(t, "@boss", task.AssignedBy)
		assert.Equal(t, models.StatusActive, task.Status)
		// поля группы подтянуты в задачу
		assert.Equal(t, "Подготовить отчёт", task.TaskText)
		assert.Equal(t, "31.12.2026", task.Deadline)
	}

	// идентификаторы групп монотонные: MAX+1
	tg2 := newGroup("31.12.2026")
	_, err = storage.CreateTaskGroup(ctx, tg2, []string{"@ivan"}, "@boss")
	require.NoError(t, err)
	assert.Equal(t, int64(2), tg2.GroupTaskID)
}

// TestStorage_AddAssignees тестирует дозначение исполнителей
func TestStorage_AddAssignees(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.New()

	tg := newGroup("31.12.2026")
	_, err := storage.CreateTaskGroup(ctx, tg, []string{"@ivan"}, "@boss")
	require.NoError(t, err)

	added, err := storage.AddAssignees(ctx, tg.GroupTaskID, []string{"@petr", "@anna"}, "@boss")
	require.NoError(t, err)
	assert.Len(t, added, 2)

	all, err := storage.ListTasks(ctx, models.TaskFilter{GroupTaskID: tg.GroupTaskID})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = storage.AddAssignees(ctx, 999, []string{"@petr"}, "@boss")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestStorage_ListTasks тестирует фильтры списка
func TestStorage_ListTasks(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.New()

	yesterday := models.FormatDate(time.Now().AddDate(0, 0, -1))
	tomorrow := models.FormatDate(time.Now().AddDate(0, 0, 1))

	overdue := newGroup(yesterday)
	_, err := storage.CreateTaskGroup(ctx, overdue, []string{"@ivan"}, "@boss")
	require.NoError(t, err)

	fresh := newGroup(tomorrow)
	tasks, err := storage.CreateTaskGroup(ctx, fresh, []string{"@ivan", "@petr"}, "@boss")
	require.NoError(t, err)

	_, err = storage.SetTaskStatus(ctx, tasks[0].ID, models.StatusCompleted, models.FormatTimestamp(time.Now()))
	require.NoError(t, err)

	t.Run("by assignee", func(t *testing.T) {
		got, err := storage.ListTasks(ctx, models.TaskFilter{AssignedTo: "@ivan"})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("by status", func(t *testing.T) {
		got, err := storage.ListTasks(ctx, models.TaskFilter{Status: models.StatusCompleted})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.NotEmpty(t, got[0].CompletedAt)
	})

	t.Run("overdue only", func(t *testing.T) {
		got, err := storage.ListTasks(ctx, models.TaskFilter{OverdueOnly: true})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, yesterday, got[0].Deadline)
	})

	t.Run("ordered by id", func(t *testing.T) {
		got, err := storage.ListTasks(ctx, models.TaskFilter{})
		require.NoError(t, err)
		require.Len(t, got, 3)
		for i := 1; i < len(got); i++ {
			assert.Less(t, got[i-1].ID, got[i].ID)
		}
	})
}

// TestStorage_DeleteTask тестирует удаление с подсчётом оставшихся
func TestStorage_DeleteTask(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.New()

	tg := newGroup("31.12.2026")
	tasks, err := storage.CreateTaskGroup(ctx, tg, []string{"@ivan", "@petr", "@anna"}, "@boss")
	require.NoError(t, err)

	remaining, err := storage.DeleteTask(ctx, tasks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)

	remaining, err = storage.DeleteTask(ctx, tasks[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)

	_, err = storage.DeleteTask(ctx, tasks[0].ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestStorage_DeleteTaskGroup тестирует каскадное удаление
func TestStorage_DeleteTaskGroup(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.New()

	tg := newGroup("31.12.2026")
	_, err := storage.CreateTaskGroup(ctx, tg, []string{"@ivan", "@petr"}, "@boss")
	require.NoError(t, err)

	require.NoError(t, storage.DeleteTaskGroup(ctx, tg.GroupTaskID))

	left, err := storage.ListTasks(ctx, models.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, left)

	_, err = storage.GetTaskGroup(ctx, tg.GroupTaskID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestStorage_Reminders тестирует выборку напоминаний и дедупликацию
func TestStorage_Reminders(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.New()
	today := models.FormatDate(time.Now())

	overdue := newGroup(models.FormatDate(time.Now().AddDate(0, 0, -2)))
	tasks, err := storage.CreateTaskGroup(ctx, overdue, []string{"@ivan", "@petr"}, "@boss")
	require.NoError(t, err)

	fresh := newGroup(models.FormatDate(time.Now().AddDate(0, 0, 1)))
	_, err = storage.CreateTaskGroup(ctx, fresh, []string{"@ivan"}, "@boss")
	require.NoError(t, err)

	due, err := storage.ListDueReminders(ctx, today, 100)
	require.NoError(t, err)
	assert.Len(t, due, 2)

	// после отметки задача не попадает в выборку этого дня
	require.NoError(t, storage.MarkReminded(ctx, tasks[0].ID, today))
	due, err = storage.ListDueReminders(ctx, today, 100)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, tasks[1].ID, due[0].ID)

	// лимит выборки соблюдается
	due, err = storage.ListDueReminders(ctx, today, 0)
	require.NoError(t, err)
	assert.Empty(t, due)

	// на следующий день отметка устаревает
	due, err = storage.ListDueReminders(ctx, models.FormatDate(time.Now().AddDate(0, 0, 1)), 100)
	require.NoError(t, err)
	assert.Len(t, due, 2)
}

// TestStorage_Users тестирует справочник пользователей
func TestStorage_Users(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.New()

	require.NoError(t, storage.UpsertUser(ctx, &models.User{
		Username: "@ivan",
		FullName: "Иван Иванов",
		Groups:   []string{"-100200"},
	}))

	u, err := storage.GetUser(ctx, "@ivan")
	require.NoError(t, err)
	assert.Equal(t, "Иван Иванов", u.FullName)
	assert.Equal(t, []string{"-100200"}, u.Groups)

	// chat_id переживает повторный upsert без него
	require.NoError(t, storage.SetChatID(ctx, "@ivan", 777))
	require.NoError(t, storage.UpsertUser(ctx, &models.User{Username: "@ivan", FullName: "Иван"}))
	u, err = storage.GetUser(ctx, "@ivan")
	require.NoError(t, err)
	assert.Equal(t, int64(777), u.ChatID)

	require.NoError(t, storage.DeleteUser(ctx, "@ivan"))
	_, err = storage.GetUser(ctx, "@ivan")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.ErrorIs(t, storage.DeleteUser(ctx, "@ghost"), repository.ErrNotFound)
}

// TestStorage_Config тестирует флаги уведомлений
func TestStorage_Config(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.New()

	cfg, err := storage.GetConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultConfig(), cfg)

	cfg.OverdueReminder = false
	require.NoError(t, storage.SetConfig(ctx, cfg))

	cfg, err = storage.GetConfig(ctx)
	require.NoError(t, err)
	assert.False(t, cfg.OverdueReminder)
	assert.True(t, cfg.TaskCreated)
}

// TestStorage_GetStats тестирует сводную статистику
func TestStorage_GetStats(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.New()

	require.NoError(t, storage.UpsertUser(ctx, &models.User{Username: "@ivan"}))
	require.NoError(t, storage.UpsertGroup(ctx, &models.Group{ID: "-100200", Name: "Отдел"}))

	overdue := newGroup(models.FormatDate(time.Now().AddDate(0, 0, -1)))
	tasks, err := storage.CreateTaskGroup(ctx, overdue, []string{"@ivan", "@petr"}, "@boss")
	require.NoError(t, err)
	_, err = storage.SetTaskStatus(ctx, tasks[0].ID, models.StatusCompleted, models.FormatTimestamp(time.Now()))
	require.NoError(t, err)

	stats, err := storage.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalTasks)
	assert.Equal(t, 1, stats.ActiveTasks)
	assert.Equal(t, 1, stats.CompletedTasks)
	assert.Equal(t, 1, stats.OverdueTasks)
	assert.Equal(t, 1, stats.UsersCount)
	assert.Equal(t, 1, stats.GroupsCount)
}
