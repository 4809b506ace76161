package sqlite_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskbot/internal/logger"
	"taskbot/internal/models"
	"taskbot/internal/repository"
	"taskbot/internal/repository/sqlite"
)

func TestMain(m *testing.M) {
	logger.Init(true)
	defer logger.Sync()
	os.Exit(m.Run())
}

func newStorage(t *testing.T) *sqlite.Storage {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taskbot.db")
	storage, err := sqlite.New(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })
	return storage
}

func newGroup(deadline string) *models.TaskGroup {
	return &models.TaskGroup{
		TaskText:  "Собрать стенд",
		Deadline:  deadline,
		GroupID:   "-100200",
		CreatedAt: models.FormatTimestamp(time.Now()),
	}
}

func TestSQLite_HealthCheck(t *testing.T) {
	storage := newStorage(t)
	assert.NoError(t, storage.HealthCheck(context.Background()))
}

// TestSQLite_TaskGroupLifecycle тестирует полный цикл групповой задачи
func TestSQLite_TaskGroupLifecycle(t *testing.T) {
	ctx := context.Background()
	storage := newStorage(t)

	tg := newGroup("31.12.2026")
	tasks, err := storage.CreateTaskGroup(ctx, tg, []string{"@ivan", "@petr"}, "@boss")
	require.NoError(t, err)
	assert.Equal(t, int64(1), tg.GroupTaskID)
	require.Len(t, tasks, 2)
	for _, task := range tasks {
		assert.Equal(t, "Собрать стенд", task.TaskText)
		assert.Equal(t, models.StatusActive, task.Status)
		assert.Empty(t, task.CompletedAt)
	}

	// вторая группа получает следующий идентификатор
	tg2 := newGroup("31.12.2026")
	_, err = storage.CreateTaskGroup(ctx, tg2, []string{"@anna"}, "@boss")
	require.NoError(t, err)
	assert.Equal(t, int64(2), tg2.GroupTaskID)

	// обновление полей группы видно через задачи
	tg.TaskText = "Собрать стенд и проверить"
	tg.Deadline = "15.01.2027"
	require.NoError(t, storage.UpdateTaskGroup(ctx, tg))

	got, err := storage.GetTask(ctx, tasks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Собрать стенд и проверить", got.TaskText)
	assert.Equal(t, "15.01.2027", got.Deadline)

	// каскадное удаление группы
	require.NoError(t, storage.DeleteTaskGroup(ctx, tg.GroupTaskID))
	_, err = storage.GetTask(ctx, tasks[0].ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = storage.DeleteTaskGroup(ctx, tg.GroupTaskID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestSQLite_StatusAndDelete тестирует смену статуса и удаление задач
func TestSQLite_StatusAndDelete(t *testing.T) {
	ctx := context.Background()
	storage := newStorage(t)

	tg := newGroup("31.12.2026")
	tasks, err := storage.CreateTaskGroup(ctx, tg, []string{"@ivan", "@petr", "@anna"}, "@boss")
	require.NoError(t, err)

	completedAt := models.FormatTimestamp(time.Now())
	completed, err := storage.SetTaskStatus(ctx, tasks[0].ID, models.StatusCompleted, completedAt)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)
	assert.Equal(t, completedAt, completed.CompletedAt)

	// возврат в работу сбрасывает отметку времени
	reopened, err := storage.SetTaskStatus(ctx, tasks[0].ID, models.StatusActive, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, reopened.Status)
	assert.Empty(t, reopened.CompletedAt)

	remaining, err := storage.DeleteTask(ctx, tasks[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)

	_, err = storage.DeleteTask(ctx, tasks[1].ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = storage.SetTaskStatus(ctx, 999, models.StatusCompleted, completedAt)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestSQLite_ListTasks тестирует фильтры
func TestSQLite_ListTasks(t *testing.T) {
	ctx := context.Background()
	storage := newStorage(t)

	yesterday := models.FormatDate(time.Now().AddDate(0, 0, -1))
	tomorrow := models.FormatDate(time.Now().AddDate(0, 0, 1))

	overdueGroup := newGroup(yesterday)
	_, err := storage.CreateTaskGroup(ctx, overdueGroup, []string{"@ivan"}, "@boss")
	require.NoError(t, err)

	freshGroup := newGroup(tomorrow)
	fresh, err := storage.CreateTaskGroup(ctx, freshGroup, []string{"@ivan", "@petr"}, "@boss")
	require.NoError(t, err)

	_, err = storage.SetTaskStatus(ctx, fresh[1].ID, models.StatusCompleted, models.FormatTimestamp(time.Now()))
	require.NoError(t, err)

	byAssignee, err := storage.ListTasks(ctx, models.TaskFilter{AssignedTo: "@ivan"})
	require.NoError(t, err)
	assert.Len(t, byAssignee, 2)

	active, err := storage.ListTasks(ctx, models.TaskFilter{Status: models.StatusActive})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	overdue, err := storage.ListTasks(ctx, models.TaskFilter{OverdueOnly: true})
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, yesterday, overdue[0].Deadline)

	byGroup, err := storage.ListTasks(ctx, models.TaskFilter{GroupTaskID: freshGroup.GroupTaskID})
	require.NoError(t, err)
	assert.Len(t, byGroup, 2)
}

// TestSQLite_Reminders тестирует дедупликацию напоминаний по дням
func TestSQLite_Reminders(t *testing.T) {
	ctx := context.Background()
	storage := newStorage(t)
	today := models.FormatDate(time.Now())

	tg := newGroup(models.FormatDate(time.Now().AddDate(0, 0, -3)))
	tasks, err := storage.CreateTaskGroup(ctx, tg, []string{"@ivan", "@petr"}, "@boss")
	require.NoError(t, err)

	due, err := storage.ListDueReminders(ctx, today, 100)
	require.NoError(t, err)
	assert.Len(t, due, 2)

	require.NoError(t, storage.MarkReminded(ctx, tasks[0].ID, today))

	due, err = storage.ListDueReminders(ctx, today, 100)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, tasks[1].ID, due[0].ID)

	// завершённая задача выпадает из выборки
	_, err = storage.SetTaskStatus(ctx, tasks[1].ID, models.StatusCompleted, models.FormatTimestamp(time.Now()))
	require.NoError(t, err)

	due, err = storage.ListDueReminders(ctx, today, 100)
	require.NoError(t, err)
	assert.Empty(t, due)
}

// TestSQLite_RemindersLimit проверяет, что лимит пачки считается по
// просроченным задачам и непросроченные их не вытесняют
func TestSQLite_RemindersLimit(t *testing.T) {
	ctx := context.Background()
	storage := newStorage(t)
	today := models.FormatDate(time.Now())

	future := models.FormatDate(time.Now().AddDate(0, 0, 5))
	past := models.FormatDate(time.Now().AddDate(0, 0, -2))

	// свежие задачи занимают меньшие id, просроченная создаётся последней
	_, err := storage.CreateTaskGroup(ctx, newGroup(future), []string{"@ivan", "@petr"}, "@boss")
	require.NoError(t, err)
	overdue, err := storage.CreateTaskGroup(ctx, newGroup(past), []string{"@ivan"}, "@boss")
	require.NoError(t, err)

	due, err := storage.ListDueReminders(ctx, today, 2)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, overdue[0].ID, due[0].ID)
}

// TestSQLite_UsersAndGroups тестирует справочники
func TestSQLite_UsersAndGroups(t *testing.T) {
	ctx := context.Background()
	storage := newStorage(t)

	require.NoError(t, storage.UpsertGroup(ctx, &models.Group{ID: "-100200", Name: "Отдел"}))
	require.NoError(t, storage.UpsertGroup(ctx, &models.Group{ID: "-100300", Name: "Склад"}))

	groups, err := storage.ListGroups(ctx)
	require.NoError(t, err)
	assert.Len(t, groups, 2)

	require.NoError(t, storage.UpsertUser(ctx, &models.User{
		Username: "@ivan",
		FullName: "Иван Иванов",
		Groups:   []string{"-100200", "-100300"},
	}))

	u, err := storage.GetUser(ctx, "@ivan")
	require.NoError(t, err)
	assert.Equal(t, "Иван Иванов", u.FullName)
	assert.ElementsMatch(t, []string{"-100200", "-100300"}, u.Groups)

	// повторный upsert полностью заменяет членство
	require.NoError(t, storage.UpsertUser(ctx, &models.User{
		Username: "@ivan",
		FullName: "Иван Иванов",
		Groups:   []string{"-100300"},
	}))
	u, err = storage.GetUser(ctx, "@ivan")
	require.NoError(t, err)
	assert.Equal(t, []string{"-100300"}, u.Groups)

	require.NoError(t, storage.SetChatID(ctx, "@ivan", 777))
	u, err = storage.GetUser(ctx, "@ivan")
	require.NoError(t, err)
	assert.Equal(t, int64(777), u.ChatID)

	users, err := storage.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)

	require.NoError(t, storage.DeleteUser(ctx, "@ivan"))
	_, err = storage.GetUser(ctx, "@ivan")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestSQLite_Config тестирует флаги уведомлений
func TestSQLite_Config(t *testing.T) {
	ctx := context.Background()
	storage := newStorage(t)

	cfg, err := storage.GetConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultConfig(), cfg)

	cfg.TaskDeleted = false
	cfg.OverdueReminder = false
	require.NoError(t, storage.SetConfig(ctx, cfg))

	cfg, err = storage.GetConfig(ctx)
	require.NoError(t, err)
	assert.False(t, cfg.TaskDeleted)
	assert.False(t, cfg.OverdueReminder)
	assert.True(t, cfg.TaskCreated)
}
