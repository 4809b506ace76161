package telegram

import (
	"os"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskbot/internal/logger"
	"taskbot/internal/models"
	"taskbot/internal/service"
)

func TestMain(m *testing.M) {
	logger.Init(true)
	defer logger.Sync()
	os.Exit(m.Run())
}

// TestDeadlineFromChoice проверяет вычисление срока по кнопкам
func TestDeadlineFromChoice(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		choice string
		want   string
	}{
		{"today", "30.08.2026"},
		{"tomorrow", "31.08.2026"},
		{"3days", "02.09.2026"},
		{"week", "06.09.2026"},
	}
	for _, tc := range cases {
		t.Run(tc.choice, func(t *testing.T) {
			assert.Equal(t, tc.want, deadlineFromChoice(tc.choice, now))
		})
	}
}

// TestHandleOf проверяет нормализацию имени из обновления
func TestHandleOf(t *testing.T) {
	assert.Equal(t, "@ivan", handleOf(&tgbotapi.User{UserName: "ivan"}))
	assert.Empty(t, handleOf(&tgbotapi.User{}))
	assert.Empty(t, handleOf(nil))
}

// TestErrText проверяет сообщения для пользователя
func TestErrText(t *testing.T) {
	bizErr := service.NewNotFound("задача", 5)
	assert.Equal(t, bizErr.Message, errText(bizErr))
	assert.Equal(t, "Что-то пошло не так, попробуйте позже.", errText(assert.AnError))
}

// TestDraftSelected проверяет выбор исполнителей в черновике
func TestDraftSelected(t *testing.T) {
	d := &draft{assignees: map[string]bool{"@ivan": true, "@petr": false}}
	assert.Equal(t, []string{"@ivan"}, d.selected())

	d.assignees["@petr"] = true
	assert.Len(t, d.selected(), 2)
}

// TestAssigneeKeyboard проверяет раскладку и отметки выбранных
func TestAssigneeKeyboard(t *testing.T) {
	users := []*models.User{
		{Username: "@ivan"}, {Username: "@petr"}, {Username: "@anna"},
	}
	kb := assigneeKeyboard(users, map[string]bool{"@petr": true})

	// три пользователя по два в ряд плюс кнопки завершения и отмены
	require.Len(t, kb.InlineKeyboard, 4)
	assert.Len(t, kb.InlineKeyboard[0], 2)
	assert.Equal(t, "✅ @petr", kb.InlineKeyboard[0][1].Text)
	require.NotNil(t, kb.InlineKeyboard[0][1].CallbackData)
	assert.Equal(t, "exec:toggle:@petr", *kb.InlineKeyboard[0][1].CallbackData)
	assert.Equal(t, "@anna", kb.InlineKeyboard[1][0].Text)
}

// TestTaskCardKeyboard проверяет набор действий по статусу и роли
func TestTaskCardKeyboard(t *testing.T) {
	active := &models.Task{ID: 7, Status: models.StatusActive}
	completed := &models.Task{ID: 7, Status: models.StatusCompleted}

	t.Run("активная для исполнителя", func(t *testing.T) {
		kb := taskCardKeyboard(active, false)
		require.Len(t, kb.InlineKeyboard, 1)
		assert.Equal(t, "task:complete:7", *kb.InlineKeyboard[0][0].CallbackData)
	})

	t.Run("активная для администратора", func(t *testing.T) {
		kb := taskCardKeyboard(active, true)
		require.Len(t, kb.InlineKeyboard, 3)
		assert.Equal(t, "admin_task:deadline:7", *kb.InlineKeyboard[1][0].CallbackData)
	})

	t.Run("завершённая", func(t *testing.T) {
		kb := taskCardKeyboard(completed, false)
		require.Len(t, kb.InlineKeyboard, 2)
		assert.Equal(t, "task:reopen:7", *kb.InlineKeyboard[0][0].CallbackData)
	})
}

// TestPaginateTasks проверяет нарезку списка задач по страницам
func TestPaginateTasks(t *testing.T) {
	tasks := make([]*models.Task, 12)
	for i := range tasks {
		tasks[i] = &models.Task{ID: int64(i + 1)}
	}

	page, hasPrev, hasNext := paginateTasks(tasks, 0)
	require.Len(t, page, tasksPerPage)
	assert.Equal(t, int64(1), page[0].ID)
	assert.False(t, hasPrev)
	assert.True(t, hasNext)

	page, hasPrev, hasNext = paginateTasks(tasks, 2)
	require.Len(t, page, 2)
	assert.Equal(t, int64(11), page[0].ID)
	assert.True(t, hasPrev)
	assert.False(t, hasNext)

	// страница за концом списка пуста
	page, _, hasNext = paginateTasks(tasks, 5)
	assert.Empty(t, page)
	assert.False(t, hasNext)
}

// TestTaskPageKeyboard проверяет кнопки страницы и навигацию
func TestTaskPageKeyboard(t *testing.T) {
	tasks := []*models.Task{
		{ID: 1, Status: models.StatusActive},
		{ID: 2, Status: models.StatusCompleted},
	}
	kb := taskPageKeyboard(tasks, true, true)

	// по ряду на задачу, ряд навигации и возврат в панель
	require.Len(t, kb.InlineKeyboard, 4)
	assert.Len(t, kb.InlineKeyboard[0], 3)
	assert.Equal(t, "admin_task:complete:1", *kb.InlineKeyboard[0][0].CallbackData)
	assert.Len(t, kb.InlineKeyboard[1], 2)
	assert.Equal(t, "admin_task:reopen:2", *kb.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, "admin_page:prev", *kb.InlineKeyboard[2][0].CallbackData)
	assert.Equal(t, "admin_page:next", *kb.InlineKeyboard[2][1].CallbackData)

	// без соседних страниц ряда навигации нет
	kb = taskPageKeyboard(tasks, false, false)
	require.Len(t, kb.InlineKeyboard, 3)
	assert.Equal(t, "menu:admin", *kb.InlineKeyboard[2][0].CallbackData)
}

// TestGroupSummaryKeyboard проверяет кнопки перехода к задачам группы
func TestGroupSummaryKeyboard(t *testing.T) {
	kb := groupSummaryKeyboard([]string{"-100500", ""})

	require.Len(t, kb.InlineKeyboard, 3)
	assert.Equal(t, "Группа -100500", kb.InlineKeyboard[0][0].Text)
	assert.Equal(t, "group:view:-100500", *kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "Без группы", kb.InlineKeyboard[1][0].Text)
	assert.Equal(t, "group:view:", *kb.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, "menu:main", *kb.InlineKeyboard[2][0].CallbackData)
}

// TestFormatTaskLine проверяет строку задачи в общих списках
func TestFormatTaskLine(t *testing.T) {
	task := &models.Task{
		ID: 3, GroupTaskID: 2, TaskText: "Отчёт", Deadline: "05.09.2026",
		Status: models.StatusActive,
	}
	assert.Equal(t, "#3 🟡 Отчёт (до 05.09.2026) [группа 2]", formatTaskLine(task))

	task.Status = models.StatusCompleted
	assert.Contains(t, formatTaskLine(task), "✅")
}
