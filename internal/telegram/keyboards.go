package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskbot/internal/models"
)

// Тексты интерфейса
const (
	startText = "Привет! Я помогаю управлять групповыми задачами.\n" +
		"Используйте меню ниже."
	mainMenuText   = "🏠 Главное меню"
	myTasksText    = "📋 Мои задачи"
	adminPanelText = "👑 Админ панель"
	privateOnly    = "Используйте личный чат со мной, чтобы открыть меню."
	noRightsText   = "Недостаточно прав"
)

func mainMenuKeyboard(isAdmin bool) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Мои задачи", "menu:mytasks"),
		),
	}
	if isAdmin {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👑 Админ панель", "menu:admin"),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func myTasksKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🟡 Текущие задачи", "my:active"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🟢 Выполненные задачи", "my:completed"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏠 Главное меню", "menu:main"),
		),
	)
}

func adminPanelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Новая задача", "admin:new"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Все задачи", "admin:all"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Просроченные", "admin:overdue"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👥 Задачи по сотрудникам", "admin:by_user"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗂 Задачи по группам", "admin:by_group"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Статистика", "admin:stats"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Настройки уведомлений", "admin:notify"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👤 Управление пользователями", "admin:users"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👑 Управление администраторами", "admin:admins"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏠 Главное меню", "menu:main"),
		),
	)
}

// assigneeKeyboard выводит всех пользователей по два в ряд,
// выбранные помечаются галочкой
func assigneeKeyboard(users []*models.User, selected map[string]bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, u := range users {
		label := u.Username
		if selected[u.Username] {
			label = "✅ " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, "exec:toggle:"+u.Username))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✔️ Завершить выбор", "exec:done"),
	))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", "exec:cancel"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func groupKeyboard(groups []*models.Group) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, g := range groups {
		label := g.Name
		if label == "" {
			label = g.ID
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "group:choose:"+g.ID),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", "exec:cancel"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func deadlineKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏰ Сегодня", "deadline:today"),
			tgbotapi.NewInlineKeyboardButtonData("⏰ Завтра", "deadline:tomorrow"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏰ Через 3 дня", "deadline:3days"),
			tgbotapi.NewInlineKeyboardButtonData("⏰ Через неделю", "deadline:week"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 Указать дату вручную", "deadline:custom"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", "exec:cancel"),
		),
	)
}

func notifyKeyboard(cfg models.Config) tgbotapi.InlineKeyboardMarkup {
	mark := func(on bool, yes, no string) string {
		if on {
			return yes
		}
		return no
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(mark(cfg.TaskCreated, "🔔", "🔕")+" Создание задач", "notify:task_created"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(mark(cfg.TaskCompleted, "✅", "❌")+" Завершение задач", "notify:task_completed"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(mark(cfg.TaskDeleted, "🗑", "📥")+" Удаление задач", "notify:task_deleted"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(mark(cfg.OverdueReminder, "⏰", "⏳")+" Напоминания о просрочке", "notify:overdue_reminder"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Назад", "menu:admin"),
		),
	)
}

func usersMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Добавить пользователя", "users:add"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить пользователя", "users:remove"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Список пользователей", "users:list"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Назад", "menu:admin"),
		),
	)
}

func adminsMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Добавить администратора", "admins:add"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить администратора", "admins:remove"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Список администраторов", "admins:list"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Назад", "menu:admin"),
		),
	)
}

// taskPageKeyboard собирает действия по задачам страницы и навигацию
func taskPageKeyboard(tasks []*models.Task, hasPrev, hasNext bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, t := range tasks {
		if t.Status == models.StatusCompleted {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🔄 #%d", t.ID), fmt.Sprintf("admin_task:reopen:%d", t.ID)),
				tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🗑 #%d", t.ID), fmt.Sprintf("admin_task:delete:%d", t.ID)),
			))
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("✅ #%d", t.ID), fmt.Sprintf("admin_task:complete:%d", t.ID)),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("⏰ #%d", t.ID), fmt.Sprintf("admin_task:deadline:%d", t.ID)),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🗑 #%d", t.ID), fmt.Sprintf("admin_task:delete:%d", t.ID)),
		))
	}

	var nav []tgbotapi.InlineKeyboardButton
	if hasPrev {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("◀️ Предыдущая", "admin_page:prev"))
	}
	if hasNext {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("Следующая ▶️", "admin_page:next"))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 Назад", "menu:admin"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func groupSummaryKeyboard(groupIDs []string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, id := range groupIDs {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(groupTitle(id), "group:view:"+id),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🏠 Главное меню", "menu:main"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// taskCardKeyboard собирает кнопки действий для карточки задачи
func taskCardKeyboard(task *models.Task, admin bool) tgbotapi.InlineKeyboardMarkup {
	prefix := "task"
	if admin {
		prefix = "admin_task"
	}
	id := task.ID

	var rows [][]tgbotapi.InlineKeyboardButton
	if task.Status == models.StatusCompleted {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Открыть заново", fmt.Sprintf("%s:reopen:%d", prefix, id)),
		))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить", fmt.Sprintf("%s:delete:%d", prefix, id)),
		))
	} else {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Завершить", fmt.Sprintf("%s:complete:%d", prefix, id)),
		))
		if admin {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("⏰ Изменить срок", fmt.Sprintf("%s:deadline:%d", prefix, id)),
			))
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить", fmt.Sprintf("%s:delete:%d", prefix, id)),
			))
		}
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func formatTaskCard(task *models.Task, includeCompletedAt bool) string {
	lines := []string{
		fmt.Sprintf("#%d %s", task.ID, task.TaskText),
		"Срок: " + task.Deadline,
		"Назначил: " + task.AssignedBy,
		"Статус: " + string(task.Status),
	}
	if includeCompletedAt {
		lines = append(lines, "Выполнено: "+task.CompletedAt)
	}
	return strings.Join(lines, "\n")
}

func formatTaskLine(task *models.Task) string {
	icon := "🟡"
	if task.Status == models.StatusCompleted {
		icon = "✅"
	}
	return fmt.Sprintf("#%d %s %s (до %s) [группа %d]",
		task.ID, icon, task.TaskText, task.Deadline, task.GroupTaskID)
}

func formatStats(stats *models.Stats) string {
	return fmt.Sprintf(
		"📊 Статистика\n"+
			"Всего задач: %d\n"+
			"Активных: %d\n"+
			"Выполнено: %d\n"+
			"Просрочено: %d\n"+
			"Сотрудников: %d\n"+
			"Групп: %d",
		stats.TotalTasks, stats.ActiveTasks, stats.CompletedTasks,
		stats.OverdueTasks, stats.UsersCount, stats.GroupsCount,
	)
}
