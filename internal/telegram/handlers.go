package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"taskbot/internal/logger"
	"taskbot/internal/models"
	"taskbot/internal/service"
)

// errText превращает бизнес-ошибку в сообщение для пользователя
func errText(err error) string {
	var be *service.BusinessError
	if errors.As(err, &be) {
		return be.Message
	}
	return "Что-то пошло не так, попробуйте позже."
}

// --- Команды ---

func (r *Router) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if !isPrivate(msg.Chat) {
		r.sendText(chatID, privateOnly)
		return
	}

	username := handleOf(msg.From)
	if username != "" {
		// личный чат запоминается для прямых уведомлений
		if err := r.directory.RegisterChat(ctx, username, chatID); err != nil {
			logger.Warn("Bot: Не удалось привязать чат",
				zap.String("username", username), zap.Error(err))
		}
	}

	r.sendWithKeyboard(chatID, startText, mainMenuKeyboard(r.access.IsAdmin(username)))
}

func (r *Router) handleDone(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	parts := strings.Fields(msg.Text)
	if len(parts) < 2 {
		r.sendText(chatID, "Укажите id задачи, например: /done 15")
		return
	}
	taskID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		r.sendText(chatID, "Некорректный id задачи")
		return
	}

	if _, err := r.tasks.CompleteTask(ctx, taskID); err != nil {
		r.sendText(chatID, errText(err))
		return
	}
	r.sendText(chatID, fmt.Sprintf("✅ Задача #%d отмечена как выполненная", taskID))
}

func (r *Router) handleMyTasks(ctx context.Context, msg *tgbotapi.Message) {
	if !isPrivate(msg.Chat) {
		r.sendText(msg.Chat.ID, privateOnly)
		return
	}
	r.sendWithKeyboard(msg.Chat.ID, myTasksText, myTasksKeyboard())
}

// --- Меню ---

func (r *Router) showMainMenu(chatID int64, cb *tgbotapi.CallbackQuery, username string) {
	r.clearDraft(chatID)
	r.editTo(cb, mainMenuText, mainMenuKeyboard(r.access.IsAdmin(username)))
}

func (r *Router) showAdminPanel(cb *tgbotapi.CallbackQuery, username string) {
	if !r.access.IsAdmin(username) {
		r.alert(cb.ID, noRightsText)
		return
	}
	r.editTo(cb, adminPanelText, adminPanelKeyboard())
}

// --- Мои задачи ---

func (r *Router) handleMyTasksCallback(ctx context.Context, chatID int64, cb *tgbotapi.CallbackQuery, data string) {
	username := handleOf(cb.From)
	if username == "" {
		r.alert(cb.ID, "Username не найден")
		return
	}

	status := models.StatusActive
	if data == "my:completed" {
		status = models.StatusCompleted
	}
	tasks, err := r.tasks.ListTasks(ctx, models.TaskFilter{AssignedTo: username, Status: status})
	if err != nil {
		r.alert(cb.ID, errText(err))
		return
	}
	if len(tasks) == 0 {
		text := "Нет активных задач"
		if status == models.StatusCompleted {
			text = "Нет выполненных задач"
		}
		r.editTo(cb, text, myTasksKeyboard())
		return
	}

	for _, task := range tasks {
		r.sendWithKeyboard(chatID,
			formatTaskCard(task, status == models.StatusCompleted),
			taskCardKeyboard(task, false))
	}
	r.answer(cb.ID, "")
}

// --- Действия над задачей ---

func (r *Router) handleTaskAction(ctx context.Context, cb *tgbotapi.CallbackQuery, data string, admin bool) {
	parts := strings.Split(data, ":")
	if len(parts) != 3 {
		r.answer(cb.ID, "")
		return
	}
	action := parts[1]
	taskID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		r.answer(cb.ID, "Некорректный id задачи")
		return
	}

	if admin && !r.access.IsAdmin(handleOf(cb.From)) {
		r.alert(cb.ID, noRightsText)
		return
	}

	switch action {
	case "complete":
		_, err = r.tasks.CompleteTask(ctx, taskID)
	case "reopen":
		_, err = r.tasks.ReopenTask(ctx, taskID)
	case "delete":
		_, err = r.tasks.DeleteTask(ctx, taskID)
	case "deadline":
		d := r.getDraft(cb.Message.Chat.ID)
		d.step = stepEditDeadline
		d.taskID = taskID
		r.sendText(cb.Message.Chat.ID, "Отправьте новую дату сообщением (ДД.ММ.ГГГГ)")
		r.answer(cb.ID, "")
		return
	default:
		r.answer(cb.ID, "Неизвестное действие")
		return
	}

	if err != nil {
		r.alert(cb.ID, errText(err))
		return
	}
	r.answer(cb.ID, "Готово")
}

// --- Разделы админ панели ---

func (r *Router) handleAdminCallback(ctx context.Context, chatID int64, cb *tgbotapi.CallbackQuery, data, username string) {
	if !r.access.IsAdmin(username) {
		r.alert(cb.ID, noRightsText)
		return
	}

	switch data {
	case "admin:new":
		r.beginTaskCreation(ctx, chatID, cb)

	case "admin:all":
		r.getDraft(chatID).page = 0
		r.showTasksPage(ctx, chatID, cb)

	case "admin:overdue":
		r.showTasks(ctx, chatID, cb, models.TaskFilter{OverdueOnly: true}, "Просроченных задач нет")

	case "admin:by_user":
		r.showTasksByUser(ctx, cb)

	case "admin:by_group":
		r.showTasksByGroup(ctx, cb)

	case "admin:stats":
		stats, err := r.tasks.GetStats(ctx)
		if err != nil {
			r.alert(cb.ID, errText(err))
			return
		}
		r.editTo(cb, formatStats(stats), adminPanelKeyboard())

	case "admin:notify":
		cfg, err := r.directory.GetConfig(ctx)
		if err != nil {
			r.alert(cb.ID, errText(err))
			return
		}
		r.editTo(cb, "Настройки уведомлений", notifyKeyboard(cfg))

	case "admin:users":
		r.editTo(cb, "Управление пользователями", usersMenuKeyboard())

	case "admin:admins":
		r.editTo(cb, "Управление администраторами", adminsMenuKeyboard())

	case "admin:cancel":
		r.clearDraft(chatID)
		r.editTo(cb, "Действие отменено", adminPanelKeyboard())
	}
}

const tasksPerPage = 5

// paginateTasks вырезает страницу списка и сообщает о наличии соседних страниц
func paginateTasks(tasks []*models.Task, page int) ([]*models.Task, bool, bool) {
	start := page * tasksPerPage
	if start >= len(tasks) {
		return nil, page > 0, false
	}
	end := start + tasksPerPage
	if end > len(tasks) {
		end = len(tasks)
	}
	return tasks[start:end], page > 0, end < len(tasks)
}

func (r *Router) showTasksPage(ctx context.Context, chatID int64, cb *tgbotapi.CallbackQuery) {
	tasks, err := r.tasks.ListTasks(ctx, models.TaskFilter{})
	if err != nil {
		r.alert(cb.ID, errText(err))
		return
	}
	if len(tasks) == 0 {
		r.editTo(cb, "Задач пока нет", adminPanelKeyboard())
		return
	}

	d := r.getDraft(chatID)
	pageTasks, hasPrev, hasNext := paginateTasks(tasks, d.page)
	// после удаления задач страница могла опустеть
	for len(pageTasks) == 0 && d.page > 0 {
		d.page--
		pageTasks, hasPrev, hasNext = paginateTasks(tasks, d.page)
	}

	lines := []string{fmt.Sprintf("Страница %d", d.page+1)}
	for i, task := range pageTasks {
		lines = append(lines, fmt.Sprintf("%d. %s", d.page*tasksPerPage+i+1, formatTaskLine(task)))
	}
	r.editTo(cb, strings.Join(lines, "\n"), taskPageKeyboard(pageTasks, hasPrev, hasNext))
}

func (r *Router) handleTaskPageNav(ctx context.Context, chatID int64, cb *tgbotapi.CallbackQuery, data string) {
	if !r.access.IsAdmin(handleOf(cb.From)) {
		r.alert(cb.ID, noRightsText)
		return
	}

	d := r.getDraft(chatID)
	switch strings.TrimPrefix(data, "admin_page:") {
	case "next":
		d.page++
	case "prev":
		if d.page > 0 {
			d.page--
		}
	}
	r.showTasksPage(ctx, chatID, cb)
}

func (r *Router) showTasks(ctx context.Context, chatID int64, cb *tgbotapi.CallbackQuery, filter models.TaskFilter, emptyText string) {
	tasks, err := r.tasks.ListTasks(ctx, filter)
	if err != nil {
		r.alert(cb.ID, errText(err))
		return
	}
	if len(tasks) == 0 {
		r.editTo(cb, emptyText, adminPanelKeyboard())
		return
	}
	for _, task := range tasks {
		r.sendWithKeyboard(chatID, formatTaskLine(task), taskCardKeyboard(task, true))
	}
	r.answer(cb.ID, "")
}

func (r *Router) showTasksByUser(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	users, err := r.directory.ListUsers(ctx)
	if err != nil {
		r.alert(cb.ID, errText(err))
		return
	}
	now := time.Now()

	var lines []string
	for _, u := range users {
		tasks, err := r.tasks.ListTasks(ctx, models.TaskFilter{AssignedTo: u.Username})
		if err != nil {
			continue
		}
		var active, completed int
		var activeLines []string
		for _, t := range tasks {
			if t.Status == models.StatusCompleted {
				completed++
				continue
			}
			active++
			flag := ""
			if t.IsOverdue(now) {
				flag = " 🔴"
			}
			activeLines = append(activeLines, fmt.Sprintf("- %s (%s)%s", t.TaskText, t.Deadline, flag))
		}
		lines = append(lines,
			fmt.Sprintf("%s (%s)", u.FullName, u.Username),
			fmt.Sprintf("Активных: %d", active),
			fmt.Sprintf("Выполнено: %d", completed))
		lines = append(lines, activeLines...)
		lines = append(lines, "")
	}

	text := strings.Join(lines, "\n")
	if text == "" {
		text = "Пользователи не найдены"
	}
	r.editTo(cb, text, adminPanelKeyboard())
}

func groupTitle(groupID string) string {
	if groupID == "" {
		return "Без группы"
	}
	return "Группа " + groupID
}

func (r *Router) showTasksByGroup(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	tasks, err := r.tasks.ListTasks(ctx, models.TaskFilter{})
	if err != nil {
		r.alert(cb.ID, errText(err))
		return
	}
	if len(tasks) == 0 {
		r.editTo(cb, "Задач пока нет", adminPanelKeyboard())
		return
	}

	byGroup := map[string][]*models.Task{}
	var order []string
	for _, t := range tasks {
		if _, ok := byGroup[t.GroupID]; !ok {
			order = append(order, t.GroupID)
		}
		byGroup[t.GroupID] = append(byGroup[t.GroupID], t)
	}

	now := time.Now()
	lines := []string{"Сводка по группам"}
	for _, id := range order {
		var active, completed, overdue int
		for _, t := range byGroup[id] {
			if t.Status == models.StatusCompleted {
				completed++
				continue
			}
			active++
			if t.IsOverdue(now) {
				overdue++
			}
		}
		lines = append(lines, fmt.Sprintf("%s: 🟡 %d / 🟢 %d / 🔴 %d",
			groupTitle(id), active, completed, overdue))
	}
	r.editTo(cb, strings.Join(lines, "\n"), groupSummaryKeyboard(order))
}

func (r *Router) handleGroupView(ctx context.Context, chatID int64, cb *tgbotapi.CallbackQuery, data string) {
	if !r.access.IsAdmin(handleOf(cb.From)) {
		r.alert(cb.ID, noRightsText)
		return
	}

	groupID := strings.TrimPrefix(data, "group:view:")
	tasks, err := r.tasks.ListTasks(ctx, models.TaskFilter{})
	if err != nil {
		r.alert(cb.ID, errText(err))
		return
	}

	var groupTasks []*models.Task
	for _, t := range tasks {
		if t.GroupID == groupID {
			groupTasks = append(groupTasks, t)
		}
	}
	if len(groupTasks) == 0 {
		r.alert(cb.ID, "Задачи не найдены")
		return
	}

	header := "Задачи группы " + groupID
	if groupID == "" {
		header = "Задачи без группы"
	}
	r.editTo(cb, header, adminPanelKeyboard())
	for _, task := range groupTasks {
		r.sendWithKeyboard(chatID, formatTaskLine(task), taskCardKeyboard(task, true))
	}
}

// --- Создание задачи ---

func (r *Router) beginTaskCreation(ctx context.Context, chatID int64, cb *tgbotapi.CallbackQuery) {
	users, err := r.directory.ListUsers(ctx)
	if err != nil {
		r.alert(cb.ID, errText(err))
		return
	}
	if len(users) == 0 {
		r.alert(cb.ID, "Сначала добавьте пользователей")
		return
	}

	r.clearDraft(chatID)
	r.getDraft(chatID)

	r.editTo(cb, "Выберите исполнителей", assigneeKeyboard(users, nil))
}

func (r *Router) handleExecCallback(ctx context.Context, chatID int64, cb *tgbotapi.CallbackQuery, data string) {
	d := r.getDraft(chatID)

	switch {
	case data == "exec:cancel":
		r.clearDraft(chatID)
		r.editTo(cb, "Создание задачи отменено", adminPanelKeyboard())

	case strings.HasPrefix(data, "exec:toggle:"):
		username := models.NormalizeHandle(strings.TrimPrefix(data, "exec:toggle:"))
		d.assignees[username] = !d.assignees[username]

		users, err := r.directory.ListUsers(ctx)
		if err != nil {
			r.alert(cb.ID, errText(err))
			return
		}
		selected := d.selected()
		note := "никто"
		if len(selected) > 0 {
			note = strings.Join(selected, ", ")
		}
		edit := tgbotapi.NewEditMessageReplyMarkup(chatID, cb.Message.MessageID, assigneeKeyboard(users, d.assignees))
		if _, err := r.bot.Send(edit); err != nil {
			logger.Warn("Bot: Не удалось обновить клавиатуру", zap.Error(err))
		}
		r.answer(cb.ID, "Выбрано: "+note)

	case data == "exec:done":
		if len(d.selected()) == 0 {
			r.alert(cb.ID, "Нужно выбрать хотя бы одного исполнителя")
			return
		}
		d.step = stepTaskText
		r.editTo(cb, "Введите описание задачи сообщением", cancelKeyboard())
	}
}

func cancelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", "exec:cancel"),
		),
	)
}

func (r *Router) handleGroupChoice(ctx context.Context, chatID int64, cb *tgbotapi.CallbackQuery, data string) {
	d := r.getDraft(chatID)
	d.groupID = strings.TrimPrefix(data, "group:choose:")
	if d.groupID == "none" {
		d.groupID = ""
	}
	r.editTo(cb, "Выберите срок", deadlineKeyboard())
}

func deadlineFromChoice(choice string, now time.Time) string {
	switch choice {
	case "tomorrow":
		return models.FormatDate(now.AddDate(0, 0, 1))
	case "3days":
		return models.FormatDate(now.AddDate(0, 0, 3))
	case "week":
		return models.FormatDate(now.AddDate(0, 0, 7))
	}
	return models.FormatDate(now)
}

func (r *Router) handleDeadlineChoice(ctx context.Context, chatID int64, cb *tgbotapi.CallbackQuery, data, username string) {
	choice := strings.TrimPrefix(data, "deadline:")
	d := r.getDraft(chatID)

	if choice == "custom" {
		d.step = stepCustomDeadline
		r.editTo(cb, "Введите дату в формате ДД.ММ.ГГГГ", cancelKeyboard())
		return
	}

	r.finalizeTaskCreation(ctx, chatID, username, deadlineFromChoice(choice, time.Now()))
	r.answer(cb.ID, "")
}

func (r *Router) finalizeTaskCreation(ctx context.Context, chatID int64, username, deadline string) {
	d := r.getDraft(chatID)
	assignees := d.selected()
	taskText := d.taskText
	groupID := d.groupID
	r.clearDraft(chatID)

	tg, tasks, err := r.tasks.CreateTaskGroup(ctx, taskText, deadline, groupID, assignees, username)
	if err != nil {
		r.sendText(chatID, errText(err))
		return
	}

	executors := make([]string, 0, len(tasks))
	for _, t := range tasks {
		executors = append(executors, t.AssignedTo)
	}
	r.sendWithKeyboard(chatID,
		fmt.Sprintf("Задача создана!\nГрупповой id: %d\nИсполнители: %s\nСрок: %s",
			tg.GroupTaskID, strings.Join(executors, ", "), tg.Deadline),
		adminPanelKeyboard())
}

// --- Свободный текст внутри сценариев ---

func (r *Router) handleFreeForm(ctx context.Context, chatID int64, msg *tgbotapi.Message, text string) {
	d := r.getDraft(chatID)

	switch d.step {
	case stepTaskText:
		d.taskText = text
		d.step = ""
		groups, err := r.directory.ListGroups(ctx)
		if err != nil {
			r.sendText(chatID, errText(err))
			return
		}
		kb := groupKeyboard(groups)
		kb.InlineKeyboard = append([][]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("Без уведомлений", "group:choose:none"),
			),
		}, kb.InlineKeyboard...)
		r.sendWithKeyboard(chatID, "Выберите группу/чат для уведомлений", kb)

	case stepCustomDeadline:
		if _, err := models.ParseDeadline(text); err != nil {
			r.sendText(chatID, "Некорректная дата, нужен формат ДД.ММ.ГГГГ")
			return
		}
		d.step = ""
		r.finalizeTaskCreation(ctx, chatID, handleOf(msg.From), text)

	case stepEditDeadline:
		taskID := d.taskID
		r.clearDraft(chatID)
		task, err := r.tasks.GetTask(ctx, taskID)
		if err != nil {
			r.sendText(chatID, errText(err))
			return
		}
		if _, err := r.tasks.UpdateTaskGroup(ctx, task.GroupTaskID, service.WithDeadline(text)); err != nil {
			r.sendText(chatID, errText(err))
			return
		}
		r.sendText(chatID, "Срок обновлен")

	case stepUserUsername:
		d.username = models.NormalizeHandle(text)
		d.step = stepUserFullName
		r.sendText(chatID, "Введите полное имя пользователя")

	case stepUserFullName:
		d.fullName = text
		d.step = stepUserGroups
		r.sendText(chatID, "Введите группы (через запятую, либо «-» если без групп)")

	case stepUserGroups:
		username := d.username
		fullName := d.fullName
		r.clearDraft(chatID)

		var groups []string
		if text != "-" {
			for _, g := range strings.Split(text, ",") {
				if g = strings.TrimSpace(g); g != "" {
					groups = append(groups, g)
				}
			}
		}
		user := &models.User{Username: username, FullName: fullName, Groups: groups}
		if err := r.directory.UpsertUser(ctx, user); err != nil {
			r.sendText(chatID, errText(err))
			return
		}
		if err := r.access.AddEmployee(username); err != nil {
			logger.Warn("Bot: Не удалось обновить список сотрудников", zap.Error(err))
		}
		r.sendWithKeyboard(chatID, "Пользователь добавлен", adminPanelKeyboard())

	case stepAdminUsername:
		r.clearDraft(chatID)
		username := models.NormalizeHandle(text)
		if err := r.access.AddAdmin(username); err != nil {
			r.sendText(chatID, "Не удалось добавить администратора")
			return
		}
		r.sendWithKeyboard(chatID, "Администратор добавлен", adminPanelKeyboard())

	default:
		// сценария нет, сообщение игнорируется
	}
}

// --- Флаги уведомлений ---

func (r *Router) handleNotifyToggle(ctx context.Context, cb *tgbotapi.CallbackQuery, data string) {
	if !r.access.IsAdmin(handleOf(cb.From)) {
		r.alert(cb.ID, noRightsText)
		return
	}

	cfg, err := r.directory.GetConfig(ctx)
	if err != nil {
		r.alert(cb.ID, errText(err))
		return
	}

	switch models.Event(strings.TrimPrefix(data, "notify:")) {
	case models.EventTaskCreated:
		cfg.TaskCreated = !cfg.TaskCreated
	case models.EventTaskCompleted:
		cfg.TaskCompleted = !cfg.TaskCompleted
	case models.EventTaskDeleted:
		cfg.TaskDeleted = !cfg.TaskDeleted
	case models.EventOverdueReminder:
		cfg.OverdueReminder = !cfg.OverdueReminder
	default:
		r.answer(cb.ID, "")
		return
	}

	if err := r.directory.SetConfig(ctx, cfg); err != nil {
		r.alert(cb.ID, errText(err))
		return
	}
	r.editTo(cb, "Настройки уведомлений", notifyKeyboard(cfg))
}

// --- Пользователи ---

func (r *Router) handleUsersCallback(ctx context.Context, chatID int64, cb *tgbotapi.CallbackQuery, data string) {
	if !r.access.IsAdmin(handleOf(cb.From)) {
		r.alert(cb.ID, noRightsText)
		return
	}

	parts := strings.Split(data, ":")
	switch {
	case data == "users:list":
		users, err := r.directory.ListUsers(ctx)
		if err != nil {
			r.alert(cb.ID, errText(err))
			return
		}
		var lines []string
		for _, u := range users {
			lines = append(lines, fmt.Sprintf("%s (%s)", u.FullName, u.Username))
		}
		text := strings.Join(lines, "\n")
		if text == "" {
			text = "Нет пользователей"
		}
		r.editTo(cb, text, usersMenuKeyboard())

	case data == "users:add":
		d := r.getDraft(chatID)
		d.step = stepUserUsername
		r.editTo(cb, "Введите @username нового пользователя", cancelKeyboard())

	case data == "users:remove":
		users, err := r.directory.ListUsers(ctx)
		if err != nil {
			r.alert(cb.ID, errText(err))
			return
		}
		var rows [][]tgbotapi.InlineKeyboardButton
		for _, u := range users {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(u.Username, "users:remove:"+u.Username),
			))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", "menu:admin"),
		))
		r.editTo(cb, "Выберите пользователя для удаления", tgbotapi.NewInlineKeyboardMarkup(rows...))

	case len(parts) == 3 && parts[1] == "remove":
		username := parts[2]
		if err := r.directory.DeleteUser(ctx, username); err != nil {
			r.alert(cb.ID, errText(err))
			return
		}
		if err := r.access.RemoveEmployee(username); err != nil {
			logger.Warn("Bot: Не удалось обновить список сотрудников", zap.Error(err))
		}
		r.editTo(cb, "Пользователь удален", usersMenuKeyboard())
	}
}

// --- Администраторы ---

func (r *Router) handleAdminsCallback(chatID int64, cb *tgbotapi.CallbackQuery, data string) {
	if !r.access.IsAdmin(handleOf(cb.From)) {
		r.alert(cb.ID, noRightsText)
		return
	}

	parts := strings.Split(data, ":")
	switch {
	case data == "admins:list":
		text := strings.Join(r.access.Admins(), "\n")
		if text == "" {
			text = "Нет администраторов"
		}
		r.editTo(cb, text, adminsMenuKeyboard())

	case data == "admins:add":
		d := r.getDraft(chatID)
		d.step = stepAdminUsername
		r.editTo(cb, "Введите @username администратора", cancelKeyboard())

	case data == "admins:remove":
		var rows [][]tgbotapi.InlineKeyboardButton
		for _, adm := range r.access.Admins() {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(adm, "admins:remove:"+adm),
			))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", "menu:admin"),
		))
		r.editTo(cb, "Выберите администратора для удаления", tgbotapi.NewInlineKeyboardMarkup(rows...))

	case len(parts) == 3 && parts[1] == "remove":
		if err := r.access.RemoveAdmin(parts[2]); err != nil {
			r.alert(cb.ID, "Не удалось удалить администратора")
			return
		}
		r.editTo(cb, "Администратор удален", adminsMenuKeyboard())
	}
}
