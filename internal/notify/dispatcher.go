package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"taskbot/internal/logger"
	"taskbot/internal/models"
	rep "taskbot/internal/repository"
)

// Sender отправляет текстовое сообщение в чат.
// В проде его реализует телеграм-адаптер, в тестах используется рекордер.
type Sender interface {
	SendMessage(chatID int64, text string) error
}

// NopSender используется при запуске без бота
type NopSender struct{}

func (NopSender) SendMessage(int64, string) error { return nil }

// Dispatcher рассылает уведомления о событиях задач: проверяет флаг
// конфигурации события и шлёт одно сообщение в чат группы плюс личное
// сообщение каждому исполнителю, чей чат известен.
type Dispatcher struct {
	repo   rep.Storage
	sender Sender
}

func NewDispatcher(repo rep.Storage, sender Sender) *Dispatcher {
	return &Dispatcher{repo: repo, sender: sender}
}

func (d *Dispatcher) enabled(ctx context.Context, event models.Event) bool {
	cfg, err := d.repo.GetConfig(ctx)
	if err != nil {
		logger.Warn("Notify: Не удалось прочитать конфигурацию, событие пропущено",
			zap.String("event", string(event)), zap.Error(err))
		return false
	}
	return cfg.Enabled(event)
}

func (d *Dispatcher) TaskCreated(ctx context.Context, tg *models.TaskGroup, tasks []*models.Task) {
	if !d.enabled(ctx, models.EventTaskCreated) {
		return
	}

	assignees := make([]string, 0, len(tasks))
	for _, t := range tasks {
		assignees = append(assignees, t.AssignedTo)
	}
	text := fmt.Sprintf("🆕 Новая задача #%d\n%s\nСрок: %s\nИсполнители: %s",
		tg.GroupTaskID, tg.TaskText, tg.Deadline, strings.Join(assignees, ", "))

	d.toGroup(tg.GroupID, text)
	for _, t := range tasks {
		d.toAssignee(ctx, t.AssignedTo,
			fmt.Sprintf("🆕 Вам назначена задача #%d\n%s\nСрок: %s\nНазначил: %s",
				t.ID, tg.TaskText, tg.Deadline, t.AssignedBy))
	}
}

func (d *Dispatcher) TaskCompleted(ctx context.Context, task *models.Task) {
	if !d.enabled(ctx, models.EventTaskCompleted) {
		return
	}

	text := fmt.Sprintf("✅ Задача #%d выполнена\n%s\nИсполнитель: %s\nВыполнено: %s",
		task.ID, task.TaskText, task.AssignedTo, task.CompletedAt)

	d.toGroup(task.GroupID, text)
	d.toAssignee(ctx, task.AssignedBy,
		fmt.Sprintf("✅ %s выполнил(а) задачу #%d\n%s", task.AssignedTo, task.ID, task.TaskText))
}

func (d *Dispatcher) TaskDeleted(ctx context.Context, tasks []*models.Task) {
	if !d.enabled(ctx, models.EventTaskDeleted) {
		return
	}

	for _, task := range tasks {
		text := fmt.Sprintf("🗑 Задача #%d удалена\n%s\nИсполнитель: %s",
			task.ID, task.TaskText, task.AssignedTo)
		d.toGroup(task.GroupID, text)
		d.toAssignee(ctx, task.AssignedTo,
			fmt.Sprintf("🗑 Ваша задача #%d удалена\n%s", task.ID, task.TaskText))
	}
}

// OverdueReminder сообщает, было ли событие действительно разослано:
// при выключенном флаге воркер не должен расходовать дневное напоминание.
func (d *Dispatcher) OverdueReminder(ctx context.Context, task *models.Task) bool {
	if !d.enabled(ctx, models.EventOverdueReminder) {
		return false
	}

	text := fmt.Sprintf("⏰ Задача #%d просрочена\n%s\nСрок был: %s\nИсполнитель: %s",
		task.ID, task.TaskText, task.Deadline, task.AssignedTo)

	d.toGroup(task.GroupID, text)
	d.toAssignee(ctx, task.AssignedTo,
		fmt.Sprintf("⏰ Ваша задача #%d просрочена\n%s\nСрок был: %s",
			task.ID, task.TaskText, task.Deadline))
	return true
}

// toGroup шлёт сообщение в чат группы; идентификатор группы — внешний chat id
func (d *Dispatcher) toGroup(groupID, text string) {
	if groupID == "" {
		return
	}
	chatID, err := strconv.ParseInt(groupID, 10, 64)
	if err != nil {
		logger.Warn("Notify: Идентификатор группы не является chat id",
			zap.String("group_id", groupID))
		return
	}
	if err := d.sender.SendMessage(chatID, text); err != nil {
		logger.Warn("Notify: Не удалось отправить сообщение в группу",
			zap.String("group_id", groupID), zap.Error(err))
	}
}

// toAssignee шлёт личное сообщение, если пользователь открывал чат с ботом
func (d *Dispatcher) toAssignee(ctx context.Context, username, text string) {
	user, err := d.repo.GetUser(ctx, username)
	if err != nil || user.ChatID == 0 {
		return
	}
	if err := d.sender.SendMessage(user.ChatID, text); err != nil {
		logger.Warn("Notify: Не удалось отправить личное сообщение",
			zap.String("username", username), zap.Error(err))
	}
}
