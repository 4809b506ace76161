package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"taskbot/internal/logger"
	"taskbot/internal/models"
	rep "taskbot/internal/repository"
)

// здесь происходит проверка ошибок бизнес-логики

// Notifier получает события жизненного цикла задач.
// Диспетчер уведомлений сам решает, рассылать ли их (флаги конфигурации).
type Notifier interface {
	TaskCreated(ctx context.Context, tg *models.TaskGroup, tasks []*models.Task)
	TaskCompleted(ctx context.Context, task *models.Task)
	TaskDeleted(ctx context.Context, tasks []*models.Task)
}

// NopNotifier используется, пока диспетчер не подключён
type NopNotifier struct{}

func (NopNotifier) TaskCreated(context.Context, *models.TaskGroup, []*models.Task) {}
func (NopNotifier) TaskCompleted(context.Context, *models.Task)                    {}
func (NopNotifier) TaskDeleted(context.Context, []*models.Task)                    {}

type TaskService struct {
	repo     rep.Storage
	notifier Notifier
	now      func() time.Time
}

func NewTaskService(repo rep.Storage, notifier Notifier) *TaskService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &TaskService{
		repo:     repo,
		notifier: notifier,
		now:      time.Now,
	}
}

// SetClock подменяет источник времени в тестах
func (s *TaskService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка здоровья сервиса: %w", err)
	}
	return nil
}

func (s *TaskService) CreateTaskGroup(ctx context.Context, text, deadline, groupID string, assignees []string, assignedBy string) (*models.TaskGroup, []*models.Task, error) {
	if text == "" {
		return nil, nil, NewValidationError("task_text", "текст задачи не может быть пустым")
	}
	if _, err := models.ParseDeadline(deadline); err != nil {
		return nil, nil, NewValidationError("deadline", err.Error())
	}
	assignees = models.NormalizeHandles(assignees)
	if len(assignees) == 0 {
		return nil, nil, NewValidationError("assigned_to", "нужен хотя бы один исполнитель")
	}

	// пустой group_id означает задачу без уведомлений в групповой чат
	if groupID != "" {
		if _, err := s.repo.GetGroup(ctx, groupID); err != nil {
			if errors.Is(err, rep.ErrNotFound) {
				logger.Info("Service: Группа не найдена", zap.String("group_id", groupID))
				return nil, nil, NewNotFound("группа", groupID)
			}
			return nil, nil, fmt.Errorf("проверка группы: %w", err)
		}
	}

	tg := &models.TaskGroup{
		TaskText:  text,
		Deadline:  deadline,
		GroupID:   groupID,
		CreatedAt: models.FormatTimestamp(s.now()),
	}
	tasks, err := s.repo.CreateTaskGroup(ctx, tg, assignees, models.NormalizeHandle(assignedBy))
	if err != nil {
		return nil, nil, fmt.Errorf("создание групповой задачи: %w", err)
	}

	s.notifier.TaskCreated(ctx, tg, tasks)
	return tg, tasks, nil
}

func (s *TaskService) AddAssignees(ctx context.Context, groupTaskID int64, assignees []string, assignedBy string) ([]*models.Task, error) {
	assignees = models.NormalizeHandles(assignees)
	if len(assignees) == 0 {
		return nil, NewValidationError("assigned_to", "нужен хотя бы один исполнитель")
	}

	tasks, err := s.repo.AddAssignees(ctx, groupTaskID, assignees, models.NormalizeHandle(assignedBy))
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Групповая задача не найдена", zap.Int64("group_task_id", groupTaskID))
			return nil, NewNotFound("групповая задача", groupTaskID)
		}
		return nil, fmt.Errorf("добавление исполнителей: %w", err)
	}

	if tg, err := s.repo.GetTaskGroup(ctx, groupTaskID); err == nil {
		s.notifier.TaskCreated(ctx, tg, tasks)
	}
	return tasks, nil
}

func (s *TaskService) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.Int64("task_id", id))
			return nil, NewNotFound("задача", id)
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return task, nil
}

func (s *TaskService) GetTaskGroup(ctx context.Context, groupTaskID int64) (*models.TaskGroup, error) {
	tg, err := s.repo.GetTaskGroup(ctx, groupTaskID)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound("групповая задача", groupTaskID)
		}
		return nil, fmt.Errorf("получение групповой задачи: %w", err)
	}
	return tg, nil
}

func (s *TaskService) ListTasks(ctx context.Context, filter models.TaskFilter) ([]*models.Task, error) {
	tasks, err := s.repo.ListTasks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

// CompleteTask переводит задачу в completed и проставляет отметку времени.
// Повторное завершение — no-op, задача возвращается без изменений.
func (s *TaskService) CompleteTask(ctx context.Context, id int64) (*models.Task, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if task.Status == models.StatusCompleted {
		logger.Info("Service: Задача уже завершена", zap.Int64("task_id", id))
		return task, nil
	}

	completed, err := s.repo.SetTaskStatus(ctx, id, models.StatusCompleted, models.FormatTimestamp(s.now()))
	if err != nil {
		return nil, fmt.Errorf("завершение задачи: %w", err)
	}

	s.notifier.TaskCompleted(ctx, completed)
	return completed, nil
}

// ReopenTask возвращает завершённую задачу в active и очищает отметку времени
func (s *TaskService) ReopenTask(ctx context.Context, id int64) (*models.Task, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if task.Status == models.StatusActive {
		return task, nil
	}

	reopened, err := s.repo.SetTaskStatus(ctx, id, models.StatusActive, "")
	if err != nil {
		return nil, fmt.Errorf("переоткрытие задачи: %w", err)
	}
	return reopened, nil
}

func (s *TaskService) UpdateTaskGroup(ctx context.Context, groupTaskID int64, options ...TaskGroupOption) (*models.TaskGroup, error) {
	tg, err := s.GetTaskGroup(ctx, groupTaskID)
	if err != nil {
		return nil, err
	}

	for _, opt := range options {
		if opt != nil {
			opt(tg)
		}
	}

	if _, err := models.ParseDeadline(tg.Deadline); err != nil {
		return nil, NewValidationError("deadline", err.Error())
	}

	if err := s.repo.UpdateTaskGroup(ctx, tg); err != nil {
		return nil, fmt.Errorf("обновление групповой задачи: %w", err)
	}
	return tg, nil
}

// DeleteTask удаляет одну задачу, возвращает число оставшихся в её группе
func (s *TaskService) DeleteTask(ctx context.Context, id int64) (int, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return 0, err
	}

	remaining, err := s.repo.DeleteTask(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("удаление задачи: %w", err)
	}

	s.notifier.TaskDeleted(ctx, []*models.Task{task})
	return remaining, nil
}

// DeleteTaskGroup удаляет группу вместе со всеми её задачами
func (s *TaskService) DeleteTaskGroup(ctx context.Context, groupTaskID int64) error {
	tasks, err := s.repo.ListTasks(ctx, models.TaskFilter{GroupTaskID: groupTaskID})
	if err != nil {
		return fmt.Errorf("получение задач группы: %w", err)
	}

	if err := s.repo.DeleteTaskGroup(ctx, groupTaskID); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return NewNotFound("групповая задача", groupTaskID)
		}
		return fmt.Errorf("удаление групповой задачи: %w", err)
	}

	if len(tasks) > 0 {
		s.notifier.TaskDeleted(ctx, tasks)
	}
	return nil
}

func (s *TaskService) GetStats(ctx context.Context) (*models.Stats, error) {
	stats, err := s.repo.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("сбор статистики: %w", err)
	}
	return stats, nil
}
