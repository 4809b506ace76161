package repository

import (
	"context"
	"errors"

	"taskbot/internal/models"
)

var ErrNotFound = errors.New("запись не найдена")
var ErrAlreadyExists = errors.New("запись уже существует")

type TaskRepository interface {
	// CreateTaskGroup создаёт групповую задачу и по одной Task на исполнителя
	CreateTaskGroup(ctx context.Context, tg *models.TaskGroup, assignees []string, assignedBy string) ([]*models.Task, error)
	AddAssignees(ctx context.Context, groupTaskID int64, assignees []string, assignedBy string) ([]*models.Task, error)
	GetTaskGroup(ctx context.Context, groupTaskID int64) (*models.TaskGroup, error)
	UpdateTaskGroup(ctx context.Context, tg *models.TaskGroup) error
	// DeleteTaskGroup удаляет группу вместе с её задачами (каскад)
	DeleteTaskGroup(ctx context.Context, groupTaskID int64) error

	GetTask(ctx context.Context, id int64) (*models.Task, error)
	ListTasks(ctx context.Context, filter models.TaskFilter) ([]*models.Task, error)
	SetTaskStatus(ctx context.Context, id int64, status models.Status, completedAt string) (*models.Task, error)
	// DeleteTask удаляет одну задачу, возвращает число оставшихся в её группе
	DeleteTask(ctx context.Context, id int64) (int, error)

	// ListDueReminders — активные задачи с истёкшим дедлайном,
	// по которым сегодня ещё не было напоминания
	ListDueReminders(ctx context.Context, today string, limit int) ([]*models.Task, error)
	MarkReminded(ctx context.Context, id int64, today string) error
}

type UserRepository interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetUser(ctx context.Context, username string) (*models.User, error)
	// UpsertUser создаёт или обновляет пользователя, полностью заменяя членство в группах
	UpsertUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, username string) error
	// SetChatID запоминает личный чат пользователя для прямых уведомлений
	SetChatID(ctx context.Context, username string, chatID int64) error
}

type GroupRepository interface {
	ListGroups(ctx context.Context) ([]*models.Group, error)
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	UpsertGroup(ctx context.Context, group *models.Group) error
}

type ConfigRepository interface {
	GetConfig(ctx context.Context) (models.Config, error)
	SetConfig(ctx context.Context, cfg models.Config) error
}

type StatsRepository interface {
	GetStats(ctx context.Context) (*models.Stats, error)
}

// Storage — полный набор репозиториев одного хранилища
type Storage interface {
	TaskRepository
	UserRepository
	GroupRepository
	ConfigRepository
	StatsRepository
	HealthCheck(ctx context.Context) error
	Close() error
}
