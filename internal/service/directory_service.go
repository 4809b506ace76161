package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"taskbot/internal/logger"
	"taskbot/internal/models"
	rep "taskbot/internal/repository"
)

// DirectoryService — пользователи, группы и флаги уведомлений
type DirectoryService struct {
	repo rep.Storage
}

func NewDirectoryService(repo rep.Storage) *DirectoryService {
	return &DirectoryService{repo: repo}
}

func (s *DirectoryService) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение пользователей: %w", err)
	}
	return users, nil
}

func (s *DirectoryService) GetUser(ctx context.Context, username string) (*models.User, error) {
	username = models.NormalizeHandle(username)
	user, err := s.repo.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound("пользователь", username)
		}
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	return user, nil
}

func (s *DirectoryService) UpsertUser(ctx context.Context, user *models.User) error {
	user.Username = models.NormalizeHandle(user.Username)
	if user.Username == "" {
		return NewValidationError("username", "имя пользователя не может быть пустым")
	}
	if err := s.repo.UpsertUser(ctx, user); err != nil {
		return fmt.Errorf("сохранение пользователя: %w", err)
	}
	logger.Info("Service: Пользователь сохранён", zap.String("username", user.Username))
	return nil
}

func (s *DirectoryService) DeleteUser(ctx context.Context, username string) error {
	username = models.NormalizeHandle(username)
	if err := s.repo.DeleteUser(ctx, username); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return NewNotFound("пользователь", username)
		}
		return fmt.Errorf("удаление пользователя: %w", err)
	}
	return nil
}

// RegisterChat запоминает личный чат пользователя для прямых уведомлений
func (s *DirectoryService) RegisterChat(ctx context.Context, username string, chatID int64) error {
	username = models.NormalizeHandle(username)
	if username == "" {
		return NewValidationError("username", "имя пользователя не может быть пустым")
	}
	if err := s.repo.SetChatID(ctx, username, chatID); err != nil {
		return fmt.Errorf("сохранение chat_id: %w", err)
	}
	return nil
}

func (s *DirectoryService) ListGroups(ctx context.Context) ([]*models.Group, error) {
	groups, err := s.repo.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение групп: %w", err)
	}
	return groups, nil
}

func (s *DirectoryService) UpsertGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		return NewValidationError("id", "идентификатор группы не может быть пустым")
	}
	if group.Name == "" {
		return NewValidationError("name", "название группы не может быть пустым")
	}
	if err := s.repo.UpsertGroup(ctx, group); err != nil {
		return fmt.Errorf("сохранение группы: %w", err)
	}
	logger.Info("Service: Группа сохранена", zap.String("group_id", group.ID))
	return nil
}

func (s *DirectoryService) GetConfig(ctx context.Context) (models.Config, error) {
	cfg, err := s.repo.GetConfig(ctx)
	if err != nil {
		return cfg, fmt.Errorf("получение конфигурации: %w", err)
	}
	return cfg, nil
}

func (s *DirectoryService) SetConfig(ctx context.Context, cfg models.Config) error {
	if err := s.repo.SetConfig(ctx, cfg); err != nil {
		return fmt.Errorf("сохранение конфигурации: %w", err)
	}
	logger.Info("Service: Флаги уведомлений обновлены",
		zap.Bool("task_created", cfg.TaskCreated),
		zap.Bool("task_completed", cfg.TaskCompleted),
		zap.Bool("task_deleted", cfg.TaskDeleted),
		zap.Bool("overdue_reminder", cfg.OverdueReminder),
	)
	return nil
}
