package service

import "taskbot/internal/models"

// TaskGroupOption — функция частичного обновления групповой задачи
type TaskGroupOption func(*models.TaskGroup)

func WithTaskText(text string) TaskGroupOption {
	if text == "" {
		return nil
	}
	return func(tg *models.TaskGroup) {
		tg.TaskText = text
	}
}

func WithDeadline(deadline string) TaskGroupOption {
	if deadline == "" {
		return nil
	}
	return func(tg *models.TaskGroup) {
		tg.Deadline = deadline
	}
}

func WithGroupID(groupID string) TaskGroupOption {
	if groupID == "" {
		return nil
	}
	return func(tg *models.TaskGroup) {
		tg.GroupID = groupID
	}
}
