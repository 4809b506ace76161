package sqlite

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"taskbot/internal/logger"
	"taskbot/internal/models"
)

func parseBool(s string) bool {
	switch s {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}

func formatBool(b bool) string {
	return strconv.FormatBool(b)
}

// GetConfig читает флаги уведомлений, отсутствующие ключи остаются включёнными
func (s *Storage) GetConfig(ctx context.Context) (models.Config, error) {
	cfg := models.DefaultConfig()

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM config`)
	if err != nil {
		logger.Error("Repository: Не удалось получить конфигурацию", err)
		return cfg, fmt.Errorf("получение конфигурации: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			logger.Warn("Repository: Ошибка сканирования конфигурации", zap.Error(err))
			continue
		}
		switch models.Event(key) {
		case models.EventTaskCreated:
			cfg.TaskCreated = parseBool(value)
		case models.EventTaskCompleted:
			cfg.TaskCompleted = parseBool(value)
		case models.EventTaskDeleted:
			cfg.TaskDeleted = parseBool(value)
		case models.EventOverdueReminder:
			cfg.OverdueReminder = parseBool(value)
		}
	}
	return cfg, rows.Err()
}

func (s *Storage) SetConfig(ctx context.Context, cfg models.Config) error {
	pairs := map[models.Event]bool{
		models.EventTaskCreated:     cfg.TaskCreated,
		models.EventTaskCompleted:   cfg.TaskCompleted,
		models.EventTaskDeleted:     cfg.TaskDeleted,
		models.EventOverdueReminder: cfg.OverdueReminder,
	}
	for key, val := range pairs {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO config (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			string(key), formatBool(val),
		)
		if err != nil {
			logger.Error("Repository: Не удалось сохранить конфигурацию", err)
			return fmt.Errorf("сохранение конфигурации: %w", err)
		}
	}
	return nil
}

func (s *Storage) GetStats(ctx context.Context) (*models.Stats, error) {
	start := time.Now()
	stats := &models.Stats{}

	counts := []struct {
		query string
		dst   *int
	}{
		{`SELECT COUNT(*) FROM tasks`, &stats.TotalTasks},
		{`SELECT COUNT(*) FROM tasks WHERE status = 'active'`, &stats.ActiveTasks},
		{`SELECT COUNT(*) FROM tasks WHERE status = 'completed'`, &stats.CompletedTasks},
		{`SELECT COUNT(*) FROM users`, &stats.UsersCount},
		{`SELECT COUNT(*) FROM groups`, &stats.GroupsCount},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			logger.Error("Repository: Не удалось собрать статистику", err)
			return nil, fmt.Errorf("сбор статистики: %w", err)
		}
	}

	// просроченные считаются по дедлайнам активных задач
	rows, err := s.db.QueryContext(ctx, `
		SELECT tg.deadline
		FROM tasks t
		JOIN task_groups tg ON t.group_task_id = tg.group_task_id
		WHERE t.status = 'active'`)
	if err != nil {
		return nil, fmt.Errorf("получение дедлайнов: %w", err)
	}
	defer rows.Close()

	now := time.Now()
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	for rows.Next() {
		var deadline string
		if err := rows.Scan(&deadline); err != nil {
			continue
		}
		if parsed, err := models.ParseDeadline(deadline); err == nil && parsed.Before(today) {
			stats.OverdueTasks++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return stats, nil
}
