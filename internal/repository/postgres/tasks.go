package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"taskbot/internal/logger"
	"taskbot/internal/models"
	repo "taskbot/internal/repository"
)

const taskColumns = `t.id, t.group_task_id, t.assigned_to, t.assigned_by, t.status,
		t.created_at, t.completed_at, tg.task_text, tg.deadline, tg.group_id`

func scanTask(row pgx.Row) (*models.Task, error) {
	t := &models.Task{}
	err := row.Scan(
		&t.ID,
		&t.GroupTaskID,
		&t.AssignedTo,
		&t.AssignedBy,
		&t.Status,
		&t.CreatedAt,
		&t.CompletedAt,
		&t.TaskText,
		&t.Deadline,
		&t.GroupID,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Storage) CreateTaskGroup(ctx context.Context, tg *models.TaskGroup, assignees []string, assignedBy string) ([]*models.Task, error) {
	start := time.Now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		logger.Error("Repository: Не удалось открыть транзакцию", err)
		return nil, fmt.Errorf("открытие транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `SELECT COALESCE(MAX(group_task_id), 0) + 1 FROM task_groups`).Scan(&tg.GroupTaskID)
	if err != nil {
		logger.Error("Repository: Не удалось получить номер группы", err)
		return nil, fmt.Errorf("номер групповой задачи: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO task_groups (group_task_id, task_text, deadline, group_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		tg.GroupTaskID, tg.TaskText, tg.Deadline, tg.GroupID, tg.CreatedAt,
	)
	if err != nil {
		logger.Error("Repository: Не удалось создать групповую задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("создание групповой задачи: %w", err)
	}

	tasks, err := insertTasks(ctx, tx, tg, assignees, assignedBy, tg.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Error("Repository: Не удалось зафиксировать транзакцию", err)
		return nil, fmt.Errorf("фиксация транзакции: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return tasks, nil
}

func insertTasks(ctx context.Context, tx pgx.Tx, tg *models.TaskGroup, assignees []string, assignedBy, now string) ([]*models.Task, error) {
	tasks := make([]*models.Task, 0, len(assignees))
	for _, assignee := range assignees {
		var id int64
		err := tx.QueryRow(ctx, `
			INSERT INTO tasks (group_task_id, assigned_to, assigned_by, status, created_at, completed_at)
			VALUES ($1, $2, $3, $4, $5, '')
			RETURNING id`,
			tg.GroupTaskID, assignee, assignedBy, models.StatusActive, now,
		).Scan(&id)
		if err != nil {
			logger.Error("Repository: Не удалось добавить задачу", err)
			return nil, fmt.Errorf("добавление задачи: %w", err)
		}
		tasks = append(tasks, &models.Task{
			ID:          id,
			GroupTaskID: tg.GroupTaskID,
			AssignedTo:  assignee,
			AssignedBy:  assignedBy,
			Status:      models.StatusActive,
			CreatedAt:   now,
			TaskText:    tg.TaskText,
			Deadline:    tg.Deadline,
			GroupID:     tg.GroupID,
		})
	}
	return tasks, nil
}

func (s *Storage) AddAssignees(ctx context.Context, groupTaskID int64, assignees []string, assignedBy string) ([]*models.Task, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("открытие транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	tg := &models.TaskGroup{}
	err = tx.QueryRow(ctx, `
		SELECT group_task_id, task_text, deadline, group_id, created_at
		FROM task_groups WHERE group_task_id = $1`, groupTaskID,
	).Scan(&tg.GroupTaskID, &tg.TaskText, &tg.Deadline, &tg.GroupID, &tg.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить групповую задачу", err)
		return nil, fmt.Errorf("получение групповой задачи: %w", err)
	}

	now := models.FormatTimestamp(time.Now())
	tasks, err := insertTasks(ctx, tx, tg, assignees, assignedBy, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("фиксация транзакции: %w", err)
	}
	return tasks, nil
}

func (s *Storage) GetTaskGroup(ctx context.Context, groupTaskID int64) (*models.TaskGroup, error) {
	tg := &models.TaskGroup{}
	err := s.pool.QueryRow(ctx, `
		SELECT group_task_id, task_text, deadline, group_id, created_at
		FROM task_groups WHERE group_task_id = $1`, groupTaskID,
	).Scan(&tg.GroupTaskID, &tg.TaskText, &tg.Deadline, &tg.GroupID, &tg.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить групповую задачу", err)
		return nil, fmt.Errorf("получение групповой задачи: %w", err)
	}
	return tg, nil
}

func (s *Storage) UpdateTaskGroup(ctx context.Context, tg *models.TaskGroup) error {
	res, err := s.pool.Exec(ctx, `
		UPDATE task_groups
		SET task_text = $1, deadline = $2, group_id = $3
		WHERE group_task_id = $4`,
		tg.TaskText, tg.Deadline, tg.GroupID, tg.GroupTaskID,
	)
	if err != nil {
		logger.Error("Repository: Не удалось обновить групповую задачу", err)
		return fmt.Errorf("обновление групповой задачи: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Storage) DeleteTaskGroup(ctx context.Context, groupTaskID int64) error {
	res, err := s.pool.Exec(ctx, `DELETE FROM task_groups WHERE group_task_id = $1`, groupTaskID)
	if err != nil {
		logger.Error("Repository: Не удалось удалить групповую задачу", err)
		return fmt.Errorf("удаление групповой задачи: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Storage) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks t
		JOIN task_groups tg ON t.group_task_id = tg.group_task_id
		WHERE t.id = $1`, id)

	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err)
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return task, nil
}

func (s *Storage) ListTasks(ctx context.Context, filter models.TaskFilter) ([]*models.Task, error) {
	start := time.Now()

	query := `
		SELECT ` + taskColumns + `
		FROM tasks t
		JOIN task_groups tg ON t.group_task_id = tg.group_task_id
		WHERE 1=1`
	args := []any{}

	if filter.AssignedTo != "" {
		args = append(args, filter.AssignedTo)
		query += fmt.Sprintf(` AND t.assigned_to = $%d`, len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(` AND t.status = $%d`, len(args))
	}
	if filter.GroupTaskID != 0 {
		args = append(args, filter.GroupTaskID)
		query += fmt.Sprintf(` AND t.group_task_id = $%d`, len(args))
	}
	query += ` ORDER BY t.id`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	now := time.Now()
	tasks := []*models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			logger.Warn("Repository: Ошибка сканирования задачи", zap.Error(err))
			continue
		}
		if filter.OverdueOnly && !task.IsOverdue(now) {
			continue
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return tasks, nil
}

func (s *Storage) SetTaskStatus(ctx context.Context, id int64, status models.Status, completedAt string) (*models.Task, error) {
	res, err := s.pool.Exec(ctx, `
		UPDATE tasks SET status = $1, completed_at = $2 WHERE id = $3`,
		status, completedAt, id,
	)
	if err != nil {
		logger.Error("Repository: Не удалось обновить статус задачи", err)
		return nil, fmt.Errorf("обновление статуса: %w", err)
	}
	if res.RowsAffected() == 0 {
		return nil, repo.ErrNotFound
	}
	return s.GetTask(ctx, id)
}

func (s *Storage) DeleteTask(ctx context.Context, id int64) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("открытие транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var groupTaskID int64
	err = tx.QueryRow(ctx, `SELECT group_task_id FROM tasks WHERE id = $1`, id).Scan(&groupTaskID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, repo.ErrNotFound
		}
		return 0, fmt.Errorf("получение задачи: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id); err != nil {
		logger.Error("Repository: Не удалось удалить задачу", err)
		return 0, fmt.Errorf("удаление задачи: %w", err)
	}

	var remaining int
	err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE group_task_id = $1`, groupTaskID).Scan(&remaining)
	if err != nil {
		return 0, fmt.Errorf("подсчёт оставшихся задач: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("фиксация транзакции: %w", err)
	}
	return remaining, nil
}

func (s *Storage) ListDueReminders(ctx context.Context, today string, limit int) ([]*models.Task, error) {
	// Дедлайны хранятся текстом, поэтому просроченность проверяется в Go.
	// LIMIT в SQL здесь нельзя: активные непросроченные задачи заняли бы
	// всё окно и просроченные за ними никогда не получили бы напоминания.
	rows, err := s.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks t
		JOIN task_groups tg ON t.group_task_id = tg.group_task_id
		WHERE t.status = $1 AND t.reminded_on != $2
		ORDER BY t.id`,
		models.StatusActive, today,
	)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи для напоминаний", err)
		return nil, fmt.Errorf("получение задач для напоминаний: %w", err)
	}
	defer rows.Close()

	now := time.Now()
	tasks := []*models.Task{}
	for rows.Next() {
		if len(tasks) >= limit {
			break
		}
		task, err := scanTask(rows)
		if err != nil {
			logger.Warn("Repository: Ошибка сканирования задачи", zap.Error(err))
			continue
		}
		if task.IsOverdue(now) {
			tasks = append(tasks, task)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}
	return tasks, nil
}

func (s *Storage) MarkReminded(ctx context.Context, id int64, today string) error {
	_, err := s.pool.Exec(ctx, `UPDATE tasks SET reminded_on = $1 WHERE id = $2`, today, id)
	if err != nil {
		logger.Error("Repository: Не удалось отметить напоминание", err)
		return fmt.Errorf("отметка напоминания: %w", err)
	}
	return nil
}
