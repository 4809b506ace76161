package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"taskbot/internal/logger"
	"taskbot/internal/models"
	repo "taskbot/internal/repository"
)

func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT u.username, u.full_name, u.chat_id, ug.group_id
		FROM users u
		LEFT JOIN user_groups ug ON u.username = ug.username
		ORDER BY u.username`)
	if err != nil {
		logger.Error("Repository: Не удалось получить пользователей", err)
		return nil, fmt.Errorf("получение пользователей: %w", err)
	}
	defer rows.Close()

	byName := map[string]*models.User{}
	order := []*models.User{}
	for rows.Next() {
		var (
			username, fullName string
			chatID             int64
			groupID            sql.NullString
		)
		if err := rows.Scan(&username, &fullName, &chatID, &groupID); err != nil {
			logger.Warn("Repository: Ошибка сканирования пользователя", zap.Error(err))
			continue
		}
		u, ok := byName[username]
		if !ok {
			u = &models.User{Username: username, FullName: fullName, ChatID: chatID, Groups: []string{}}
			byName[username] = u
			order = append(order, u)
		}
		if groupID.Valid && groupID.String != "" {
			u.Groups = append(u.Groups, groupID.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}
	return order, nil
}

func (s *Storage) GetUser(ctx context.Context, username string) (*models.User, error) {
	u := &models.User{Username: username, Groups: []string{}}
	err := s.pool.QueryRow(ctx,
		`SELECT full_name, chat_id FROM users WHERE username = $1`, username,
	).Scan(&u.FullName, &u.ChatID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить пользователя", err)
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT group_id FROM user_groups WHERE username = $1 ORDER BY group_id`, username)
	if err != nil {
		return nil, fmt.Errorf("получение групп пользователя: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, fmt.Errorf("сканирование группы: %w", err)
		}
		u.Groups = append(u.Groups, g)
	}
	return u, rows.Err()
}

func (s *Storage) UpsertUser(ctx context.Context, user *models.User) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("открытие транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO users (username, full_name, chat_id) VALUES ($1, $2, $3)
		ON CONFLICT (username) DO UPDATE SET full_name = excluded.full_name`,
		user.Username, user.FullName, user.ChatID,
	)
	if err != nil {
		logger.Error("Repository: Не удалось сохранить пользователя", err)
		return fmt.Errorf("сохранение пользователя: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM user_groups WHERE username = $1`, user.Username); err != nil {
		return fmt.Errorf("очистка членства: %w", err)
	}
	for _, groupID := range user.Groups {
		if _, err := tx.Exec(ctx,
			`INSERT INTO user_groups (username, group_id) VALUES ($1, $2)`,
			user.Username, groupID,
		); err != nil {
			logger.Error("Repository: Не удалось сохранить членство", err)
			return fmt.Errorf("сохранение членства: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (s *Storage) DeleteUser(ctx context.Context, username string) error {
	res, err := s.pool.Exec(ctx, `DELETE FROM users WHERE username = $1`, username)
	if err != nil {
		logger.Error("Repository: Не удалось удалить пользователя", err)
		return fmt.Errorf("удаление пользователя: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Storage) SetChatID(ctx context.Context, username string, chatID int64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (username, full_name, chat_id) VALUES ($1, '', $2)
		ON CONFLICT (username) DO UPDATE SET chat_id = excluded.chat_id`,
		username, chatID,
	)
	if err != nil {
		logger.Error("Repository: Не удалось сохранить chat_id", err)
		return fmt.Errorf("сохранение chat_id: %w", err)
	}
	return nil
}

func (s *Storage) ListGroups(ctx context.Context) ([]*models.Group, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM groups ORDER BY name`)
	if err != nil {
		logger.Error("Repository: Не удалось получить группы", err)
		return nil, fmt.Errorf("получение групп: %w", err)
	}
	defer rows.Close()

	groups := []*models.Group{}
	for rows.Next() {
		g := &models.Group{}
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			logger.Warn("Repository: Ошибка сканирования группы", zap.Error(err))
			continue
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (s *Storage) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	g := &models.Group{ID: id}
	err := s.pool.QueryRow(ctx, `SELECT name FROM groups WHERE id = $1`, id).Scan(&g.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("получение группы: %w", err)
	}
	return g, nil
}

func (s *Storage) UpsertGroup(ctx context.Context, group *models.Group) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO groups (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name`,
		group.ID, group.Name,
	)
	if err != nil {
		logger.Error("Repository: Не удалось сохранить группу", err)
		return fmt.Errorf("сохранение группы: %w", err)
	}
	return nil
}
