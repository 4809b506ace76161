package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// регистрирует драйвер "sqlite" (чистый Go, без cgo)
	_ "modernc.org/sqlite"

	"taskbot/internal/logger"
)

type Storage struct {
	db *sql.DB
}

// New открывает (или создаёт) базу SQLite, применяет PRAGMA и миграции
func New(ctx context.Context, path string) (*Storage, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("создание каталога базы: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		logger.Error("Repository: Ошибка открытия SQLite", err)
		return nil, fmt.Errorf("открытие базы: %w", err)
	}

	// SQLite — однописательный движок, пул больше одного соединения не нужен
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		logger.Error("Repository: Ошибка применения PRAGMA", err)
		return nil, fmt.Errorf("применение pragma: %w", err)
	}

	s := &Storage{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		logger.Error("Repository: Ошибка миграций", err)
		return nil, fmt.Errorf("миграции: %w", err)
	}

	logger.Info("Repository: Успешное подключение к SQLite")
	return s, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	username  TEXT PRIMARY KEY,
	full_name TEXT NOT NULL DEFAULT '',
	chat_id   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS groups (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS user_groups (
	username TEXT NOT NULL REFERENCES users(username) ON DELETE CASCADE,
	group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
	PRIMARY KEY (username, group_id)
);

CREATE TABLE IF NOT EXISTS config (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS task_groups (
	group_task_id INTEGER PRIMARY KEY,
	task_text     TEXT NOT NULL,
	deadline      TEXT NOT NULL,
	group_id      TEXT NOT NULL,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	group_task_id INTEGER NOT NULL REFERENCES task_groups(group_task_id) ON DELETE CASCADE,
	assigned_to   TEXT NOT NULL,
	assigned_by   TEXT NOT NULL,
	status        TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	completed_at  TEXT NOT NULL DEFAULT '',
	reminded_on   TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_tasks_group ON tasks(group_task_id);
CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assigned_to);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
`

func (s *Storage) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Close() error {
	logger.Info("Repository: Закрытие соединения SQLite")
	return s.db.Close()
}
