package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Logging    LoggingConfig    `yaml:"logging"`
	Repository RepositoryConfig `yaml:"repository"`
	Worker     WorkerConfig     `yaml:"worker"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Access     AccessConfig     `yaml:"access"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Host string `yaml:"host"`
}

type DatabaseConfig struct {
	// URL подключения postgres, либо путь к файлу sqlite
	URL            string        `yaml:"url"`
	Path           string        `yaml:"path"`
	MaxConnections int           `yaml:"max_connections"`
	MinConnections int           `yaml:"min_connections"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
}

type LoggingConfig struct {
	Development bool `yaml:"development"`
}

type RepositoryConfig struct {
	Type string `yaml:"type"` // "sqlite", "postgres" или "inmemory"
}

type WorkerConfig struct {
	Interval  time.Duration `yaml:"interval"`
	BatchSize int           `yaml:"batch_size"`
}

type TelegramConfig struct {
	Token string `yaml:"token"`
	Debug bool   `yaml:"debug"`
}

type AccessConfig struct {
	File string `yaml:"file"`
}

// Env — переопределения из окружения, секреты не хранятся в config.yml
type Env struct {
	BotToken    string `envconfig:"BOT_TOKEN"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	SqlitePath  string `envconfig:"SQLITE_PATH"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.yml"
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("не могу открыть %s: %w", path, err)
	}
	defer file.Close()

	var cfg Config
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга %s: %w", path, err)
	}

	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("ошибка чтения окружения: %w", err)
	}
	if env.BotToken != "" {
		cfg.Telegram.Token = env.BotToken
	}
	if env.DatabaseURL != "" {
		cfg.Database.URL = env.DatabaseURL
	}
	if env.SqlitePath != "" {
		cfg.Database.Path = env.SqlitePath
	}

	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Repository.Type == "" {
		c.Repository.Type = "sqlite"
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/taskbot.db"
	}
	if c.Worker.Interval <= 0 {
		c.Worker.Interval = 5 * time.Minute
	}
	if c.Worker.BatchSize <= 0 {
		c.Worker.BatchSize = 100
	}
	if c.Access.File == "" {
		c.Access.File = "access.yml"
	}
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
