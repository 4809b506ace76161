package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"taskbot/internal/access"
	"taskbot/internal/config"
	"taskbot/internal/handlers"
	"taskbot/internal/logger"
	"taskbot/internal/middleware"
	"taskbot/internal/notify"
	rep "taskbot/internal/repository"
	"taskbot/internal/repository/inmemory"
	"taskbot/internal/repository/postgres"
	"taskbot/internal/repository/sqlite"
	"taskbot/internal/service"
	"taskbot/internal/telegram"
	"taskbot/internal/worker"
)

type App struct {
	config    *config.Config
	server    *http.Server
	storage   rep.Storage
	acl       *access.FileStore
	tasks     *service.TaskService
	directory *service.DirectoryService
	worker    *worker.OverdueWorker
	bot       *tgbotapi.BotAPI
	botRouter *telegram.Router
	shutdowns []func() // функции для graceful shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	storage, err := a.openStorage(ctx)
	if err != nil {
		return fmt.Errorf("инициализация хранилища: %w", err)
	}
	a.storage = storage
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Закрытие хранилища...")
		storage.Close()
	})

	a.acl, err = access.NewFileStore(a.config.Access.File)
	if err != nil {
		return fmt.Errorf("загрузка списков доступа: %w", err)
	}

	a.directory = service.NewDirectoryService(a.storage)

	// бот опционален: без токена остаются HTTP API и worker
	var sender notify.Sender = notify.NopSender{}
	if a.config.Telegram.Token != "" {
		bot, err := tgbotapi.NewBotAPI(a.config.Telegram.Token)
		if err != nil {
			return fmt.Errorf("подключение к Telegram: %w", err)
		}
		bot.Debug = a.config.Telegram.Debug
		a.bot = bot
		sender = telegram.NewBotSender(bot)
		logger.Info("Бот авторизован", zap.String("username", bot.Self.UserName))
	}

	dispatcher := notify.NewDispatcher(a.storage, sender)
	a.tasks = service.NewTaskService(a.storage, dispatcher)

	if a.bot != nil {
		a.botRouter = telegram.NewRouter(a.bot, a.tasks, a.directory, a.acl)
	}

	a.worker = worker.NewOverdueWorker(a.storage, dispatcher, &a.config.Worker.Interval, &a.config.Worker.BatchSize)

	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      a.buildRouter(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	return nil
}

func (a *App) openStorage(ctx context.Context) (rep.Storage, error) {
	switch a.config.Repository.Type {
	case "postgres":
		st, err := postgres.New(ctx, a.config.Database.URL)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			return nil, err
		}
		return st, nil
	case "inmemory":
		return inmemory.New(), nil
	default:
		return sqlite.New(ctx, a.config.Database.Path)
	}
}

func (a *App) buildRouter() *chi.Mux {
	taskHandler := handlers.NewTaskHandler(a.tasks)
	adminHandler := handlers.NewAdminHandler(a.directory, a.tasks)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.RateLimit(100))

	r.Route("/api/tasks", func(r chi.Router) {
		r.Get("/", taskHandler.ListTasks)
		r.Post("/", taskHandler.PostTaskGroup)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", taskHandler.GetTaskByID)
			r.Delete("/", taskHandler.DeleteTaskByID)
			r.Post("/complete", taskHandler.CompleteTask)
			r.Post("/reopen", taskHandler.ReopenTask)
		})
	})

	r.Route("/api/groups/{id}", func(r chi.Router) {
		r.Get("/", taskHandler.GetTaskGroupByID)
		r.Put("/", taskHandler.UpdateTaskGroupByID)
		r.Delete("/", taskHandler.DeleteTaskGroupByID)
		r.Post("/assignees", taskHandler.AddAssignees)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.AdminOnly(a.acl))

		r.Get("/users", adminHandler.ListUsers)
		r.Put("/users/{username}", adminHandler.UpsertUser)
		r.Delete("/users/{username}", adminHandler.DeleteUser)

		r.Get("/groups", adminHandler.ListGroups)
		r.Put("/groups/{id}", adminHandler.UpsertGroup)

		r.Get("/config", adminHandler.GetConfig)
		r.Put("/config", adminHandler.UpdateConfig)

		r.Get("/stats", adminHandler.GetStats)
	})

	r.Get("/health", taskHandler.HealthCheck)

	return r
}

func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("HTTP сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Ошибка HTTP сервера", err)
		}
	}()

	go a.worker.Start(ctx)

	var updates tgbotapi.UpdatesChannel
	if a.bot != nil {
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 30
		updates = a.bot.GetUpdatesChan(u)
		logger.Info("Бот начал опрос обновлений")
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("Получен сигнал завершения")
			a.Shutdown()
			return nil
		case upd := <-updates:
			a.botRouter.HandleUpdate(ctx, upd)
		}
	}
}

func (a *App) Shutdown() {
	if a.bot != nil {
		a.bot.StopReceivingUpdates()
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := a.server.Shutdown(shCtx); err != nil {
		logger.Warn("Ошибка остановки HTTP сервера", zap.Error(err))
	}
	cancel()

	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
}
