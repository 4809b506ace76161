package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"taskbot/internal/logger"
	"taskbot/internal/models"
	"taskbot/internal/notify"
	rep "taskbot/internal/repository"
)

// OverdueWorker периодически ищет просроченные активные задачи и шлёт
// напоминания через диспетчер. Не больше одного напоминания на задачу
// в календарный день: дата последнего напоминания хранится в задаче.
type OverdueWorker struct {
	repo       rep.Storage
	dispatcher *notify.Dispatcher
	interval   time.Duration
	batchSize  int
}

func NewOverdueWorker(repo rep.Storage, dispatcher *notify.Dispatcher, interval *time.Duration, batchSize *int) *OverdueWorker {
	var intervalToSet time.Duration
	if interval == nil {
		intervalToSet = 5 * time.Minute
	} else {
		intervalToSet = *interval
	}

	var batchToSet int
	if batchSize == nil {
		batchToSet = 100
	} else {
		batchToSet = *batchSize
	}
	return &OverdueWorker{
		repo:       repo,
		dispatcher: dispatcher,
		interval:   intervalToSet,
		batchSize:  batchToSet,
	}
}

func (w *OverdueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logger.Info("Worker: Фоновая проверка задач на просроченность", zap.Time("started_at", time.Now()))
			w.Check(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Фоновая проверка останавливается")
			return
		}
	}
}

func (w *OverdueWorker) Check(ctx context.Context) {
	start := time.Now()
	today := models.FormatDate(start)

	tasks, err := w.repo.ListDueReminders(ctx, today, w.batchSize)
	if err != nil {
		logger.Warn("Worker: Ошибка получения задач", zap.Error(err))
		return
	}

	remindedCount := 0
	for _, t := range tasks {
		// Отметка ставится только после реальной рассылки: если флаг
		// уведомлений выключен, задача останется в очереди на сегодня.
		if !w.dispatcher.OverdueReminder(ctx, t) {
			continue
		}
		if err := w.repo.MarkReminded(ctx, t.ID, today); err != nil {
			logger.Warn("Worker: Ошибка отметки напоминания", zap.Error(err), zap.Int64("task_id", t.ID))
			continue
		}
		remindedCount++
	}

	logger.Info(
		"Worker: Завершение проверки задач",
		zap.Duration("ms", time.Since(start)),
		zap.Int("checked", len(tasks)),
		zap.Int("reminded", remindedCount),
	)
}
