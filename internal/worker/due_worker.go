package worker

import (
	"context"
	"fmt"
	"time"

	"taskReminder/internal/logger"
	"taskReminder/internal/service"

	"go.uber.org/zap"
)

// DueSoonWorker раз в минуту ищет задачи, у которых дедлайн наступит
// через lookahead минут, и шлёт предупреждение. Совпадение ищем по
// полуинтервалу [цель, цель+минута), а не по точному равенству,
// чтобы не промахиваться из-за секунд в due_time.
type DueSoonWorker struct {
	repo      service.TaskRepository
	notifier  Notifier
	interval  time.Duration
	lookahead time.Duration

	// отметки об отправке: задача -> дедлайн, по которому уже уведомили
	sent map[int64]time.Time
}

func NewDueSoonWorker(repo service.TaskRepository, notifier Notifier, interval, lookahead *time.Duration) *DueSoonWorker {
	var intervalToSet time.Duration
	if interval == nil {
		intervalToSet = time.Minute
	} else {
		intervalToSet = *interval
	}

	var lookaheadToSet time.Duration
	if lookahead == nil {
		lookaheadToSet = 15 * time.Minute
	} else {
		lookaheadToSet = *lookahead
	}

	return &DueSoonWorker{
		repo:      repo,
		notifier:  notifier,
		interval:  intervalToSet,
		lookahead: lookaheadToSet,
		sent:      make(map[int64]time.Time),
	}
}

func (w *DueSoonWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Check(ctx, time.Now())
		case <-ctx.Done():
			logger.Info("Worker: Минутная проверка дедлайнов останавливается")
			return
		}
	}
}

// Check выполняет один проход. Повторный проход по тем же задачам и тому же
// дедлайну уведомление не дублирует.
func (w *DueSoonWorker) Check(ctx context.Context, now time.Time) {
	target := now.Truncate(time.Minute).Add(w.lookahead)

	tasks, err := w.repo.GetDueBetween(ctx, target, target.Add(time.Minute))
	if err != nil {
		logger.Warn("Worker: ошибка получения задач по дедлайну", zap.Error(err))
		return
	}

	for _, t := range tasks {
		if t.DueTime == nil {
			continue
		}
		if already, ok := w.sent[t.ID]; ok && already.Equal(*t.DueTime) {
			continue
		}

		message := fmt.Sprintf("⏳ Напоминание: %s начнётся через %d минут!", t.Text, int(w.lookahead.Minutes()))
		if err := w.notifier.Notify(ctx, t.UserID, message); err != nil {
			logger.Warn("Worker: Ошибка отправки напоминания о дедлайне",
				zap.Error(err),
				zap.Int64("task_id", t.ID),
				zap.Int64("user_id", t.UserID))
			continue
		}
		w.sent[t.ID] = *t.DueTime
	}

	w.prune(now)
}

// отметки по прошедшим дедлайнам больше не понадобятся
func (w *DueSoonWorker) prune(now time.Time) {
	for id, due := range w.sent {
		if due.Before(now) {
			delete(w.sent, id)
		}
	}
}
