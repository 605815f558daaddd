package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskReminder/internal/logger"
	"taskReminder/internal/models/task"
	"taskReminder/internal/service"

	"go.uber.org/zap"
)

// DailyWorker срабатывает раз в сутки в заданный час и гонит два канала
// уведомлений: повторяющиеся задачи по их интервалу и общий дайджест.
// Хранилище воркер только читает.
type DailyWorker struct {
	repo       service.TaskRepository
	notifier   Notifier
	hour       int
	recurrence bool
	digest     bool
}

func NewDailyWorker(repo service.TaskRepository, notifier Notifier, hour *int, recurrence, digest bool) *DailyWorker {
	var hourToSet int
	if hour == nil {
		hourToSet = 6
	} else {
		hourToSet = *hour
	}

	return &DailyWorker{
		repo:       repo,
		notifier:   notifier,
		hour:       hourToSet,
		recurrence: recurrence,
		digest:     digest,
	}
}

func (w *DailyWorker) Start(ctx context.Context) {
	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), w.hour, 0, 0, 0, now.Location())
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}

		timer := time.NewTimer(next.Sub(now))

		select {
		case <-timer.C:
			logger.Info("Worker: Утренняя рассылка напоминаний", zap.Time("started_at", time.Now()))
			w.Check(ctx, time.Now())
		case <-ctx.Done():
			timer.Stop()
			logger.Info("Worker: Утренняя рассылка останавливается")
			return
		}
	}
}

// Check выполняет один проход рассылки. Ошибка одной задачи не должна
// глушить остальные уведомления и тем более будущие проходы.
func (w *DailyWorker) Check(ctx context.Context, now time.Time) {
	start := time.Now()
	sent := 0

	if w.recurrence {
		sent += w.sendRecurring(ctx, now)
	}
	if w.digest {
		sent += w.sendDigests(ctx)
	}

	logger.Info("Worker: Завершение утренней рассылки",
		zap.Duration("ms", time.Since(start)),
		zap.Int("sent", sent),
	)
}

func (w *DailyWorker) sendRecurring(ctx context.Context, now time.Time) int {
	tasks, err := w.repo.GetRepeating(ctx)
	if err != nil {
		logger.Warn("Worker: ошибка получения повторяющихся задач", zap.Error(err))
		return 0
	}

	sent := 0
	for _, t := range tasks {
		if !dueToday(t.Repeat, now) {
			continue
		}

		message := fmt.Sprintf("🔄 Напоминание о повторяющейся задаче: %s", t.Text)
		if err := w.notifier.Notify(ctx, t.UserID, message); err != nil {
			logger.Warn("Worker: Ошибка отправки напоминания",
				zap.Error(err),
				zap.Int64("task_id", t.ID),
				zap.Int64("user_id", t.UserID))
			continue
		}
		sent++
	}
	return sent
}

// daily — каждый день, weekly — только понедельник, monthly — только 1 число
func dueToday(interval task.Interval, now time.Time) bool {
	switch interval {
	case task.IntervalDaily:
		return true
	case task.IntervalWeekly:
		return now.Weekday() == time.Monday
	case task.IntervalMonthly:
		return now.Day() == 1
	default:
		return false
	}
}

func (w *DailyWorker) sendDigests(ctx context.Context) int {
	tasks, err := w.repo.GetAll(ctx)
	if err != nil {
		logger.Warn("Worker: ошибка получения задач для дайджеста", zap.Error(err))
		return 0
	}

	// группировка по владельцу, порядок пользователей — по первой задаче
	byUser := make(map[int64][]*task.Task)
	order := []int64{}
	for _, t := range tasks {
		if _, ok := byUser[t.UserID]; !ok {
			order = append(order, t.UserID)
		}
		byUser[t.UserID] = append(byUser[t.UserID], t)
	}

	sent := 0
	for _, userID := range order {
		var b strings.Builder
		b.WriteString("📋 Ваши задачи на сегодня:")
		for _, t := range byUser[userID] {
			b.WriteString("\n• ")
			b.WriteString(t.Text)
		}

		if err := w.notifier.Notify(ctx, userID, b.String()); err != nil {
			logger.Warn("Worker: Ошибка отправки дайджеста",
				zap.Error(err),
				zap.Int64("user_id", userID))
			continue
		}
		sent++
	}
	return sent
}
