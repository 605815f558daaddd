package task

import (
	"strings"
	"time"
)

// есть тип функции, которая возвращает тот-же объект
// грубо говоря это функция подтверждения обновления
type TaskOption func(*Task)

func WithText(text string) TaskOption {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return func(task *Task) {
		task.Text = text
	}
}

// дедлайн всегда храним с точностью до минуты,
// иначе минутный воркер никогда не попадёт в точное совпадение
func WithDueTime(dueTime time.Time) TaskOption {
	if dueTime.IsZero() {
		return nil
	}
	normalized := dueTime.Truncate(time.Minute)
	return func(task *Task) {
		task.DueTime = &normalized
	}
}

func WithRepeat(interval Interval) TaskOption {
	return func(task *Task) {
		task.Repeat = interval
	}
}
