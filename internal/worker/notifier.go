package worker

import "context"

// Notifier доставляет уведомление пользователю. Доставка для воркеров —
// выстрел без подтверждения: ошибку логируем, повторов нет.
type Notifier interface {
	Notify(ctx context.Context, userID int64, message string) error
}
