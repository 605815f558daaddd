package handlers

import (
	"context"
	"time"

	"taskReminder/internal/gateway"
	"taskReminder/internal/models/task"
)

type ChatGateway interface {
	OnAddCommand(userID int64) string
	OnListCommand(ctx context.Context, userID int64) ([]gateway.ListItem, string, error)
	OnEditAction(userID, taskID int64) string
	OnDeleteAction(ctx context.Context, userID, taskID int64) (string, error)
	OnRepeatAction(ctx context.Context, userID, taskID int64, interval task.Interval) (string, error)
	OnDueAction(ctx context.Context, userID, taskID int64, dueTime time.Time) (string, error)
	OnFreeText(ctx context.Context, userID int64, text string) (string, error)
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
