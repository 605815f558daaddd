package service

import (
	"context"
	"time"

	"taskReminder/internal/models/task"
)

type TaskRepository interface {
	Create(context.Context, *task.Task) error
	Update(context.Context, *task.Task) error
	GetByID(context.Context, int64) (*task.Task, error)
	GetByUser(context.Context, int64) ([]*task.Task, error)
	Delete(context.Context, int64) (bool, error)
	GetRepeating(context.Context) ([]*task.Task, error)
	GetAll(context.Context) ([]*task.Task, error)
	GetDueBetween(context.Context, time.Time, time.Time) ([]*task.Task, error)
	HealthCheck(context.Context) error
}
