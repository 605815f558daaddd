package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskReminder/internal/logger"
	"taskReminder/internal/models/task"
	repo "taskReminder/internal/repository"

	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики:
// владелец задачи, валидность текста и интервала

const taskResource = "задача"

type TaskService struct {
	repo TaskRepository
}

func NewTaskService(repo TaskRepository) TaskService {
	return TaskService{
		repo: repo,
	}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка здоровья сервиса: %w", err)
	}
	return nil
}

func (s *TaskService) CreateTask(ctx context.Context, userID int64, text string) (*task.Task, error) {
	if strings.TrimSpace(text) == "" {
		return nil, NewValidationError("text", "текст задачи не может быть пустым")
	}

	t := &task.Task{
		UserID: userID,
		Text:   text,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	logger.Info("Service: Задача создана",
		zap.Int64("task_id", t.ID),
		zap.Int64("user_id", userID))
	return t, nil
}

func (s *TaskService) ListTasks(ctx context.Context, userID int64) ([]*task.Task, error) {
	tasks, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}

	return tasks, nil
}

func (s *TaskService) EditTaskText(ctx context.Context, userID, taskID int64, newText string) error {
	if strings.TrimSpace(newText) == "" {
		return NewValidationError("text", "текст задачи не может быть пустым")
	}

	t, err := s.getOwned(ctx, userID, taskID)
	if err != nil {
		return err
	}

	if opt := task.WithText(newText); opt != nil {
		opt(t)
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return fmt.Errorf("обновление задачи: %w", err)
	}
	return nil
}

// отсутствие строки и чужая задача это разные исходы:
// первое отдаём как (false, nil), второе как NOT_FOUND
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID int64) (bool, error) {
	t, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("получение задачи: %w", err)
	}

	if t.UserID != userID {
		logger.Warn("Service: Попытка удалить чужую задачу",
			zap.Int64("task_id", taskID),
			zap.Int64("user_id", userID))
		return false, NewNotFound(taskResource, taskID)
	}

	removed, err := s.repo.Delete(ctx, taskID)
	if err != nil {
		return false, fmt.Errorf("удаление задачи: %w", err)
	}
	return removed, nil
}

func (s *TaskService) SetRepeat(ctx context.Context, userID, taskID int64, interval task.Interval) error {
	if !interval.IsSet() {
		return NewValidationError("repeat_interval", "интервал не задан")
	}
	if _, err := task.ParseInterval(string(interval)); err != nil {
		return NewValidationError("repeat_interval", err.Error())
	}

	t, err := s.getOwned(ctx, userID, taskID)
	if err != nil {
		return err
	}

	task.WithRepeat(interval)(t)

	if err := s.repo.Update(ctx, t); err != nil {
		return fmt.Errorf("обновление задачи: %w", err)
	}
	return nil
}

func (s *TaskService) SetDueTime(ctx context.Context, userID, taskID int64, dueTime time.Time) error {
	if dueTime.IsZero() {
		return NewValidationError("due_time", "дедлайн должен быть задан")
	}
	if time.Now().After(dueTime) {
		return NewValidationError("due_time", "дедлайн не может быть в прошлом")
	}

	t, err := s.getOwned(ctx, userID, taskID)
	if err != nil {
		return err
	}

	task.WithDueTime(dueTime)(t)

	if err := s.repo.Update(ctx, t); err != nil {
		return fmt.Errorf("обновление задачи: %w", err)
	}
	return nil
}

func (s *TaskService) getOwned(ctx context.Context, userID, taskID int64) (*task.Task, error) {
	t, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.Int64("task_id", taskID))
			return nil, NewNotFound(taskResource, taskID)
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	if t.UserID != userID {
		logger.Warn("Service: Попытка доступа к чужой задаче",
			zap.Int64("task_id", taskID),
			zap.Int64("user_id", userID),
			zap.Int64("owner_id", t.UserID))
		return nil, NewNotFound(taskResource, taskID)
	}

	return t, nil
}
