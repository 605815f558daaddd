package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskReminder/internal/conversation"
	"taskReminder/internal/logger"
	"taskReminder/internal/models/task"

	"go.uber.org/zap"
)

// Gateway — внутренняя граница с чат-адаптером: команды и нажатия кнопок
// заходят сюда, наружу уходят готовые строки ответов

var ErrNoPendingPrompt = errors.New("сообщение не является ответом на запрос")

const msgAddPrompt = "✏ Введите текст задачи:"
const msgEditPrompt = "✏ Введите новый текст задачи:"
const msgTaskAdded = "✅ Задача добавлена!"
const msgTaskUpdated = "✅ Задача обновлена!"
const msgTaskDeleted = "✅ Задача удалена!"
const msgNothingToDelete = "📭 Нечего удалять."
const msgNoTasks = "📭 Нет задач."
const msgDueSet = "✅ Дедлайн установлен!"

type TaskService interface {
	CreateTask(ctx context.Context, userID int64, text string) (*task.Task, error)
	ListTasks(ctx context.Context, userID int64) ([]*task.Task, error)
	EditTaskText(ctx context.Context, userID, taskID int64, newText string) error
	DeleteTask(ctx context.Context, userID, taskID int64) (bool, error)
	SetRepeat(ctx context.Context, userID, taskID int64, interval task.Interval) error
	SetDueTime(ctx context.Context, userID, taskID int64, dueTime time.Time) error
}

type Gateway struct {
	service TaskService
	tracker *conversation.Tracker
}

func New(service TaskService, tracker *conversation.Tracker) *Gateway {
	return &Gateway{
		service: service,
		tracker: tracker,
	}
}

// элемент списка для отрисовки адаптером, вместе с кнопками действий
type ListItem struct {
	TaskID int64  `json:"task_id"`
	Text   string `json:"text"`
}

func (g *Gateway) OnAddCommand(userID int64) string {
	g.tracker.IssuePrompt(userID, conversation.Prompt{Kind: conversation.KindNewTask})
	return msgAddPrompt
}

func (g *Gateway) OnListCommand(ctx context.Context, userID int64) ([]ListItem, string, error) {
	tasks, err := g.service.ListTasks(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	if len(tasks) == 0 {
		return []ListItem{}, msgNoTasks, nil
	}

	items := make([]ListItem, len(tasks))
	for i, t := range tasks {
		items[i] = ListItem{TaskID: t.ID, Text: t.Text}
	}
	return items, "", nil
}

func (g *Gateway) OnEditAction(userID, taskID int64) string {
	g.tracker.IssuePrompt(userID, conversation.Prompt{
		Kind:   conversation.KindEditText,
		TaskID: taskID,
	})
	return msgEditPrompt
}

func (g *Gateway) OnDeleteAction(ctx context.Context, userID, taskID int64) (string, error) {
	removed, err := g.service.DeleteTask(ctx, userID, taskID)
	if err != nil {
		return "", err
	}
	if !removed {
		return msgNothingToDelete, nil
	}
	return msgTaskDeleted, nil
}

func (g *Gateway) OnRepeatAction(ctx context.Context, userID, taskID int64, interval task.Interval) (string, error) {
	if err := g.service.SetRepeat(ctx, userID, taskID, interval); err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Задача будет повторяться: %s!", interval), nil
}

func (g *Gateway) OnDueAction(ctx context.Context, userID, taskID int64, dueTime time.Time) (string, error) {
	if err := g.service.SetDueTime(ctx, userID, taskID, dueTime); err != nil {
		return "", err
	}
	return msgDueSet, nil
}

// OnFreeText закрывает ожидание ровно один раз: текст без ожидания — не ответ
func (g *Gateway) OnFreeText(ctx context.Context, userID int64, text string) (string, error) {
	prompt, ok := g.tracker.Resolve(userID)
	if !ok {
		return "", ErrNoPendingPrompt
	}

	switch prompt.Kind {
	case conversation.KindNewTask:
		if _, err := g.service.CreateTask(ctx, userID, text); err != nil {
			return "", err
		}
		return msgTaskAdded, nil

	case conversation.KindEditText:
		if err := g.service.EditTaskText(ctx, userID, prompt.TaskID, text); err != nil {
			return "", err
		}
		return msgTaskUpdated, nil

	default:
		logger.Warn("Gateway: Неизвестный тип ожидания",
			zap.Int64("user_id", userID),
			zap.String("kind", string(prompt.Kind)))
		return "", ErrNoPendingPrompt
	}
}
