package worker_test

import (
	"context"
	"testing"
	"time"

	"taskReminder/internal/models/task"
	"taskReminder/internal/repository/task/inmemory"
	"taskReminder/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDueSoonWorker_ExactMinute тестирует попадание ровно в один тик
func TestDueSoonWorker_ExactMinute(t *testing.T) {
	now := time.Date(2024, 6, 4, 12, 0, 0, 0, time.UTC)
	due := now.Add(15 * time.Minute)

	storage := inmemory.NewTaskStorage()
	seedTask(t, storage, 42, "Meeting", task.WithDueTime(due))

	notifier := newRecordingNotifier()
	w := worker.NewDueSoonWorker(storage, notifier, nil, nil)

	// тики до и после целевой минуты молчат
	w.Check(context.Background(), now.Add(-time.Minute))
	w.Check(context.Background(), now.Add(time.Minute))
	assert.Empty(t, notifier.all())

	w.Check(context.Background(), now)

	sent := notifier.all()
	require.Len(t, sent, 1)
	assert.Equal(t, int64(42), sent[0].userID)
	assert.Contains(t, sent[0].message, "Meeting")
	assert.Contains(t, sent[0].message, "15")
}

// TestDueSoonWorker_TickWithSeconds тестирует, что секунды в моменте тика
// не приводят к промаху
func TestDueSoonWorker_TickWithSeconds(t *testing.T) {
	now := time.Date(2024, 6, 4, 12, 0, 37, 0, time.UTC)
	due := time.Date(2024, 6, 4, 12, 15, 0, 0, time.UTC)

	storage := inmemory.NewTaskStorage()
	seedTask(t, storage, 42, "Meeting", task.WithDueTime(due))

	notifier := newRecordingNotifier()
	w := worker.NewDueSoonWorker(storage, notifier, nil, nil)

	w.Check(context.Background(), now)

	assert.Len(t, notifier.all(), 1)
}

// TestDueSoonWorker_AtMostOnce тестирует отсутствие дублей при повторном проходе
func TestDueSoonWorker_AtMostOnce(t *testing.T) {
	now := time.Date(2024, 6, 4, 12, 0, 0, 0, time.UTC)
	due := now.Add(15 * time.Minute)

	storage := inmemory.NewTaskStorage()
	seedTask(t, storage, 42, "Meeting", task.WithDueTime(due))

	notifier := newRecordingNotifier()
	w := worker.NewDueSoonWorker(storage, notifier, nil, nil)

	w.Check(context.Background(), now)
	w.Check(context.Background(), now)
	w.Check(context.Background(), now.Add(30*time.Second))

	assert.Len(t, notifier.all(), 1)
}

// TestDueSoonWorker_RetryAfterDeliveryFailure тестирует повтор на следующем
// тике, если доставка не удалась: отметка ставится только после успеха
func TestDueSoonWorker_RetryAfterDeliveryFailure(t *testing.T) {
	now := time.Date(2024, 6, 4, 12, 0, 0, 0, time.UTC)
	due := now.Add(15 * time.Minute)

	storage := inmemory.NewTaskStorage()
	seedTask(t, storage, 42, "Meeting", task.WithDueTime(due))

	notifier := newRecordingNotifier()
	notifier.failFor[42] = true

	w := worker.NewDueSoonWorker(storage, notifier, nil, nil)
	w.Check(context.Background(), now)
	assert.Empty(t, notifier.all())

	notifier.failFor[42] = false
	w.Check(context.Background(), now.Add(10*time.Second))

	assert.Len(t, notifier.all(), 1)
}

// TestDueSoonWorker_MovedDueTime тестирует повторное уведомление после
// переноса дедлайна
func TestDueSoonWorker_MovedDueTime(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 4, 12, 0, 0, 0, time.UTC)
	due := now.Add(15 * time.Minute)

	storage := inmemory.NewTaskStorage()
	created := seedTask(t, storage, 42, "Meeting", task.WithDueTime(due))

	notifier := newRecordingNotifier()
	w := worker.NewDueSoonWorker(storage, notifier, nil, nil)

	w.Check(ctx, now)
	require.Len(t, notifier.all(), 1)

	// задачу перенесли на час позже
	task.WithDueTime(due.Add(time.Hour))(created)
	require.NoError(t, storage.Update(ctx, created))

	w.Check(ctx, now.Add(time.Hour))

	assert.Len(t, notifier.all(), 2)
}

// TestDueSoonWorker_NoDueTime тестирует игнор задач без дедлайна
func TestDueSoonWorker_NoDueTime(t *testing.T) {
	now := time.Date(2024, 6, 4, 12, 0, 0, 0, time.UTC)

	storage := inmemory.NewTaskStorage()
	seedTask(t, storage, 42, "no deadline")

	notifier := newRecordingNotifier()
	w := worker.NewDueSoonWorker(storage, notifier, nil, nil)

	w.Check(context.Background(), now)

	assert.Empty(t, notifier.all())
}
