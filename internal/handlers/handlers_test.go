package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskReminder/internal/gateway"
	"taskReminder/internal/handlers"
	"taskReminder/internal/logger"
	"taskReminder/internal/models/task"
	"taskReminder/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.InitNop()
	m.Run()
}

// MockGateway - мок шлюза чата
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) OnAddCommand(userID int64) string {
	args := m.Called(userID)
	return args.String(0)
}

func (m *MockGateway) OnListCommand(ctx context.Context, userID int64) ([]gateway.ListItem, string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]gateway.ListItem), args.String(1), args.Error(2)
}

func (m *MockGateway) OnEditAction(userID, taskID int64) string {
	args := m.Called(userID, taskID)
	return args.String(0)
}

func (m *MockGateway) OnDeleteAction(ctx context.Context, userID, taskID int64) (string, error) {
	args := m.Called(ctx, userID, taskID)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) OnRepeatAction(ctx context.Context, userID, taskID int64, interval task.Interval) (string, error) {
	args := m.Called(ctx, userID, taskID, interval)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) OnDueAction(ctx context.Context, userID, taskID int64, dueTime time.Time) (string, error) {
	args := m.Called(ctx, userID, taskID, dueTime)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) OnFreeText(ctx context.Context, userID int64, text string) (string, error) {
	args := m.Called(ctx, userID, text)
	return args.String(0), args.Error(1)
}

var _ handlers.ChatGateway = (*MockGateway)(nil)

// MockHealth - мок проверки здоровья
type MockHealth struct {
	mock.Mock
}

func (m *MockHealth) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func newTestRouter(gw handlers.ChatGateway, health handlers.HealthChecker) *chi.Mux {
	handler := handlers.NewChatHandler(gw, health)

	r := chi.NewRouter()
	r.Route("/users/{userID}", func(r chi.Router) {
		r.Post("/commands/add", handler.AddCommand)
		r.Get("/tasks", handler.ListTasks)
		r.Post("/messages", handler.FreeText)

		r.Route("/tasks/{taskID}", func(r chi.Router) {
			r.Post("/edit", handler.EditAction)
			r.Delete("/", handler.DeleteAction)
			r.Post("/repeat", handler.RepeatAction)
			r.Post("/due", handler.DueAction)
		})
	})
	r.Get("/health", handler.HealthCheck)
	return r
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

// TestAddCommand тестирует команду добавления
func TestAddCommand(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockGw := new(MockGateway)
		mockGw.On("OnAddCommand", int64(42)).Return("✏ Введите текст задачи:")

		router := newTestRouter(mockGw, new(MockHealth))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users/42/commands/add", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "✏ Введите текст задачи:", body["reply"])
		mockGw.AssertExpectations(t)
	})

	t.Run("error - bad user id", func(t *testing.T) {
		router := newTestRouter(new(MockGateway), new(MockHealth))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users/abc/commands/add", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("error - non-positive user id", func(t *testing.T) {
		router := newTestRouter(new(MockGateway), new(MockHealth))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users/0/commands/add", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

// TestListTasks тестирует выдачу списка
func TestListTasks(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockGw := new(MockGateway)
		mockGw.On("OnListCommand", mock.Anything, int64(42)).Return([]gateway.ListItem{
			{TaskID: 1, Text: "Buy milk"},
			{TaskID: 2, Text: "Call mom"},
		}, "", nil)

		router := newTestRouter(mockGw, new(MockHealth))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/42/tasks", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		tasks := body["tasks"].([]any)
		assert.Len(t, tasks, 2)
		mockGw.AssertExpectations(t)
	})

	t.Run("error - gateway failed", func(t *testing.T) {
		mockGw := new(MockGateway)
		mockGw.On("OnListCommand", mock.Anything, int64(42)).Return(nil, "", assert.AnError)

		router := newTestRouter(mockGw, new(MockHealth))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/42/tasks", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

// TestFreeText тестирует обработку текстовых сообщений
func TestFreeText(t *testing.T) {
	t.Run("success - prompt resolved", func(t *testing.T) {
		mockGw := new(MockGateway)
		mockGw.On("OnFreeText", mock.Anything, int64(42), "Buy milk").Return("✅ Задача добавлена!", nil)

		router := newTestRouter(mockGw, new(MockHealth))
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/users/42/messages",
			bytes.NewBufferString(`{"text":"Buy milk"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "✅ Задача добавлена!", body["reply"])
		mockGw.AssertExpectations(t)
	})

	t.Run("success - not a reply, ignored", func(t *testing.T) {
		mockGw := new(MockGateway)
		mockGw.On("OnFreeText", mock.Anything, int64(42), "random").Return("", gateway.ErrNoPendingPrompt)

		router := newTestRouter(mockGw, new(MockHealth))
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/users/42/messages",
			bytes.NewBufferString(`{"text":"random"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["ignored"])
	})

	t.Run("error - validation error from service", func(t *testing.T) {
		mockGw := new(MockGateway)
		mockGw.On("OnFreeText", mock.Anything, int64(42), "").
			Return("", service.NewValidationError("text", "текст задачи не может быть пустым"))

		router := newTestRouter(mockGw, new(MockHealth))
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/users/42/messages",
			bytes.NewBufferString(`{"text":""}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "VALIDATION_ERROR", body["error"])
	})

	t.Run("error - wrong content type", func(t *testing.T) {
		router := newTestRouter(new(MockGateway), new(MockHealth))
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/users/42/messages",
			bytes.NewBufferString("Buy milk"))
		req.Header.Set("Content-Type", "text/plain")
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("error - broken json", func(t *testing.T) {
		router := newTestRouter(new(MockGateway), new(MockHealth))
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/users/42/messages",
			bytes.NewBufferString(`{"text":`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

// TestDeleteAction тестирует удаление
func TestDeleteAction(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockGw := new(MockGateway)
		mockGw.On("OnDeleteAction", mock.Anything, int64(42), int64(7)).Return("✅ Задача удалена!", nil)

		router := newTestRouter(mockGw, new(MockHealth))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/users/42/tasks/7", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		mockGw.AssertExpectations(t)
	})

	t.Run("error - foreign task maps to 404", func(t *testing.T) {
		mockGw := new(MockGateway)
		mockGw.On("OnDeleteAction", mock.Anything, int64(99), int64(7)).
			Return("", service.NewNotFound("задача", 7))

		router := newTestRouter(mockGw, new(MockHealth))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/users/99/tasks/7", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "NOT_FOUND", body["error"])
	})
}

// TestRepeatAction тестирует установку интервала
func TestRepeatAction(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockGw := new(MockGateway)
		mockGw.On("OnRepeatAction", mock.Anything, int64(42), int64(7), task.IntervalWeekly).
			Return("✅ Задача будет повторяться: weekly!", nil)

		router := newTestRouter(mockGw, new(MockHealth))
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/users/42/tasks/7/repeat",
			bytes.NewBufferString(`{"interval":"weekly"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockGw.AssertExpectations(t)
	})

	t.Run("error - unknown interval rejected before gateway", func(t *testing.T) {
		mockGw := new(MockGateway)

		router := newTestRouter(mockGw, new(MockHealth))
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/users/42/tasks/7/repeat",
			bytes.NewBufferString(`{"interval":"hourly"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockGw.AssertExpectations(t)
	})
}

// TestDueAction тестирует установку дедлайна
func TestDueAction(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		due := time.Now().Add(time.Hour).UTC().Truncate(time.Second)

		mockGw := new(MockGateway)
		mockGw.On("OnDueAction", mock.Anything, int64(42), int64(7), mock.MatchedBy(func(got time.Time) bool {
			return got.Equal(due)
		})).Return("✅ Дедлайн установлен!", nil)

		payload, err := json.Marshal(map[string]any{"due_time": due})
		require.NoError(t, err)

		router := newTestRouter(mockGw, new(MockHealth))
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/users/42/tasks/7/due", bytes.NewBuffer(payload))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockGw.AssertExpectations(t)
	})

	t.Run("error - missing due time", func(t *testing.T) {
		router := newTestRouter(new(MockGateway), new(MockHealth))
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/users/42/tasks/7/due",
			bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

// TestHealthCheck тестирует эндпоинт здоровья
func TestHealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		mockHealth := new(MockHealth)
		mockHealth.On("HealthCheck", mock.Anything).Return(nil)

		router := newTestRouter(new(MockGateway), mockHealth)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unhealthy", func(t *testing.T) {
		mockHealth := new(MockHealth)
		mockHealth.On("HealthCheck", mock.Anything).Return(assert.AnError)

		router := newTestRouter(new(MockGateway), mockHealth)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
