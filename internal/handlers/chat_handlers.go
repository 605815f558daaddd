package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"taskReminder/internal/gateway"
	"taskReminder/internal/handlers/dto"
	"taskReminder/internal/logger"
	"taskReminder/internal/models/task"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ChatHandler struct {
	Gateway ChatGateway
	Health  HealthChecker
}

func NewChatHandler(gw ChatGateway, health HealthChecker) ChatHandler {
	return ChatHandler{
		Gateway: gw,
		Health:  health,
	}
}

func (h *ChatHandler) AddCommand(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := parseID(w, r, "userID")
	if !ok {
		return
	}

	reply := h.Gateway.OnAddCommand(userID)

	logger.Info("HTTP_OUT: Запрошен текст новой задачи",
		zap.Int64("user_id", userID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("reply", reply))
}

func (h *ChatHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := parseID(w, r, "userID")
	if !ok {
		return
	}

	items, reply, err := h.Gateway.OnListCommand(r.Context(), userID)
	if err != nil {
		logger.Error("HTTP: Ошибка Gateway", err,
			zap.String("operation", "list_tasks"),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int64("user_id", userID),
		zap.Int("count", len(items)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK,
		toPayload("tasks", items),
		toPayload("reply", reply))
}

func (h *ChatHandler) FreeText(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := parseID(w, r, "userID")
	if !ok {
		return
	}

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	var request dto.MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса:"+err.Error())
		return
	}

	reply, err := h.Gateway.OnFreeText(r.Context(), userID, request.Text)
	if err != nil {
		// текст вне диалога — не ошибка, адаптер просто его игнорирует
		if errors.Is(err, gateway.ErrNoPendingPrompt) {
			logger.Info("HTTP_OUT: Сообщение вне диалога",
				zap.Int64("user_id", userID),
				zap.Duration("ms", time.Since(start)))
			responseWithJSON(w, http.StatusOK,
				toPayload("ignored", true))
			return
		}
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Gateway", err,
			zap.String("operation", "free_text"),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Ответ на запрос обработан",
		zap.Int64("user_id", userID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("reply", reply))
}

func (h *ChatHandler) EditAction(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := parseID(w, r, "userID")
	if !ok {
		return
	}
	taskID, ok := parseID(w, r, "taskID")
	if !ok {
		return
	}

	reply := h.Gateway.OnEditAction(userID, taskID)

	logger.Info("HTTP_OUT: Запрошен новый текст задачи",
		zap.Int64("user_id", userID),
		zap.Int64("task_id", taskID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("reply", reply))
}

func (h *ChatHandler) DeleteAction(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := parseID(w, r, "userID")
	if !ok {
		return
	}
	taskID, ok := parseID(w, r, "taskID")
	if !ok {
		return
	}

	reply, err := h.Gateway.OnDeleteAction(r.Context(), userID, taskID)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Gateway", err,
			zap.String("operation", "delete_task"),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Удаление обработано",
		zap.Int64("user_id", userID),
		zap.Int64("task_id", taskID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("reply", reply))
}

func (h *ChatHandler) RepeatAction(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := parseID(w, r, "userID")
	if !ok {
		return
	}
	taskID, ok := parseID(w, r, "taskID")
	if !ok {
		return
	}

	var request dto.RepeatRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса:"+err.Error())
		return
	}

	interval, err := task.ParseInterval(request.Interval)
	if err != nil {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "interval"),
			zap.String("received", request.Interval),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	reply, err := h.Gateway.OnRepeatAction(r.Context(), userID, taskID, interval)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Gateway", err,
			zap.String("operation", "set_repeat"),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Интервал повторения установлен",
		zap.Int64("user_id", userID),
		zap.Int64("task_id", taskID),
		zap.String("interval", request.Interval),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("reply", reply))
}

func (h *ChatHandler) DueAction(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := parseID(w, r, "userID")
	if !ok {
		return
	}
	taskID, ok := parseID(w, r, "taskID")
	if !ok {
		return
	}

	var request dto.DueRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса:"+err.Error())
		return
	}

	if request.DueTime.IsZero() {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "due_time"),
			zap.String("error", "empty_field"),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "дедлайн должен быть задан")
		return
	}

	reply, err := h.Gateway.OnDueAction(r.Context(), userID, taskID, request.DueTime)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Gateway", err,
			zap.String("operation", "set_due_time"),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Дедлайн установлен",
		zap.Int64("user_id", userID),
		zap.Int64("task_id", taskID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("reply", reply))
}

func (h *ChatHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := h.Health.HealthCheck(r.Context()); err != nil {
		responseWithJSON(w, http.StatusServiceUnavailable, toPayload("status", "unavailable"))
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("status", "ok"))
}

func parseID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		logger.Warn("HTTP: Не удалось получить "+param,
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "не удалось получить "+param+":"+err.Error())
		return 0, false
	}

	if id <= 0 {
		logger.Warn("HTTP: Неверное значение "+param,
			zap.String("error", "non-positive id"),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, param+" должен быть положительным")
		return 0, false
	}

	return id, true
}
