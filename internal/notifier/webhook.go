package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"taskReminder/internal/logger"

	"go.uber.org/zap"
)

// WebhookNotifier толкает уведомление в чат-платформу HTTP-запросом.
// Ошибка доставки логируется и не повторяется: этим занимается адаптер.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &WebhookNotifier{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type deliveryRequest struct {
	UserID  int64  `json:"user_id"`
	Message string `json:"message"`
}

func (n *WebhookNotifier) Notify(ctx context.Context, userID int64, message string) error {
	body, err := json.Marshal(deliveryRequest{
		UserID:  userID,
		Message: message,
	})
	if err != nil {
		return fmt.Errorf("кодирование уведомления: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("создание запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := n.client.Do(req)
	if err != nil {
		logger.Warn("Notifier: Ошибка доставки уведомления",
			zap.Error(err),
			zap.Int64("user_id", userID))
		return fmt.Errorf("доставка уведомления: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		logger.Warn("Notifier: Платформа отклонила уведомление",
			zap.Int("status", resp.StatusCode),
			zap.Int64("user_id", userID))
		return fmt.Errorf("доставка уведомления: статус %d", resp.StatusCode)
	}

	logger.Info("Notifier: Уведомление доставлено",
		zap.Int64("user_id", userID),
		zap.Duration("ms", time.Since(start)))
	return nil
}
