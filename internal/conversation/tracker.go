package conversation

import (
	"sync"

	"taskReminder/internal/logger"

	"go.uber.org/zap"
)

type Kind string

const KindNewTask Kind = "new_task"
const KindEditText Kind = "edit_text"

// ожидание текстового ответа, привязанное к пользователю
type Prompt struct {
	Kind   Kind
	TaskID int64
}

// Tracker хранит не больше одного незакрытого запроса на пользователя.
// Новый запрос молча вытесняет старый, ответ забирает слот ровно один раз.
// Слот трогает только командный путь, воркеры сюда не ходят.
type Tracker struct {
	mtx     sync.Mutex
	pending map[int64]Prompt
}

func NewTracker() *Tracker {
	return &Tracker{
		pending: make(map[int64]Prompt),
	}
}

func (t *Tracker) IssuePrompt(userID int64, prompt Prompt) {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	if old, ok := t.pending[userID]; ok {
		logger.Info("Tracker: Незакрытый запрос вытеснен",
			zap.Int64("user_id", userID),
			zap.String("old_kind", string(old.Kind)),
			zap.String("new_kind", string(prompt.Kind)))
	}
	t.pending[userID] = prompt
}

// Resolve забирает ожидание, если оно было. Текст без ожидания — не ответ.
func (t *Tracker) Resolve(userID int64) (Prompt, bool) {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	prompt, ok := t.pending[userID]
	if !ok {
		return Prompt{}, false
	}
	delete(t.pending, userID)
	return prompt, true
}

func (t *Tracker) Clear(userID int64) {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	delete(t.pending, userID)
}
