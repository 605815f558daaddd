package task

import (
	"fmt"
	"time"
)

type Task struct {
	ID        int64      `json:"id" db:"id"`
	UserID    int64      `json:"user_id" db:"user_id"`
	Text      string     `json:"text" db:"text"`
	DueTime   *time.Time `json:"due_time,omitempty" db:"due_time,omitempty"`
	Repeat    Interval   `json:"repeat_interval,omitempty" db:"repeat_interval,omitempty"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

type Interval string

const IntervalNone Interval = ""
const IntervalDaily Interval = "daily"
const IntervalWeekly Interval = "weekly"
const IntervalMonthly Interval = "monthly"

func ParseInterval(s string) (Interval, error) {
	switch Interval(s) {
	case IntervalDaily, IntervalWeekly, IntervalMonthly:
		return Interval(s), nil
	default:
		return IntervalNone, fmt.Errorf("неизвестный интервал повторения: %q", s)
	}
}

// повторяется ли задача вообще
func (i Interval) IsSet() bool {
	return i != IntervalNone
}
