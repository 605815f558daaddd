package dto

import "time"

// входящие обновления от чат-адаптера

type MessageRequest struct {
	Text string `json:"text"`
}

type RepeatRequest struct {
	Interval string `json:"interval"`
}

type DueRequest struct {
	DueTime time.Time `json:"due_time"`
}
