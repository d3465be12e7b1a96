package messages

import "time"

type OrderUpdated struct {
	OrderID   string    `json:"order_id"`
	CheckedAt time.Time `json:"checked_at"`

	Phase       string `json:"phase,omitempty"`
	OrderStatus string `json:"order_status,omitempty"`

	NextCheckAt time.Time `json:"next_check_at"`

	Error *string `json:"error,omitempty"`
}
