package models

import "time"

// Checkout phases of a point-of-sale flow.
const (
	PhaseBrowsing     = "BROWSING"
	PhaseCartBuilding = "CART_BUILDING"
	PhasePending      = "PENDING"
	PhaseConfirmed    = "CONFIRMED"
	PhaseAbandoned    = "ABANDONED"
)

// Status labels shown to cashiers.
const (
	StatusLabelPending   = "Chờ thanh toán"
	StatusLabelPaid      = "Đã thanh toán"
	StatusLabelAbandoned = "Đã hủy"
)

type CheckoutSession struct {
	OrderID       string     `json:"order_id"`
	InvoiceID     string     `json:"invoice_id,omitempty"`
	AccountID     string     `json:"account_id"`
	PaymentMethod string     `json:"payment_method"`
	Phase         string     `json:"phase"`
	Total         int64      `json:"total"`
	QRURL         string     `json:"qr_url,omitempty"`
	CheckCount    int32      `json:"check_count"`
	LastError     *string    `json:"last_error,omitempty"`
	NextCheckAt   time.Time  `json:"next_check_at"`
	ConfirmedAt   *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (s CheckoutSession) StatusLabel() string {
	switch s.Phase {
	case PhaseConfirmed:
		return StatusLabelPaid
	case PhaseAbandoned:
		return StatusLabelAbandoned
	default:
		return StatusLabelPending
	}
}
