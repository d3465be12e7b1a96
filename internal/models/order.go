package models

import "time"

const (
	PaymentMethodCash         = "CASH"
	PaymentMethodBankTransfer = "BANK_TRANSFER"
)

const (
	OrderStatusPending   = "PENDING"
	OrderStatusPaid      = "PAID"
	OrderStatusCancelled = "CANCELLED"
)

type OrderProductLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type OrderServiceLine struct {
	ServiceID   string `json:"service_id"`
	Quantity    int    `json:"quantity"`
	BookingDate string `json:"booking_date,omitempty"`
}

// OrderRequest is the body of POST /api/orders.
type OrderRequest struct {
	FullName      string             `json:"full_name"`
	Address       string             `json:"address,omitempty"`
	Phone         string             `json:"phone"`
	Notes         string             `json:"notes,omitempty"`
	PaymentMethod string             `json:"payment_method"`
	Products      []OrderProductLine `json:"products"`
	Services      []OrderServiceLine `json:"services"`
}

type Order struct {
	ID            string     `json:"id"`
	InvoiceID     string     `json:"invoice_id,omitempty"`
	Status        string     `json:"status"`
	PaymentMethod string     `json:"payment_method,omitempty"`
	TotalAmount   int64      `json:"total_amount"`
	FullName      string     `json:"full_name,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}

type Transaction struct {
	ID            string     `json:"id"`
	OrderID       string     `json:"order_id"`
	Amount        int64      `json:"amount"`
	PaymentMethod string     `json:"payment_method"`
	Status        string     `json:"status"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}
