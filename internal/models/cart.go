package models

import "strings"

// ServiceItemPrefix marks cart lines that book a service rather than sell a product.
const ServiceItemPrefix = "svc-"

type CartItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Quantity    int    `json:"quantity"`
	BookingDate string `json:"booking_date,omitempty"`
}

func (i CartItem) IsService() bool {
	return strings.HasPrefix(i.ID, ServiceItemPrefix)
}

// ServiceID strips the service prefix; it returns "" for product lines.
func (i CartItem) ServiceID() string {
	if !i.IsService() {
		return ""
	}
	return strings.TrimPrefix(i.ID, ServiceItemPrefix)
}

func (i CartItem) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

type Cart struct {
	AccountID string     `json:"account_id"`
	Items     []CartItem `json:"items"`
	Total     int64      `json:"total"`
}

func CartTotal(items []CartItem) int64 {
	var total int64
	for _, it := range items {
		total += it.Subtotal()
	}
	return total
}
