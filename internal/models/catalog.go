package models

import "time"

type Product struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	CategoryID string `json:"category_id,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
	Stock      int    `json:"stock_quantity"`
}

type ProductCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Service struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Price           int64  `json:"base_price"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
	Description     string `json:"description,omitempty"`
}

type TeamMember struct {
	AccountID string `json:"account_id"`
	FullName  string `json:"full_name"`
	Role      string `json:"role,omitempty"`
}

type Team struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	LeaderID string       `json:"leader_id,omitempty"`
	Members  []TeamMember `json:"members,omitempty"`
}

type Notification struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	IsRead    bool       `json:"is_read"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Pagination mirrors the backend list envelope.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}
