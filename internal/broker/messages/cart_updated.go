package messages

import (
	"time"

	"github.com/BearBump/PetCafe/internal/models"
)

// CartUpdated is published after every cart mutation. Origin identifies the
// console instance that made the change so it can skip its own echoes.
type CartUpdated struct {
	AccountID string            `json:"account_id"`
	Origin    string            `json:"origin"`
	Items     []models.CartItem `json:"items"`
	Total     int64             `json:"total"`
	UpdatedAt time.Time         `json:"updated_at"`
}
