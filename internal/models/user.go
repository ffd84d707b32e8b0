package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the notification recipient for the engine's alerts and reports.
// Identity resolution itself happens outside the engine.
type User struct {
	UserID         uuid.UUID `json:"user_id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	TelegramChatID *int64    `json:"telegram_chat_id"`
	CreatedAt      time.Time `json:"created_at"`
}
