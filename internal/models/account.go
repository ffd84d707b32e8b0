package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account holds a signed balance. The balance is only ever mutated inside the
// same store transaction as the ledger entry that causes the change.
type Account struct {
	AccountID uuid.UUID       `json:"account_id"`
	UserID    uuid.UUID       `json:"user_id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	IsDefault bool            `json:"is_default"`
	CreatedAt time.Time       `json:"created_at"`
}
